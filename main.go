package main

import (
	"log"
	"os"

	"github.com/abhilash-IITm/car-parking/database"
	"github.com/abhilash-IITm/car-parking/models"
	"github.com/abhilash-IITm/car-parking/routes"
	"github.com/abhilash-IITm/car-parking/services"
	"github.com/abhilash-IITm/car-parking/utils"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

func main() {
	// 載入 .env 檔案
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using default environment variables: %v", err)
	}

	// 初始化 JWTSecret
	utils.InitJWTSecret()

	// 初始化資料庫
	database.InitDB()

	// 執行資料庫遷移
	database.DB.AutoMigrate(
		&models.Member{},
		&models.Vehicle{},
		&models.ParkingLot{},
		&models.ParkingSpot{},
		&models.Reservation{},
	)
	log.Println("Database migration completed")

	// 確保預設管理員存在
	ensureAdminExists()

	// 設置 Gin 模式為 release
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "" {
		ginMode = gin.ReleaseMode
	}
	gin.SetMode(ginMode)
	log.Printf("Gin mode set to %s", ginMode)

	// 初始化 Gin 路由器
	r := gin.Default()

	// 創建一個 API 路由組
	api := r.Group("/api")
	{
		routes.Path(api)
	}

	// 啟動定時任務
	c := cron.New()

	// 車位與帳本一致性稽核（每 5 分鐘執行一次），只回報不修復
	_, err := c.AddFunc("*/5 * * * *", func() {
		log.Println("Auditing spot/ledger consistency...")
		anomalies, err := services.AuditSpotConsistency()
		if err != nil {
			log.Printf("Failed to audit spot consistency: %v", err)
			return
		}
		if len(anomalies) > 0 {
			log.Printf("ALARM: found %d spot consistency anomalies, operator attention required", len(anomalies))
		}
	})
	if err != nil {
		log.Fatalf("Failed to schedule consistency audit cron job: %v", err)
	}

	c.Start()
	log.Println("Cron jobs started")

	// 啟動伺服器
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Starting server on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// ensureAdminExists 檢查並創建預設管理員
func ensureAdminExists() {
	var admin models.Member
	if err := database.DB.Where("role = ?", models.RoleAdmin).First(&admin).Error; err == nil {
		log.Printf("Admin already exists: username=%s", admin.Username)
		return
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	admin = models.Member{
		FullName: "Administrator",
		Username: "admin",
		Password: hashedPassword,
		Role:     models.RoleAdmin,
	}
	if err := database.DB.Create(&admin).Error; err != nil {
		log.Fatalf("Failed to create default admin: %v", err)
	}

	log.Printf("Default admin created: username=%s", admin.Username)
}
