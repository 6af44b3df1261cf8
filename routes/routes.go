package routes

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/abhilash-IITm/car-parking/handlers"
	"github.com/abhilash-IITm/car-parking/utils"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware 驗證 JWT token，並提取 member_id 和 role
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  false,
				"message": "缺少 Authorization 標頭",
				"error":   "Authorization header is required",
				"code":    "ERR_NO_AUTH_HEADER",
			})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  false,
				"message": "無效的 Authorization 格式",
				"error":   "Authorization header must be in the format 'Bearer <token>'",
				"code":    "ERR_INVALID_AUTH_FORMAT",
			})
			c.Abort()
			return
		}

		tokenString := parts[1]

		// 明確要求檢查 exp 字段
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return utils.JWTSecret, nil
		}, jwt.WithExpirationRequired())

		if err != nil {
			log.Printf("Token parsing error: %v", err)
			if errors.Is(err, jwt.ErrTokenExpired) {
				c.JSON(http.StatusUnauthorized, gin.H{
					"status":  false,
					"message": "token 已過期",
					"error":   "Token has expired",
					"code":    "ERR_TOKEN_EXPIRED",
				})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{
					"status":  false,
					"message": "無效的 token",
					"error":   err.Error(),
					"code":    "ERR_INVALID_TOKEN",
				})
			}
			c.Abort()
			return
		}

		// 檢查 Claims 是否有效
		if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
			if exp, ok := claims["exp"].(float64); !ok {
				log.Printf("Missing or invalid exp in token")
				c.JSON(http.StatusUnauthorized, gin.H{
					"status":  false,
					"message": "無效的 token 內容",
					"error":   "Missing or invalid exp claim",
					"code":    "ERR_INVALID_CLAIMS",
				})
				c.Abort()
				return
			} else {
				log.Printf("Token verified: exp=%v, current_time=%v", exp, time.Now().Unix())
			}

			memberID, ok := claims["member_id"].(float64)
			if !ok {
				log.Printf("Missing or invalid member_id in token")
				c.JSON(http.StatusUnauthorized, gin.H{
					"status":  false,
					"message": "無效的會員 ID",
					"error":   "Invalid member_id in token",
					"code":    "ERR_INVALID_MEMBER_ID",
				})
				c.Abort()
				return
			}

			role, ok := claims["role"].(string)
			if !ok || (role != "user" && role != "admin") {
				log.Printf("Missing or invalid role in token: %v", role)
				c.JSON(http.StatusUnauthorized, gin.H{
					"status":  false,
					"message": "無效的角色",
					"error":   "Invalid role in token",
					"code":    "ERR_INVALID_ROLE",
				})
				c.Abort()
				return
			}

			c.Set("member_id", int(memberID))
			c.Set("role", role)
		} else {
			log.Printf("Invalid token claims or token is not valid")
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  false,
				"message": "無效的 token 內容",
				"error":   "Invalid token claims or token is not valid",
				"code":    "ERR_INVALID_CLAIMS",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RoleMiddleware 檢查會員角色是否符合要求
func RoleMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  false,
				"message": "無法獲取角色資訊",
				"error":   "Role not found in context",
				"code":    "ERR_ROLE_NOT_FOUND",
			})
			c.Abort()
			return
		}

		roleStr, ok := role.(string)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  false,
				"message": "無效的角色類型",
				"error":   "Invalid role type",
				"code":    "ERR_INVALID_ROLE_TYPE",
			})
			c.Abort()
			return
		}

		// 允許 admin 角色訪問所有端點
		if roleStr == "admin" {
			c.Next()
			return
		}

		allowed := false
		for _, allowedRole := range allowedRoles {
			if roleStr == allowedRole {
				allowed = true
				break
			}
		}

		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{
				"status":  false,
				"message": "權限不足",
				"error":   "Insufficient role permissions",
				"code":    "ERR_INSUFFICIENT_PERMISSIONS",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func Path(router *gin.RouterGroup) {
	// 版本控制
	v1 := router.Group("/v1")
	{
		// 測試路由
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(200, gin.H{"message": "pong"})
		})

		// 會員路由
		members := v1.Group("/members")
		{
			// 公開路由：不需要 token 驗證
			members.POST("/register", handlers.RegisterMember) // 註冊會員
			members.POST("/login", handlers.LoginMember)       // 登入會員並獲取 token

			// 受保護路由：需要 token 驗證
			membersWithAuth := members.Group("")
			membersWithAuth.Use(AuthMiddleware())
			{
				membersWithAuth.GET("/profile", handlers.GetMemberProfile)
				// 管理員專屬路由
				membersWithAuth.GET("/all", RoleMiddleware("admin"), handlers.GetAllMembers)
				membersWithAuth.GET("/:id", RoleMiddleware("admin"), handlers.GetMember)
			}
		}

		// 車輛路由
		vehicles := v1.Group("/vehicles")
		vehicles.Use(AuthMiddleware())
		{
			vehicles.POST("", handlers.RegisterVehicle)     // 登記車輛
			vehicles.GET("", handlers.GetMyVehicles)        // 查詢自己的車輛
			vehicles.GET("/:id", handlers.GetVehicle)       // 查詢單一車輛
			vehicles.DELETE("/:id", handlers.DeleteVehicle) // 刪除車輛
		}

		// 停車場路由
		lots := v1.Group("/lots")
		lots.Use(AuthMiddleware())
		{
			// 查詢：任何已認證的用戶都可以訪問
			lots.GET("", handlers.GetAllParkingLots)
			lots.GET("/:id", handlers.GetParkingLot)
			lots.GET("/:id/occupancy", handlers.GetLotOccupancy)
			// 管理：僅 admin 可以操作
			lots.POST("", RoleMiddleware("admin"), handlers.CreateParkingLot)
			lots.PUT("/:id", RoleMiddleware("admin"), handlers.UpdateParkingLot)
			lots.DELETE("/:id", RoleMiddleware("admin"), handlers.DeleteParkingLot)
		}

		// 停車時段路由
		reservations := v1.Group("/reservations")
		reservations.Use(AuthMiddleware())
		{
			reservations.POST("/park", handlers.ParkVehicle)       // 進場配位
			reservations.POST("/leave", handlers.LeaveSpot)        // 離場結算
			reservations.POST("/:id/pay", handlers.PayReservation) // 付款
			reservations.GET("", handlers.GetMyReservations)       // 停車歷史
			reservations.GET("/open", handlers.GetMyOpenReservation)
			reservations.GET("/:id", handlers.GetReservation)
			// 一致性稽核：僅 admin
			reservations.GET("/audit", RoleMiddleware("admin"), handlers.AuditConsistency)
		}
	}
}
