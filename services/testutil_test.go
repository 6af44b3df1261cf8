package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/abhilash-IITm/car-parking/database"
	"github.com/abhilash-IITm/car-parking/models"
	"github.com/abhilash-IITm/car-parking/utils"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB 用 in-memory SQLite 取代 database.DB。
// 連線數限制為 1：一來同一個記憶體資料庫只活在單一連線上，
// 二來 SQLite 沒有 FOR UPDATE，靠單一連線序列化寫入。
func setupTestDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Member{},
		&models.Vehicle{},
		&models.ParkingLot{},
		&models.ParkingSpot{},
		&models.Reservation{},
	))

	database.DB = db
	t.Cleanup(func() {
		sqlDB.Close()
		database.DB = nil
	})
}

func createTestLot(t *testing.T, name string, pricePerMinute float64, maxSpots int) *models.ParkingLot {
	t.Helper()
	lot := &models.ParkingLot{
		Name:           name,
		Address:        "1 Test Street",
		PricePerMinute: pricePerMinute,
		MaxSpots:       maxSpots,
	}
	require.NoError(t, CreateParkingLot(lot))
	return lot
}

func createTestMember(t *testing.T, username string) *models.Member {
	t.Helper()
	hashed, err := utils.HashPassword("password1")
	require.NoError(t, err)
	member := &models.Member{
		FullName: "Test " + username,
		Username: username,
		Password: hashed,
		Role:     models.RoleUser,
	}
	require.NoError(t, database.DB.Create(member).Error)
	return member
}

func createTestVehicle(t *testing.T, memberID int, plate string) *models.Vehicle {
	t.Helper()
	vehicle := &models.Vehicle{
		MemberID:    memberID,
		PlateNumber: plate,
	}
	require.NoError(t, database.DB.Create(vehicle).Error)
	return vehicle
}

// memberWithVehicle 開好一個會員加一台車，省去測試裡的重複鋪陳
func memberWithVehicle(t *testing.T, n int) (*models.Member, *models.Vehicle) {
	t.Helper()
	member := createTestMember(t, fmt.Sprintf("driver%d", n))
	vehicle := createTestVehicle(t, member.MemberID, fmt.Sprintf("KA-%02d-1234", n))
	return member, vehicle
}

var baseTime = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
