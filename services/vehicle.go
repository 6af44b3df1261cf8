package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/abhilash-IITm/car-parking/database"
	"github.com/abhilash-IITm/car-parking/models"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// RegisterVehicle 登記車輛。車牌一律轉大寫，同一會員下同車牌只能登記一次
func RegisterVehicle(vehicle *models.Vehicle) error {
	vehicle.PlateNumber = strings.ToUpper(strings.TrimSpace(vehicle.PlateNumber))
	if vehicle.PlateNumber == "" {
		return fmt.Errorf("plate_number is required")
	}

	var member models.Member
	if err := database.DB.First(&member, vehicle.MemberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("member with ID %d not found", vehicle.MemberID)
		}
		return fmt.Errorf("failed to verify member: %w", err)
	}

	var existing models.Vehicle
	if err := database.DB.
		Where("member_id = ? AND plate_number = ?", vehicle.MemberID, vehicle.PlateNumber).
		First(&existing).Error; err == nil {
		return fmt.Errorf("plate %s: %w", vehicle.PlateNumber, ErrDuplicateVehicle)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for duplicate vehicle: %w", err)
	}

	if err := database.DB.Create(vehicle).Error; err != nil {
		// 唯一索引擋下併發的重複登記
		if mysqlErr, ok := err.(*mysql.MySQLError); ok && mysqlErr.Number == 1062 {
			return fmt.Errorf("plate %s: %w", vehicle.PlateNumber, ErrDuplicateVehicle)
		}
		log.Printf("Failed to register vehicle: %v", err)
		return fmt.Errorf("failed to register vehicle: %w", err)
	}

	log.Printf("Registered vehicle %d (%s) for member %d", vehicle.VehicleID, vehicle.PlateNumber, vehicle.MemberID)
	return nil
}

// GetMemberVehicles 查詢會員的所有車輛
func GetMemberVehicles(memberID int) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	if err := database.DB.Where("member_id = ?", memberID).Find(&vehicles).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch vehicles for member %d: %w", memberID, err)
	}
	return vehicles, nil
}

// GetVehicleByID 查詢單一車輛；非管理員只能看自己的
func GetVehicleByID(vehicleID, currentMemberID int, role string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := database.DB.First(&vehicle, vehicleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, fmt.Errorf("failed to find vehicle %d: %w", vehicleID, err)
	}
	if role != models.RoleAdmin && vehicle.MemberID != currentMemberID {
		return nil, ErrForbidden
	}
	return &vehicle, nil
}

// DeleteVehicle 刪除車輛。還掛在場中租約上的車不能刪，要先離場
func DeleteVehicle(vehicleID, currentMemberID int, role string) error {
	var vehicle models.Vehicle
	if err := database.DB.First(&vehicle, vehicleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVehicleNotFound
		}
		return fmt.Errorf("failed to find vehicle %d: %w", vehicleID, err)
	}
	if role != models.RoleAdmin && vehicle.MemberID != currentMemberID {
		return ErrForbidden
	}

	var openCount int64
	if err := database.DB.Model(&models.Reservation{}).
		Where("vehicle_id = ? AND leaving_time IS NULL", vehicleID).
		Count(&openCount).Error; err != nil {
		return fmt.Errorf("failed to count open reservations for vehicle %d: %w", vehicleID, err)
	}
	if openCount > 0 {
		return fmt.Errorf("vehicle %d: %w", vehicleID, ErrVehicleInUse)
	}

	if err := database.DB.Delete(&vehicle).Error; err != nil {
		return fmt.Errorf("failed to delete vehicle %d: %w", vehicleID, err)
	}

	log.Printf("Deleted vehicle %d (%s)", vehicleID, vehicle.PlateNumber)
	return nil
}
