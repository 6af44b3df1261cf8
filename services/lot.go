package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/abhilash-IITm/car-parking/database"
	"github.com/abhilash-IITm/car-parking/models"
	"gorm.io/gorm"
)

// CreateParkingLot 建立停車場，並依容量一次開好對應數量的車位
func CreateParkingLot(lot *models.ParkingLot) error {
	if lot.MaxSpots <= 0 {
		return fmt.Errorf("max_spots must be positive, got %d", lot.MaxSpots)
	}
	if lot.PricePerMinute < 0 {
		return fmt.Errorf("price_per_minute must be non-negative, got %.2f", lot.PricePerMinute)
	}

	tx := database.DB.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	if err := tx.Create(lot).Error; err != nil {
		tx.Rollback()
		log.Printf("Failed to create parking lot: %v", err)
		return fmt.Errorf("failed to create parking lot: %w", err)
	}

	for i := 0; i < lot.MaxSpots; i++ {
		spot := models.ParkingSpot{
			LotID:  lot.LotID,
			Status: models.SpotStatusAvailable,
		}
		if err := tx.Create(&spot).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to create spot %d/%d for lot %d: %w", i+1, lot.MaxSpots, lot.LotID, err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("Created parking lot %d (%s) with %d spots", lot.LotID, lot.Name, lot.MaxSpots)
	return nil
}

// UpdateParkingLot 更新停車場。調整容量時：
// 擴容直接補車位；縮容只能移除可用且沒有任何未結束租約的車位，
// 空位不夠就整個拒絕（ErrLotShrinkBlocked），絕不刪掉有單的車位。
func UpdateParkingLot(lotID int, req models.UpdateParkingLotRequest) (*models.ParkingLot, error) {
	lotMu := lockLot(lotID)
	defer lotMu.Unlock()

	tx := database.DB.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	var lot models.ParkingLot
	if err := withUpdateLock(tx).First(&lot, lotID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLotNotFound
		}
		return nil, fmt.Errorf("failed to find parking lot %d: %w", lotID, err)
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.PinCode != nil {
		updates["pin_code"] = *req.PinCode
	}
	if req.PricePerMinute != nil {
		updates["price_per_minute"] = *req.PricePerMinute
	}

	if req.MaxSpots != nil && *req.MaxSpots != lot.MaxSpots {
		newMax := *req.MaxSpots
		if newMax > lot.MaxSpots {
			for i := lot.MaxSpots; i < newMax; i++ {
				spot := models.ParkingSpot{LotID: lotID, Status: models.SpotStatusAvailable}
				if err := tx.Create(&spot).Error; err != nil {
					tx.Rollback()
					return nil, fmt.Errorf("failed to add spot to lot %d: %w", lotID, err)
				}
			}
		} else {
			toRemove := lot.MaxSpots - newMax
			var freeSpots []models.ParkingSpot
			if err := withUpdateLock(tx).
				Where("lot_id = ? AND status = ?", lotID, models.SpotStatusAvailable).
				Order("spot_id DESC").
				Limit(toRemove).
				Find(&freeSpots).Error; err != nil {
				tx.Rollback()
				return nil, fmt.Errorf("failed to query free spots in lot %d: %w", lotID, err)
			}
			if len(freeSpots) < toRemove {
				tx.Rollback()
				return nil, fmt.Errorf("lot %d: need to remove %d spots but only %d are free: %w",
					lotID, toRemove, len(freeSpots), ErrLotShrinkBlocked)
			}
			for _, spot := range freeSpots {
				// 車位可用但仍掛著未結束租約 ＝ 帳本不一致，寧可失敗也不刪
				open, err := FindOpenReservationBySpot(tx, spot.SpotID)
				if err != nil {
					tx.Rollback()
					return nil, err
				}
				if open != nil {
					tx.Rollback()
					return nil, fmt.Errorf("spot %d is available but reservation %d is still open: %w",
						spot.SpotID, open.ReservationID, ErrLotShrinkBlocked)
				}
				if err := tx.Delete(&spot).Error; err != nil {
					tx.Rollback()
					return nil, fmt.Errorf("failed to remove spot %d from lot %d: %w", spot.SpotID, lotID, err)
				}
			}
		}
		updates["max_spots"] = newMax
	}

	if len(updates) > 0 {
		if err := tx.Model(&lot).Updates(updates).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to update parking lot %d: %w", lotID, err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if err := database.DB.First(&lot, lotID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload parking lot %d: %w", lotID, err)
	}
	log.Printf("Updated parking lot %d", lotID)
	return &lot, nil
}

// DeleteParkingLot 刪除停車場。場內還有任何未結束租約時明確拒絕，
// 不靠資料庫 cascade 把資料一併帶走。
func DeleteParkingLot(lotID int) error {
	lotMu := lockLot(lotID)
	defer lotMu.Unlock()

	tx := database.DB.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	var lot models.ParkingLot
	if err := tx.First(&lot, lotID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLotNotFound
		}
		return fmt.Errorf("failed to find parking lot %d: %w", lotID, err)
	}

	var openCount int64
	if err := tx.Model(&models.Reservation{}).
		Where("lot_id = ? AND leaving_time IS NULL", lotID).
		Count(&openCount).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to count open reservations for lot %d: %w", lotID, err)
	}
	if openCount > 0 {
		tx.Rollback()
		return fmt.Errorf("lot %d has %d open reservations: %w", lotID, openCount, ErrLotInUse)
	}

	if err := tx.Where("lot_id = ?", lotID).Delete(&models.ParkingSpot{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete spots for lot %d: %w", lotID, err)
	}
	if err := tx.Delete(&lot).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete parking lot %d: %w", lotID, err)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("Deleted parking lot %d", lotID)
	return nil
}

// GetAllParkingLots 列出所有停車場並計算剩餘車位
func GetAllParkingLots() ([]models.ParkingLot, error) {
	var lots []models.ParkingLot
	if err := database.DB.Find(&lots).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch parking lots: %w", err)
	}

	for i := range lots {
		var free int64
		if err := database.DB.Model(&models.ParkingSpot{}).
			Where("lot_id = ? AND status = ?", lots[i].LotID, models.SpotStatusAvailable).
			Count(&free).Error; err != nil {
			return nil, fmt.Errorf("failed to count free spots for lot %d: %w", lots[i].LotID, err)
		}
		lots[i].RemainingSpots = int(free)
	}
	return lots, nil
}

// GetParkingLotByID 查詢停車場與其所有車位狀態
func GetParkingLotByID(lotID int) (*models.ParkingLot, []models.ParkingSpot, error) {
	var lot models.ParkingLot
	if err := database.DB.First(&lot, lotID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrLotNotFound
		}
		return nil, nil, fmt.Errorf("failed to find parking lot %d: %w", lotID, err)
	}

	var spots []models.ParkingSpot
	if err := database.DB.
		Where("lot_id = ?", lotID).
		Order("spot_id ASC").
		Find(&spots).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to fetch spots for lot %d: %w", lotID, err)
	}

	free := 0
	for _, s := range spots {
		if s.Status == models.SpotStatusAvailable {
			free++
		}
	}
	lot.RemainingSpots = free
	return &lot, spots, nil
}
