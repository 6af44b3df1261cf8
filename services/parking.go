package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/abhilash-IITm/car-parking/database"
	"github.com/abhilash-IITm/car-parking/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// withUpdateLock 在支援的資料庫上加 SELECT ... FOR UPDATE
// （SQLite 不支援 FOR UPDATE 語法，測試環境以單一連線序列化）
func withUpdateLock(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "mysql" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// allocateSpot 在指定停車場內挑一個可用車位並翻為 occupied。
// 取 spot_id 最小的可用車位，配位結果可重現；必須在呼叫端的事務內執行。
func allocateSpot(tx *gorm.DB, lotID int) (*models.ParkingSpot, error) {
	var lot models.ParkingLot
	if err := tx.First(&lot, lotID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLotNotFound
		}
		return nil, fmt.Errorf("failed to find parking lot %d: %w", lotID, err)
	}

	var spot models.ParkingSpot
	if err := withUpdateLock(tx).
		Where("lot_id = ? AND status = ?", lotID, models.SpotStatusAvailable).
		Order("spot_id ASC").
		First(&spot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLotFull
		}
		return nil, fmt.Errorf("failed to query available spot in lot %d: %w", lotID, err)
	}

	if err := tx.Model(&spot).Update("status", models.SpotStatusOccupied).Error; err != nil {
		return nil, fmt.Errorf("failed to occupy spot %d: %w", spot.SpotID, err)
	}
	spot.Status = models.SpotStatusOccupied

	log.Printf("Allocated spot %d in lot %d", spot.SpotID, lotID)
	return &spot, nil
}

// releaseSpot 將 occupied 車位翻回 available。
// 車位本來就是 available 時回報 ErrSpotNotOccupied：這代表呼叫端有 bug，不能靜默成功。
func releaseSpot(tx *gorm.DB, spotID int) error {
	var spot models.ParkingSpot
	if err := withUpdateLock(tx).First(&spot, spotID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSpotNotFound
		}
		return fmt.Errorf("failed to find parking spot %d: %w", spotID, err)
	}

	if spot.Status != models.SpotStatusOccupied {
		return fmt.Errorf("spot %d: %w", spotID, ErrSpotNotOccupied)
	}

	if err := tx.Model(&spot).Update("status", models.SpotStatusAvailable).Error; err != nil {
		return fmt.Errorf("failed to release spot %d: %w", spotID, err)
	}

	log.Printf("Released spot %d in lot %d", spot.SpotID, spot.LotID)
	return nil
}

// LotOccupancy 查詢停車場目前佔用數與總車位數（儀表板用，純讀取）
func LotOccupancy(lotID int) (occupied int64, total int64, err error) {
	var lot models.ParkingLot
	if err := database.DB.First(&lot, lotID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, 0, ErrLotNotFound
		}
		return 0, 0, fmt.Errorf("failed to find parking lot %d: %w", lotID, err)
	}

	if err := database.DB.Model(&models.ParkingSpot{}).
		Where("lot_id = ?", lotID).
		Count(&total).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count spots for lot %d: %w", lotID, err)
	}

	if err := database.DB.Model(&models.ParkingSpot{}).
		Where("lot_id = ? AND status = ?", lotID, models.SpotStatusOccupied).
		Count(&occupied).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count occupied spots for lot %d: %w", lotID, err)
	}

	return occupied, total, nil
}

// SpotAnomaly 車位與帳本不一致的描述，交給操作人員處理
type SpotAnomaly struct {
	SpotID int    `json:"spot_id"`
	LotID  int    `json:"lot_id"`
	Detail string `json:"detail"`
}

// AuditSpotConsistency 掃描車位狀態與租約帳本的不變量：
// occupied 車位必須剛好對應一筆未結束的 reservation，反之亦然。
// 發現不一致只回報、不自動修復——自動修復會把重複配位的 bug 蓋掉。
func AuditSpotConsistency() ([]SpotAnomaly, error) {
	var anomalies []SpotAnomaly

	var occupiedSpots []models.ParkingSpot
	if err := database.DB.Where("status = ?", models.SpotStatusOccupied).Find(&occupiedSpots).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch occupied spots: %w", err)
	}

	for _, spot := range occupiedSpots {
		var count int64
		if err := database.DB.Model(&models.Reservation{}).
			Where("spot_id = ? AND leaving_time IS NULL", spot.SpotID).
			Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to count open reservations for spot %d: %w", spot.SpotID, err)
		}
		if count != 1 {
			anomalies = append(anomalies, SpotAnomaly{
				SpotID: spot.SpotID,
				LotID:  spot.LotID,
				Detail: fmt.Sprintf("spot is occupied but has %d open reservations", count),
			})
		}
	}

	var openReservations []models.Reservation
	if err := database.DB.Where("leaving_time IS NULL").Find(&openReservations).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch open reservations: %w", err)
	}

	for _, res := range openReservations {
		var spot models.ParkingSpot
		if err := database.DB.First(&spot, res.SpotID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				anomalies = append(anomalies, SpotAnomaly{
					SpotID: res.SpotID,
					LotID:  res.LotID,
					Detail: fmt.Sprintf("reservation %d is open but its spot no longer exists", res.ReservationID),
				})
				continue
			}
			return nil, fmt.Errorf("failed to find spot %d: %w", res.SpotID, err)
		}
		if spot.Status != models.SpotStatusOccupied {
			anomalies = append(anomalies, SpotAnomaly{
				SpotID: spot.SpotID,
				LotID:  spot.LotID,
				Detail: fmt.Sprintf("reservation %d is open but spot is %s", res.ReservationID, spot.Status),
			})
		}
	}

	for _, a := range anomalies {
		log.Printf("ALARM: spot consistency anomaly: spot=%d lot=%d: %s", a.SpotID, a.LotID, a.Detail)
	}
	return anomalies, nil
}
