package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/abhilash-IITm/car-parking/database"
	"github.com/abhilash-IITm/car-parking/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CalculateParkingFee 依停留時間與每分鐘費率計費，四捨五入到小數第二位。
// 時鐘偏移可能讓離場時間早於進場時間，這種情況一律以 0 分鐘計，不收負費用。
func CalculateParkingFee(parkingTime, leavingTime time.Time, pricePerMinute float64) float64 {
	elapsed := leavingTime.Sub(parkingTime)
	if elapsed < 0 {
		elapsed = 0
	}
	amount := elapsed.Minutes() * pricePerMinute
	return math.Round(amount*100) / 100
}

// FindOpenReservationByMember 查詢會員目前在場中的停車時段，沒有則回傳 nil
func FindOpenReservationByMember(db *gorm.DB, memberID int) (*models.Reservation, error) {
	var res models.Reservation
	if err := db.Where("member_id = ? AND leaving_time IS NULL", memberID).First(&res).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query open reservation for member %d: %w", memberID, err)
	}
	return &res, nil
}

// FindOpenReservationBySpot 查詢指定車位上未結束的停車時段，沒有則回傳 nil
func FindOpenReservationBySpot(db *gorm.DB, spotID int) (*models.Reservation, error) {
	var res models.Reservation
	if err := db.Where("spot_id = ? AND leaving_time IS NULL", spotID).First(&res).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query open reservation for spot %d: %w", spotID, err)
	}
	return &res, nil
}

// openReservation 在帳本上開一筆停車時段。
// 「一位會員同時只能有一筆在場時段」在這裡強制；車位重複開單照理到不了這裡
// （配位是正確的話），但配位與開單不是同一步，所以還是要擋。
func openReservation(tx *gorm.DB, spotID, lotID, memberID, vehicleID int, at time.Time) (*models.Reservation, error) {
	existing, err := FindOpenReservationByMember(tx, memberID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("member %d: %w", memberID, ErrDuplicateActiveSession)
	}

	onSpot, err := FindOpenReservationBySpot(tx, spotID)
	if err != nil {
		return nil, err
	}
	if onSpot != nil {
		return nil, fmt.Errorf("spot %d: %w", spotID, ErrSpotAlreadyOccupied)
	}

	res := &models.Reservation{
		SpotID:        spotID,
		LotID:         lotID,
		MemberID:      memberID,
		VehicleID:     vehicleID,
		ParkingTime:   at,
		PaymentStatus: models.PaymentStatusParked,
	}
	if err := tx.Create(res).Error; err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}
	return res, nil
}

// closeReservation 結束一筆停車時段：離場時間與金額只寫入一次，之後不再重算
func closeReservation(tx *gorm.DB, res *models.Reservation, at time.Time, pricePerMinute float64) error {
	if res.LeavingTime != nil {
		return fmt.Errorf("reservation %d: %w", res.ReservationID, ErrAlreadyClosed)
	}

	amount := CalculateParkingFee(res.ParkingTime, at, pricePerMinute)
	res.LeavingTime = &at
	res.Amount = &amount
	res.PaymentStatus = models.PaymentStatusPending

	if err := tx.Model(res).Updates(map[string]interface{}{
		"leaving_time":   at,
		"amount":         amount,
		"payment_status": models.PaymentStatusPending,
	}).Error; err != nil {
		return fmt.Errorf("failed to close reservation %d: %w", res.ReservationID, err)
	}
	return nil
}

// ParkVehicle 進場：配一個車位並開單。
// 配位與開單包在同一個事務裡，開單失敗時車位翻轉跟著回滾，
// 不需要額外的補償動作；同停車場、同會員的請求以 mutex 序列化。
func ParkVehicle(memberID, vehicleID, lotID int, at time.Time) (*models.Reservation, error) {
	memberMu := lockMember(memberID)
	defer memberMu.Unlock()
	lotMu := lockLot(lotID)
	defer lotMu.Unlock()

	var vehicle models.Vehicle
	if err := database.DB.Where("vehicle_id = ? AND member_id = ?", vehicleID, memberID).First(&vehicle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, fmt.Errorf("failed to find vehicle %d: %w", vehicleID, err)
	}

	// 事務外先擋掉明顯的重複進場，事務內 openReservation 會再檢查一次
	existing, err := FindOpenReservationByMember(database.DB, memberID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("member %d: %w", memberID, ErrDuplicateActiveSession)
	}

	tx := database.DB.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	spot, err := allocateSpot(tx, lotID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	res, err := openReservation(tx, spot.SpotID, spot.LotID, memberID, vehicleID, at)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit park transaction: %w", err)
	}

	log.Printf("Member %d parked vehicle %d at spot %d (lot %d), reservation %d",
		memberID, vehicleID, spot.SpotID, lotID, res.ReservationID)
	return res, nil
}

// LeaveSpot 離場：結算費用、關單、釋放車位，同一事務完成
func LeaveSpot(memberID, spotID int, at time.Time) (*models.Reservation, error) {
	memberMu := lockMember(memberID)
	defer memberMu.Unlock()

	tx := database.DB.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	res, err := FindOpenReservationBySpot(tx, spotID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if res == nil {
		tx.Rollback()
		return nil, fmt.Errorf("spot %d: %w", spotID, ErrNoActiveReservation)
	}
	if res.MemberID != memberID {
		tx.Rollback()
		return nil, fmt.Errorf("reservation %d: %w", res.ReservationID, ErrForbidden)
	}

	var lot models.ParkingLot
	if err := tx.First(&lot, res.LotID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLotNotFound
		}
		return nil, fmt.Errorf("failed to find parking lot %d: %w", res.LotID, err)
	}

	if err := closeReservation(tx, res, at, lot.PricePerMinute); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := releaseSpot(tx, spotID); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit leave transaction: %w", err)
	}

	log.Printf("Member %d left spot %d, reservation %d closed with amount %.2f",
		memberID, spotID, res.ReservationID, *res.Amount)
	return res, nil
}

// PayReservation 付款狀態轉移：pending/failed → paid。
// 已付款的單再付一次要明確拒絕，不能當成冪等寫入默默接受。
func PayReservation(reservationID int) (*models.Reservation, error) {
	tx := database.DB.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	var res models.Reservation
	if err := withUpdateLock(tx).First(&res, reservationID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to find reservation %d: %w", reservationID, err)
	}

	switch res.PaymentStatus {
	case models.PaymentStatusParked:
		tx.Rollback()
		return nil, fmt.Errorf("reservation %d: %w", reservationID, ErrPaymentNotYetDue)
	case models.PaymentStatusPaid:
		tx.Rollback()
		return nil, fmt.Errorf("reservation %d: %w", reservationID, ErrAlreadyPaid)
	case models.PaymentStatusPending, models.PaymentStatusFailed:
		// 可付款
	default:
		tx.Rollback()
		return nil, fmt.Errorf("reservation %d has unknown payment status %q", reservationID, res.PaymentStatus)
	}

	paymentRef := uuid.New().String()
	if err := tx.Model(&res).Updates(map[string]interface{}{
		"payment_status": models.PaymentStatusPaid,
		"payment_ref":    paymentRef,
	}).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to mark reservation %d as paid: %w", reservationID, err)
	}
	res.PaymentStatus = models.PaymentStatusPaid
	res.PaymentRef = paymentRef

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit payment transaction: %w", err)
	}

	log.Printf("Reservation %d paid, payment_ref=%s", reservationID, paymentRef)
	return &res, nil
}

// GetReservationByID 查詢單筆停車紀錄；非管理員只能看自己的
func GetReservationByID(reservationID, currentMemberID int, role string) (*models.Reservation, error) {
	var res models.Reservation
	if err := database.DB.First(&res, reservationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to find reservation %d: %w", reservationID, err)
	}

	if role != models.RoleAdmin && res.MemberID != currentMemberID {
		return nil, fmt.Errorf("reservation %d: %w", reservationID, ErrForbidden)
	}
	return &res, nil
}

// GetMemberReservations 查詢會員的停車歷史，新的排前面
func GetMemberReservations(memberID int) ([]models.Reservation, error) {
	var reservations []models.Reservation
	if err := database.DB.
		Where("member_id = ?", memberID).
		Order("parking_time DESC").
		Find(&reservations).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch reservations for member %d: %w", memberID, err)
	}
	return reservations, nil
}
