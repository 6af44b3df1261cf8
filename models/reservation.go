package models

import "time"

// 付款狀態機：parked（在場，未結算）→ pending（已離場，待付款）→ paid（終態）
// failed 為付款失敗狀態，可再次透過 pay 轉為 paid；paid 之後不再轉移
const (
	PaymentStatusParked  = "parked"
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

type Reservation struct {
	ReservationID int         `json:"reservation_id" gorm:"primaryKey;autoIncrement;type:INT"`
	SpotID        int         `json:"spot_id" gorm:"index;not null;type:INT"`
	LotID         int         `json:"lot_id" gorm:"index;not null;type:INT"` // 開單時由車位反查，冗餘存放
	MemberID      int         `json:"member_id" gorm:"index;not null;type:INT"`
	VehicleID     int         `json:"vehicle_id" gorm:"index;not null;type:INT"`
	ParkingTime   time.Time   `json:"parking_time" gorm:"type:datetime;not null"`
	LeavingTime   *time.Time  `json:"leaving_time" gorm:"type:datetime;default:null"` // 在場期間為 null，離場時寫入一次
	Amount        *float64    `json:"amount" gorm:"type:decimal(10,2);default:null"`  // 離場結算後才有值，之後不再重算
	PaymentStatus string      `json:"payment_status" gorm:"type:varchar(20);not null;default:'parked'"`
	PaymentRef    string      `json:"payment_ref,omitempty" gorm:"type:varchar(36)"` // 付款成功時寫入的收據編號
	Member        Member      `json:"-" gorm:"foreignKey:member_id;references:MemberID"`
	Spot          ParkingSpot `json:"-" gorm:"foreignKey:spot_id;references:SpotID"`
	Lot           ParkingLot  `json:"-" gorm:"foreignKey:lot_id;references:LotID"`
	Vehicle       Vehicle     `json:"-" gorm:"foreignKey:vehicle_id;references:VehicleID"`
}

func (Reservation) TableName() string {
	return "reservation"
}

// IsOpen 是否仍為在場中的停車時段
func (r *Reservation) IsOpen() bool {
	return r.LeavingTime == nil
}

type ReservationResponse struct {
	ReservationID int        `json:"reservation_id"`
	SpotID        int        `json:"spot_id"`
	LotID         int        `json:"lot_id"`
	MemberID      int        `json:"member_id"`
	VehicleID     int        `json:"vehicle_id"`
	ParkingTime   time.Time  `json:"parking_time"`
	LeavingTime   *time.Time `json:"leaving_time"`
	Amount        *float64   `json:"amount"`
	PaymentStatus string     `json:"payment_status"`
	PaymentRef    string     `json:"payment_ref,omitempty"`
}

func (r *Reservation) ToResponse() ReservationResponse {
	return ReservationResponse{
		ReservationID: r.ReservationID,
		SpotID:        r.SpotID,
		LotID:         r.LotID,
		MemberID:      r.MemberID,
		VehicleID:     r.VehicleID,
		ParkingTime:   r.ParkingTime,
		LeavingTime:   r.LeavingTime,
		Amount:        r.Amount,
		PaymentStatus: r.PaymentStatus,
		PaymentRef:    r.PaymentRef,
	}
}
