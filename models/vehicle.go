package models

import "time"

// Vehicle 車輛表：支援一人多車，車牌同一會員下不可重複
type Vehicle struct {
	VehicleID    int       `json:"vehicle_id" gorm:"primaryKey;autoIncrement;type:INT"`
	MemberID     int       `json:"member_id" gorm:"index;not null;type:INT;uniqueIndex:idx_member_plate"`
	PlateNumber  string    `json:"plate_number" gorm:"type:varchar(20);not null;uniqueIndex:idx_member_plate" binding:"required,max=20"`
	Details      string    `json:"details,omitempty" gorm:"type:varchar(100)" binding:"omitempty,max=100"`
	Member       Member    `json:"-" gorm:"foreignKey:member_id;references:MemberID"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Vehicle) TableName() string {
	return "vehicle"
}

type VehicleResponse struct {
	VehicleID   int    `json:"vehicle_id"`
	MemberID    int    `json:"member_id"`
	PlateNumber string `json:"plate_number"`
	Details     string `json:"details,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func (v *Vehicle) ToResponse() VehicleResponse {
	return VehicleResponse{
		VehicleID:   v.VehicleID,
		MemberID:    v.MemberID,
		PlateNumber: v.PlateNumber,
		Details:     v.Details,
		CreatedAt:   v.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
