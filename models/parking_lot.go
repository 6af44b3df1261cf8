package models

// ParkingLot 定義停車場模型，容量固定、以分鐘計價
type ParkingLot struct {
	LotID          int           `json:"lot_id" gorm:"primaryKey;autoIncrement;type:INT"`
	Name           string        `json:"name" gorm:"type:varchar(100);not null" binding:"required,max=100"`
	Address        string        `json:"address" gorm:"type:varchar(200)" binding:"omitempty,max=200"`
	PinCode        string        `json:"pin_code" gorm:"type:varchar(20)" binding:"omitempty,max=20"`
	PricePerMinute float64       `json:"price_per_minute" gorm:"type:decimal(10,2);not null" binding:"gte=0"`
	MaxSpots       int           `json:"max_spots" gorm:"type:INT;not null" binding:"required,gt=0"`
	Spots          []ParkingSpot `json:"-" gorm:"foreignKey:lot_id;references:LotID"`
	RemainingSpots int           `json:"-" gorm:"-"` // transient，不存DB，列表查詢時計算
}

func (ParkingLot) TableName() string {
	return "parking_lot"
}

type ParkingLotResponse struct {
	LotID          int     `json:"lot_id"`
	Name           string  `json:"name"`
	Address        string  `json:"address"`
	PinCode        string  `json:"pin_code"`
	PricePerMinute float64 `json:"price_per_minute"`
	MaxSpots       int     `json:"max_spots"`
	RemainingSpots int     `json:"remaining_spots"`
}

func (p *ParkingLot) ToResponse() ParkingLotResponse {
	return ParkingLotResponse{
		LotID:          p.LotID,
		Name:           p.Name,
		Address:        p.Address,
		PinCode:        p.PinCode,
		PricePerMinute: p.PricePerMinute,
		MaxSpots:       p.MaxSpots,
		RemainingSpots: p.RemainingSpots,
	}
}

// UpdateParkingLotRequest 用於 PUT 更新
type UpdateParkingLotRequest struct {
	Name           *string  `json:"name" binding:"omitempty,max=100"`
	Address        *string  `json:"address" binding:"omitempty,max=200"`
	PinCode        *string  `json:"pin_code" binding:"omitempty,max=20"`
	PricePerMinute *float64 `json:"price_per_minute" binding:"omitempty,gte=0"`
	MaxSpots       *int     `json:"max_spots" binding:"omitempty,gt=0"`
}
