package models

// 車位狀態：只有 available / occupied 兩種，佔用與否完全由 park/leave 驅動
const (
	SpotStatusAvailable = "available"
	SpotStatusOccupied  = "occupied"
)

type ParkingSpot struct {
	SpotID int        `json:"spot_id" gorm:"primaryKey;autoIncrement;type:INT"`
	LotID  int        `json:"lot_id" gorm:"index;not null;type:INT"`
	Status string     `json:"status" gorm:"type:varchar(20);not null;default:'available'"`
	Lot    ParkingLot `json:"-" gorm:"foreignKey:lot_id;references:LotID"`
}

func (ParkingSpot) TableName() string {
	return "parking_spot"
}

type ParkingSpotResponse struct {
	SpotID int    `json:"spot_id"`
	LotID  int    `json:"lot_id"`
	Status string `json:"status"`
}

func (p *ParkingSpot) ToResponse() ParkingSpotResponse {
	return ParkingSpotResponse{
		SpotID: p.SpotID,
		LotID:  p.LotID,
		Status: p.Status,
	}
}
