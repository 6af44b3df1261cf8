package services

import "errors"

// 業務規則錯誤：一律回傳給呼叫端，不重試、不吞掉
var (
	ErrLotNotFound            = errors.New("parking lot not found")
	ErrLotFull                = errors.New("no available spot in parking lot")
	ErrSpotNotFound           = errors.New("parking spot not found")
	ErrSpotNotOccupied        = errors.New("parking spot is not occupied")
	ErrDuplicateActiveSession = errors.New("member already has an active parking session")
	ErrSpotAlreadyOccupied    = errors.New("spot already has an open reservation")
	ErrNoActiveReservation    = errors.New("no active reservation for this spot")
	ErrForbidden              = errors.New("reservation belongs to another member")
	ErrReservationNotFound    = errors.New("reservation not found")
	ErrAlreadyClosed          = errors.New("reservation is already closed")
	ErrPaymentNotYetDue       = errors.New("cannot pay before leaving the spot")
	ErrAlreadyPaid            = errors.New("reservation is already paid")
	ErrVehicleNotFound        = errors.New("vehicle not found")
	ErrDuplicateVehicle       = errors.New("vehicle with this plate is already registered to you")
	ErrVehicleInUse           = errors.New("vehicle has an open reservation")
	ErrLotInUse               = errors.New("parking lot has open reservations")
	ErrLotShrinkBlocked       = errors.New("not enough free spots to shrink parking lot")
)
