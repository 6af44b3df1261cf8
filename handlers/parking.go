package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/abhilash-IITm/car-parking/models"
	"github.com/abhilash-IITm/car-parking/services"
	"github.com/gin-gonic/gin"
)

// CreateParkingLot 建立停車場（管理員）
func CreateParkingLot(c *gin.Context) {
	var lot models.ParkingLot
	if err := c.ShouldBindJSON(&lot); err != nil {
		log.Printf("Invalid input data: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料", err.Error(), "ERR_INVALID_INPUT")
		return
	}

	if err := services.CreateParkingLot(&lot); err != nil {
		log.Printf("Failed to create parking lot: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "建立停車場失敗", err.Error(), "ERR_LOT_CREATE_FAILED")
		return
	}

	lot.RemainingSpots = lot.MaxSpots
	SuccessResponse(c, http.StatusOK, "停車場建立成功", lot.ToResponse())
}

// UpdateParkingLot 更新停車場（管理員）
func UpdateParkingLot(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的停車場ID", err.Error(), "ERR_INVALID_ID")
		return
	}

	var req models.UpdateParkingLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("Invalid input data: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料", err.Error(), "ERR_INVALID_INPUT")
		return
	}

	lot, err := services.UpdateParkingLot(id, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLotNotFound):
			ErrorResponse(c, http.StatusNotFound, "停車場不存在", err.Error(), "ERR_LOT_NOT_FOUND")
		case errors.Is(err, services.ErrLotShrinkBlocked):
			ErrorResponse(c, http.StatusConflict, "縮減容量失敗，空車位不足", err.Error(), "ERR_LOT_SHRINK_BLOCKED")
		default:
			log.Printf("Failed to update parking lot %d: %v", id, err)
			ErrorResponse(c, http.StatusInternalServerError, "更新停車場失敗", err.Error(), "ERR_DB")
		}
		return
	}

	SuccessResponse(c, http.StatusOK, "停車場更新成功", lot.ToResponse())
}

// DeleteParkingLot 刪除停車場（管理員）
func DeleteParkingLot(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的停車場ID", err.Error(), "ERR_INVALID_ID")
		return
	}

	if err := services.DeleteParkingLot(id); err != nil {
		switch {
		case errors.Is(err, services.ErrLotNotFound):
			ErrorResponse(c, http.StatusNotFound, "停車場不存在", err.Error(), "ERR_LOT_NOT_FOUND")
		case errors.Is(err, services.ErrLotInUse):
			ErrorResponse(c, http.StatusConflict, "停車場尚有未結束的停車時段", err.Error(), "ERR_LOT_IN_USE")
		default:
			log.Printf("Failed to delete parking lot %d: %v", id, err)
			ErrorResponse(c, http.StatusInternalServerError, "刪除停車場失敗", err.Error(), "ERR_DB")
		}
		return
	}

	SuccessResponse(c, http.StatusOK, "停車場刪除成功", nil)
}

// GetAllParkingLots 列出所有停車場與剩餘車位
func GetAllParkingLots(c *gin.Context) {
	lots, err := services.GetAllParkingLots()
	if err != nil {
		log.Printf("Failed to get parking lots: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "查詢停車場失敗", err.Error(), "ERR_DB")
		return
	}

	responses := make([]models.ParkingLotResponse, len(lots))
	for i := range lots {
		responses[i] = lots[i].ToResponse()
	}
	SuccessResponse(c, http.StatusOK, "查詢成功", responses)
}

// GetParkingLot 查詢停車場與每個車位的狀態
func GetParkingLot(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的停車場ID", err.Error(), "ERR_INVALID_ID")
		return
	}

	lot, spots, err := services.GetParkingLotByID(id)
	if err != nil {
		if errors.Is(err, services.ErrLotNotFound) {
			ErrorResponse(c, http.StatusNotFound, "停車場不存在", err.Error(), "ERR_LOT_NOT_FOUND")
			return
		}
		log.Printf("Failed to get parking lot %d: %v", id, err)
		ErrorResponse(c, http.StatusInternalServerError, "查詢停車場失敗", err.Error(), "ERR_DB")
		return
	}

	spotResponses := make([]models.ParkingSpotResponse, len(spots))
	for i := range spots {
		spotResponses[i] = spots[i].ToResponse()
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", gin.H{
		"lot":   lot.ToResponse(),
		"spots": spotResponses,
	})
}

// GetLotOccupancy 查詢停車場目前佔用數（儀表板用）
func GetLotOccupancy(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的停車場ID", err.Error(), "ERR_INVALID_ID")
		return
	}

	occupied, total, err := services.LotOccupancy(id)
	if err != nil {
		if errors.Is(err, services.ErrLotNotFound) {
			ErrorResponse(c, http.StatusNotFound, "停車場不存在", err.Error(), "ERR_LOT_NOT_FOUND")
			return
		}
		log.Printf("Failed to get occupancy for lot %d: %v", id, err)
		ErrorResponse(c, http.StatusInternalServerError, "查詢佔用狀態失敗", err.Error(), "ERR_DB")
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", gin.H{
		"lot_id":   id,
		"occupied": occupied,
		"total":    total,
	})
}
