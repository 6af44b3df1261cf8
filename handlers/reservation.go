package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/abhilash-IITm/car-parking/database"
	"github.com/abhilash-IITm/car-parking/models"
	"github.com/abhilash-IITm/car-parking/services"
	"github.com/gin-gonic/gin"
)

// ParkVehicle 進場：在指定停車場配一個車位
func ParkVehicle(c *gin.Context) {
	memberID, _, ok := getAuthMember(c)
	if !ok {
		return
	}

	var input struct {
		VehicleID int `json:"vehicle_id" binding:"required,gt=0"`
		LotID     int `json:"lot_id" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Printf("Invalid input data: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料", err.Error(), "ERR_INVALID_INPUT")
		return
	}

	res, err := services.ParkVehicle(memberID, input.VehicleID, input.LotID, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLotNotFound):
			ErrorResponse(c, http.StatusNotFound, "停車場不存在", err.Error(), "ERR_LOT_NOT_FOUND")
		case errors.Is(err, services.ErrLotFull):
			ErrorResponse(c, http.StatusConflict, "停車場已滿", err.Error(), "ERR_LOT_FULL")
		case errors.Is(err, services.ErrDuplicateActiveSession):
			ErrorResponse(c, http.StatusConflict, "您已有進行中的停車時段", err.Error(), "ERR_DUPLICATE_SESSION")
		case errors.Is(err, services.ErrVehicleNotFound):
			ErrorResponse(c, http.StatusNotFound, "車輛不存在", err.Error(), "ERR_VEHICLE_NOT_FOUND")
		default:
			log.Printf("Failed to park for member %d: %v", memberID, err)
			ErrorResponse(c, http.StatusInternalServerError, "進場失敗", err.Error(), "ERR_PARK_FAILED")
		}
		return
	}

	SuccessResponse(c, http.StatusOK, "進場成功", res.ToResponse())
}

// LeaveSpot 離場：結算費用並釋放車位
func LeaveSpot(c *gin.Context) {
	memberID, _, ok := getAuthMember(c)
	if !ok {
		return
	}

	var input struct {
		SpotID int `json:"spot_id" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Printf("Invalid input data: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料", err.Error(), "ERR_INVALID_INPUT")
		return
	}

	res, err := services.LeaveSpot(memberID, input.SpotID, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoActiveReservation):
			ErrorResponse(c, http.StatusNotFound, "該車位沒有進行中的停車時段", err.Error(), "ERR_NO_ACTIVE_RESERVATION")
		case errors.Is(err, services.ErrForbidden):
			ErrorResponse(c, http.StatusForbidden, "該停車時段不屬於您", err.Error(), "ERR_FORBIDDEN")
		default:
			log.Printf("Failed to leave spot %d for member %d: %v", input.SpotID, memberID, err)
			ErrorResponse(c, http.StatusInternalServerError, "離場失敗", err.Error(), "ERR_LEAVE_FAILED")
		}
		return
	}

	SuccessResponse(c, http.StatusOK, "離場成功", res.ToResponse())
}

// PayReservation 付款：pending/failed 轉為 paid
func PayReservation(c *gin.Context) {
	memberID, role, ok := getAuthMember(c)
	if !ok {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的停車紀錄ID", err.Error(), "ERR_INVALID_ID")
		return
	}

	// 先確認單據屬於目前會員，再進行狀態轉移
	if _, err := services.GetReservationByID(id, memberID, role); err != nil {
		switch {
		case errors.Is(err, services.ErrReservationNotFound):
			ErrorResponse(c, http.StatusNotFound, "停車紀錄不存在", err.Error(), "ERR_RESERVATION_NOT_FOUND")
		case errors.Is(err, services.ErrForbidden):
			ErrorResponse(c, http.StatusForbidden, "無權限", err.Error(), "ERR_FORBIDDEN")
		default:
			log.Printf("Failed to load reservation %d: %v", id, err)
			ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤", err.Error(), "ERR_DB")
		}
		return
	}

	res, err := services.PayReservation(id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReservationNotFound):
			ErrorResponse(c, http.StatusNotFound, "停車紀錄不存在", err.Error(), "ERR_RESERVATION_NOT_FOUND")
		case errors.Is(err, services.ErrPaymentNotYetDue):
			ErrorResponse(c, http.StatusConflict, "尚未離場，無法付款", err.Error(), "ERR_PAYMENT_NOT_DUE")
		case errors.Is(err, services.ErrAlreadyPaid):
			ErrorResponse(c, http.StatusConflict, "此單已付款", err.Error(), "ERR_ALREADY_PAID")
		default:
			log.Printf("Failed to pay reservation %d: %v", id, err)
			ErrorResponse(c, http.StatusInternalServerError, "付款失敗", err.Error(), "ERR_PAY_FAILED")
		}
		return
	}

	SuccessResponse(c, http.StatusOK, "付款成功", res.ToResponse())
}

// GetReservation 查詢單筆停車紀錄
func GetReservation(c *gin.Context) {
	memberID, role, ok := getAuthMember(c)
	if !ok {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的停車紀錄ID", err.Error(), "ERR_INVALID_ID")
		return
	}

	res, err := services.GetReservationByID(id, memberID, role)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReservationNotFound):
			ErrorResponse(c, http.StatusNotFound, "停車紀錄不存在", err.Error(), "ERR_RESERVATION_NOT_FOUND")
		case errors.Is(err, services.ErrForbidden):
			ErrorResponse(c, http.StatusForbidden, "無權限", err.Error(), "ERR_FORBIDDEN")
		default:
			log.Printf("Failed to get reservation %d: %v", id, err)
			ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤", err.Error(), "ERR_DB")
		}
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", res.ToResponse())
}

// GetMyReservations 查詢自己的停車歷史
func GetMyReservations(c *gin.Context) {
	memberID, _, ok := getAuthMember(c)
	if !ok {
		return
	}

	reservations, err := services.GetMemberReservations(memberID)
	if err != nil {
		log.Printf("Failed to get reservations for member %d: %v", memberID, err)
		ErrorResponse(c, http.StatusInternalServerError, "查詢停車歷史失敗", err.Error(), "ERR_DB")
		return
	}

	responses := make([]models.ReservationResponse, len(reservations))
	for i := range reservations {
		responses[i] = reservations[i].ToResponse()
	}
	SuccessResponse(c, http.StatusOK, "查詢成功", responses)
}

// GetMyOpenReservation 查詢自己目前在場中的停車時段
func GetMyOpenReservation(c *gin.Context) {
	memberID, _, ok := getAuthMember(c)
	if !ok {
		return
	}

	res, err := services.FindOpenReservationByMember(database.DB, memberID)
	if err != nil {
		log.Printf("Failed to get open reservation for member %d: %v", memberID, err)
		ErrorResponse(c, http.StatusInternalServerError, "查詢失敗", err.Error(), "ERR_DB")
		return
	}
	if res == nil {
		SuccessResponse(c, http.StatusOK, "目前沒有進行中的停車時段", nil)
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", res.ToResponse())
}

// AuditConsistency 稽核車位與帳本一致性（管理員），只回報不修復
func AuditConsistency(c *gin.Context) {
	anomalies, err := services.AuditSpotConsistency()
	if err != nil {
		log.Printf("Failed to audit spot consistency: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "稽核失敗", err.Error(), "ERR_DB")
		return
	}

	SuccessResponse(c, http.StatusOK, "稽核完成", gin.H{
		"anomaly_count": len(anomalies),
		"anomalies":     anomalies,
	})
}
