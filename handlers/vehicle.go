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

// RegisterVehicle 登記車輛
func RegisterVehicle(c *gin.Context) {
	memberID, _, ok := getAuthMember(c)
	if !ok {
		return
	}

	var input struct {
		PlateNumber string `json:"plate_number" binding:"required,max=20"`
		Details     string `json:"details" binding:"omitempty,max=100"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Printf("Invalid input data: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料", err.Error(), "ERR_INVALID_INPUT")
		return
	}

	vehicle := models.Vehicle{
		MemberID:    memberID,
		PlateNumber: input.PlateNumber,
		Details:     input.Details,
	}

	if err := services.RegisterVehicle(&vehicle); err != nil {
		if errors.Is(err, services.ErrDuplicateVehicle) {
			ErrorResponse(c, http.StatusConflict, "該車牌已登記在您的帳號下", err.Error(), "ERR_DUPLICATE_VEHICLE")
			return
		}
		log.Printf("Failed to register vehicle for member %d: %v", memberID, err)
		ErrorResponse(c, http.StatusBadRequest, "車輛登記失敗", err.Error(), "ERR_VEHICLE_REGISTER_FAILED")
		return
	}

	SuccessResponse(c, http.StatusOK, "車輛登記成功", vehicle.ToResponse())
}

// GetMyVehicles 查詢自己的所有車輛
func GetMyVehicles(c *gin.Context) {
	memberID, _, ok := getAuthMember(c)
	if !ok {
		return
	}

	vehicles, err := services.GetMemberVehicles(memberID)
	if err != nil {
		log.Printf("Failed to get vehicles for member %d: %v", memberID, err)
		ErrorResponse(c, http.StatusInternalServerError, "查詢車輛失敗", err.Error(), "ERR_DB")
		return
	}

	responses := make([]models.VehicleResponse, len(vehicles))
	for i, v := range vehicles {
		responses[i] = v.ToResponse()
	}
	SuccessResponse(c, http.StatusOK, "查詢成功", responses)
}

// GetVehicle 查詢單一車輛
func GetVehicle(c *gin.Context) {
	memberID, role, ok := getAuthMember(c)
	if !ok {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的車輛ID", err.Error(), "ERR_INVALID_ID")
		return
	}

	vehicle, err := services.GetVehicleByID(id, memberID, role)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrVehicleNotFound):
			ErrorResponse(c, http.StatusNotFound, "車輛不存在", err.Error(), "ERR_VEHICLE_NOT_FOUND")
		case errors.Is(err, services.ErrForbidden):
			ErrorResponse(c, http.StatusForbidden, "無權限", err.Error(), "ERR_FORBIDDEN")
		default:
			log.Printf("Failed to get vehicle %d: %v", id, err)
			ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤", err.Error(), "ERR_DB")
		}
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", vehicle.ToResponse())
}

// DeleteVehicle 刪除車輛
func DeleteVehicle(c *gin.Context) {
	memberID, role, ok := getAuthMember(c)
	if !ok {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的車輛ID", err.Error(), "ERR_INVALID_ID")
		return
	}

	if err := services.DeleteVehicle(id, memberID, role); err != nil {
		switch {
		case errors.Is(err, services.ErrVehicleNotFound):
			ErrorResponse(c, http.StatusNotFound, "車輛不存在", err.Error(), "ERR_VEHICLE_NOT_FOUND")
		case errors.Is(err, services.ErrForbidden):
			ErrorResponse(c, http.StatusForbidden, "無權限", err.Error(), "ERR_FORBIDDEN")
		case errors.Is(err, services.ErrVehicleInUse):
			ErrorResponse(c, http.StatusConflict, "車輛尚有未結束的停車時段", err.Error(), "ERR_VEHICLE_IN_USE")
		default:
			log.Printf("Failed to delete vehicle %d: %v", id, err)
			ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤", err.Error(), "ERR_DB")
		}
		return
	}

	SuccessResponse(c, http.StatusOK, "車輛刪除成功", nil)
}
