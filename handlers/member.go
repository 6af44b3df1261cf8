package handlers

import (
	"log"
	"net/http"
	"regexp"
	"strconv"

	"github.com/abhilash-IITm/car-parking/models"
	"github.com/abhilash-IITm/car-parking/services"
	"github.com/abhilash-IITm/car-parking/utils"
	"github.com/gin-gonic/gin"
)

// 帳號格式：英數與底線，3-80 字元
var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,80}$`)

// RegisterMember 註冊會員資料檢查
func RegisterMember(c *gin.Context) {
	var input struct {
		FullName string `json:"full_name"`
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Printf("Invalid input data: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料", err.Error(), "ERR_INVALID_INPUT")
		return
	}

	if !usernameRegex.MatchString(input.Username) {
		ErrorResponse(c, http.StatusBadRequest, "無效的帳號", "username must be 3-80 alphanumeric characters", "ERR_INVALID_USERNAME")
		return
	}

	// 驗證密碼（最少 8 個字元，至少一個字母和一個數字）
	if len(input.Password) < 8 || !regexp.MustCompile(`[a-zA-Z]`).MatchString(input.Password) || !regexp.MustCompile(`[0-9]`).MatchString(input.Password) {
		ErrorResponse(c, http.StatusBadRequest, "密碼必須至少8個字符，包含字母和數字", "password too weak", "ERR_WEAK_PASSWORD")
		return
	}

	member := models.Member{
		FullName: input.FullName,
		Username: input.Username,
		Password: input.Password,
		Role:     models.RoleUser, // 註冊一律為一般用戶，管理員由啟動流程建立
	}

	if err := services.RegisterMember(&member); err != nil {
		log.Printf("Failed to register member %s: %v", input.Username, err)
		ErrorResponse(c, http.StatusBadRequest, "會員註冊失敗", err.Error(), "ERR_REGISTER_FAILED")
		return
	}

	SuccessResponse(c, http.StatusOK, "會員註冊成功", member.ToResponse())
}

// LoginMember 登入會員並簽發 token
func LoginMember(c *gin.Context) {
	var loginData struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&loginData); err != nil {
		log.Printf("Invalid input data: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料", err.Error(), "ERR_INVALID_INPUT")
		return
	}

	member, err := services.LoginMember(loginData.Username, loginData.Password)
	if err != nil {
		log.Printf("Login failed for username %s: %v", loginData.Username, err)
		ErrorResponse(c, http.StatusUnauthorized, "登入失敗，檢查帳號或密碼", err.Error(), "ERR_LOGIN_FAILED")
		return
	}

	token, err := utils.GenerateToken(member.MemberID, member.Role)
	if err != nil {
		log.Printf("Failed to generate token for member %d: %v", member.MemberID, err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤", "failed to generate token", "ERR_TOKEN_GENERATION")
		return
	}

	SuccessResponse(c, http.StatusOK, "登入成功", gin.H{
		"token":  token,
		"member": member.ToResponse(),
	})
}

// GetMemberProfile 查看個人資料
func GetMemberProfile(c *gin.Context) {
	memberID, _, ok := getAuthMember(c)
	if !ok {
		return
	}

	member, err := services.GetMemberByID(memberID)
	if err != nil {
		log.Printf("Database error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤", err.Error(), "ERR_DB")
		return
	}
	if member == nil {
		ErrorResponse(c, http.StatusNotFound, "會員不存在", "member not found", "ERR_MEMBER_NOT_FOUND")
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", member.ToResponse())
}

// GetMember 查詢特定會員（管理員）
func GetMember(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的會員ID", err.Error(), "ERR_INVALID_ID")
		return
	}

	member, err := services.GetMemberByID(id)
	if err != nil {
		log.Printf("Database error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤", err.Error(), "ERR_DB")
		return
	}
	if member == nil {
		ErrorResponse(c, http.StatusNotFound, "會員不存在", "member not found", "ERR_MEMBER_NOT_FOUND")
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", member.ToResponse())
}

// GetAllMembers 查詢所有會員（管理員）
func GetAllMembers(c *gin.Context) {
	members, err := services.GetAllMembers()
	if err != nil {
		log.Printf("Failed to get all members: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "查詢所有會員失敗", err.Error(), "ERR_DB")
		return
	}

	memberResponses := make([]models.MemberResponse, len(members))
	for i, member := range members {
		memberResponses[i] = member.ToResponse()
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", memberResponses)
}
