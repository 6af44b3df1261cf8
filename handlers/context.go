package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// getAuthMember 從中介層塞進 context 的欄位取出目前會員身分。
// 取不到代表路由沒掛 AuthMiddleware，直接回 401 並中止。
func getAuthMember(c *gin.Context) (memberID int, role string, ok bool) {
	idVal, exists := c.Get("member_id")
	if !exists {
		ErrorResponse(c, http.StatusUnauthorized, "未授權", "member_id not found in token", "ERR_NO_MEMBER_ID")
		return 0, "", false
	}
	memberID, okID := idVal.(int)
	if !okID {
		ErrorResponse(c, http.StatusUnauthorized, "未授權", "invalid member_id type", "ERR_INVALID_MEMBER_ID")
		return 0, "", false
	}

	roleVal, exists := c.Get("role")
	if !exists {
		ErrorResponse(c, http.StatusUnauthorized, "未授權", "role not found in token", "ERR_NO_ROLE")
		return 0, "", false
	}
	role, okRole := roleVal.(string)
	if !okRole {
		ErrorResponse(c, http.StatusUnauthorized, "未授權", "invalid role type", "ERR_INVALID_ROLE")
		return 0, "", false
	}

	return memberID, role, true
}
