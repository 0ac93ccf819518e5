package public

import (
	"strings"

	"github.com/aipath-api/internal/http/response"

	"github.com/gin-gonic/gin"
)

// authorizeUserPath 校验令牌 uid 与路径中的 user_id 一致
func authorizeUserPath(c *gin.Context) (string, bool) {
	tokenUserID, ok := getUserID(c)
	if !ok {
		respondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return "", false
	}
	pathUserID := strings.TrimSpace(c.Param("user_id"))
	if pathUserID == "" || pathUserID != tokenUserID {
		requestLog(c).Warnw("user_entitlement_access_denied", "token_user_id", tokenUserID, "path_user_id", pathUserID)
		respondError(c, response.CodeForbidden, "error.user_mismatch", nil)
		return "", false
	}
	return tokenUserID, true
}

// GetUserCourses 获取用户已购课程权益
func (h *Handler) GetUserCourses(c *gin.Context) {
	userID, ok := authorizeUserPath(c)
	if !ok {
		return
	}
	items, err := h.EntitlementService.ListByUser(userID)
	if err != nil {
		respondEntitlementReadError(c, err)
		return
	}
	response.Success(c, items)
}

// GetUserCourse 获取用户单个课程权益
func (h *Handler) GetUserCourse(c *gin.Context) {
	userID, ok := authorizeUserPath(c)
	if !ok {
		return
	}
	entitlement, err := h.EntitlementService.Get(userID, c.Param("course_id"))
	if err != nil {
		respondEntitlementReadError(c, err)
		return
	}
	response.Success(c, entitlement)
}
