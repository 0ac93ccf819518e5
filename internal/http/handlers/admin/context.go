package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/aipath-api/internal/http/handlers/shared"
	"github.com/aipath-api/internal/http/response"

	"github.com/gin-gonic/gin"
)

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, handlershared.ContextKeyAdminID)
}

func currentAdminIsSuper(c *gin.Context) bool {
	return handlershared.GetContextBool(c, handlershared.ContextKeyAdminIsSuper)
}

// parseUintParam 解析路径中的数字 ID，失败时直接返回 400
func parseUintParam(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return 0, false
	}
	return uint(id), true
}
