package shared

import (
	"strings"

	"github.com/aipath-api/internal/http/response"

	"github.com/gin-gonic/gin"
)

// 鉴权中间件写入的上下文键
const (
	ContextKeyAdminID      = "admin_id"
	ContextKeyAdminIsSuper = "admin_is_super"
	ContextKeyUserID       = "user_id"
)

// GetContextUint 读取管理员等数字主体 ID，缺失或类型异常时直接写出错误响应
func GetContextUint(c *gin.Context, key string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}
	var id uint
	switch v := value.(type) {
	case uint:
		id = v
	case uint64:
		id = uint(v)
	case int:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, "error.admin_id_invalid", nil)
			return 0, false
		}
		id = uint(v)
	default:
		RespondError(c, response.CodeInternal, "error.admin_id_type_invalid", nil)
		return 0, false
	}
	if id == 0 {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}
	return id, true
}

// GetContextString 读取用户 uid 等字符串主体，不写响应
func GetContextString(c *gin.Context, key string) (string, bool) {
	value, exists := c.Get(key)
	if !exists {
		return "", false
	}
	raw, ok := value.(string)
	if !ok {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

// GetContextBool 读取布尔标记，缺失视为 false
func GetContextBool(c *gin.Context, key string) bool {
	flag, ok := c.Get(key)
	if !ok {
		return false
	}
	b, ok := flag.(bool)
	return ok && b
}
