package public

import (
	handlershared "github.com/aipath-api/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

// getUserID 读取用户令牌中的 uid，由 UserJWTAuthMiddleware 写入
func getUserID(c *gin.Context) (string, bool) {
	return handlershared.GetContextString(c, handlershared.ContextKeyUserID)
}
