package public

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/aipath-api/internal/http/response"
	"github.com/aipath-api/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	checkoutAllowHeaders = "Content-Type, X-User-Id"
	checkoutMaxAge       = "3600"
	checkoutUserIDHeader = "X-User-Id"
	checkoutBodyLimit    = 64 << 10
)

// CreateCheckoutSessionRequest 前端发起结算的请求体
type CreateCheckoutSessionRequest struct {
	CourseID   string `json:"courseId"`
	ReferrerID string `json:"referrerId"`
	UserID     string `json:"userId"`
	UserEmail  string `json:"userEmail"`
}

// CreateCheckoutSession 创建 Stripe Checkout Session，返回跳转地址。
// 该接口直接面向前端函数调用，使用真实 HTTP 状态码与纯文本错误体。
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	if c.Request.Method == http.MethodOptions {
		c.Header("Access-Control-Allow-Methods", http.MethodPost)
		c.Header("Access-Control-Allow-Headers", checkoutAllowHeaders)
		c.Header("Access-Control-Max-Age", checkoutMaxAge)
		c.AbortWithStatus(http.StatusNoContent)
		return
	}
	if c.Request.Method != http.MethodPost {
		response.PlainText(c, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	log := requestLog(c)
	req := readCheckoutRequest(c)
	if strings.TrimSpace(req.UserID) == "" {
		req.UserID = strings.TrimSpace(c.GetHeader(checkoutUserIDHeader))
	}

	result, err := h.CheckoutService.CreateCheckoutSession(service.CreateCheckoutSessionInput{
		CourseID:      req.CourseID,
		UserID:        req.UserID,
		ReferrerID:    req.ReferrerID,
		UserEmail:     req.UserEmail,
		ReturnBaseURL: h.resolveReturnOrigin(c.GetHeader("Origin")),
		Context:       c.Request.Context(),
	})
	if err != nil {
		status, body := resolvePlainError(err, checkoutPlainErrors)
		if status >= http.StatusInternalServerError {
			log.Errorw("checkout_session_request_failed", "course_id", req.CourseID, "user_id", req.UserID, "error", err)
		} else {
			log.Infow("checkout_session_request_rejected", "course_id", req.CourseID, "status", status)
		}
		response.PlainText(c, status, body)
		return
	}

	response.PlainJSON(c, http.StatusOK, gin.H{"url": result.URL})
}

// readCheckoutRequest 读取请求体；格式错误按字段缺失处理
func readCheckoutRequest(c *gin.Context) CreateCheckoutSessionRequest {
	var req CreateCheckoutSessionRequest
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, checkoutBodyLimit))
	if err != nil || len(body) == 0 {
		return req
	}
	if err := json.Unmarshal(body, &req); err != nil {
		requestLog(c).Debugw("checkout_request_body_invalid", "error", err)
		return CreateCheckoutSessionRequest{}
	}
	return req
}

// resolveReturnOrigin 仅接受 CORS 白名单内的 Origin 作为支付回跳地址，否则回退到配置的前端地址
func (h *Handler) resolveReturnOrigin(origin string) string {
	origin = strings.TrimRight(strings.TrimSpace(origin), "/")
	if origin == "" || h.Config == nil {
		return ""
	}
	for _, allowed := range h.Config.CORS.AllowedOrigins {
		if allowed != "*" && strings.EqualFold(strings.TrimRight(strings.TrimSpace(allowed), "/"), origin) {
			return origin
		}
	}
	return ""
}
