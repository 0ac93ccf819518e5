package public

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/aipath-api/internal/http/response"
	"github.com/aipath-api/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	stripeSignatureHeader = "Stripe-Signature"
	webhookLogValueLimit  = 512
)

// StripeWebhook Stripe 回调入口。
// 验签失败返回 400；处理失败且未能排队重试时返回 500 以便 Stripe 重新投递。
func (h *Handler) StripeWebhook(c *gin.Context) {
	log := requestLog(c)
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Warnw("stripe_webhook_body_read_failed", "error", err)
		response.PlainText(c, http.StatusBadRequest, "Webhook Error: "+err.Error())
		return
	}
	signature := strings.TrimSpace(c.GetHeader(stripeSignatureHeader))
	log.Infow("stripe_webhook_received",
		"client_ip", c.ClientIP(),
		"body_size", len(body),
		"stripe_signature", truncateLogValue(signature),
	)

	result, err := h.WebhookService.HandleStripeWebhook(service.StripeWebhookInput{
		Body:      body,
		Signature: signature,
		Context:   c.Request.Context(),
	})
	if err != nil {
		if errors.Is(err, service.ErrAuthentication) || errors.Is(err, service.ErrValidation) {
			response.PlainText(c, http.StatusBadRequest, "Webhook Error: "+err.Error())
			return
		}
		log.Errorw("stripe_webhook_handle_failed", "error", err)
		response.PlainText(c, http.StatusInternalServerError, "Internal Server Error: "+err.Error())
		return
	}

	log.Infow("stripe_webhook_acknowledged",
		"event_id", result.EventID,
		"event_type", result.EventType,
		"duplicate", result.Duplicate,
		"ignored", result.Ignored,
		"deferred", result.Deferred,
	)
	response.PlainJSON(c, http.StatusOK, gin.H{"received": true})
}

func truncateLogValue(raw string) string {
	if len(raw) <= webhookLogValueLimit {
		return raw
	}
	return raw[:webhookLogValueLimit] + "...(truncated)"
}
