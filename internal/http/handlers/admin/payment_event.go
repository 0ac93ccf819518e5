package admin

import (
	"strings"

	handlershared "github.com/aipath-api/internal/http/handlers/shared"
	"github.com/aipath-api/internal/http/response"
	"github.com/aipath-api/internal/repository"
	"github.com/aipath-api/internal/service"

	"github.com/gin-gonic/gin"
)

var paymentEventErrorRules = []mappedHandlerError{
	{target: service.ErrPaymentEventNotFound, code: response.CodeNotFound, key: "error.payment_event_not_found"},
}

// GetAdminPaymentEvents 获取支付回调台账
func (h *Handler) GetAdminPaymentEvents(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	events, total, err := h.PaymentEventService.List(repository.PaymentEventListFilter{
		Page:      page,
		PageSize:  pageSize,
		Provider:  strings.TrimSpace(c.Query("provider")),
		Status:    strings.TrimSpace(c.Query("status")),
		EventType: strings.TrimSpace(c.Query("event_type")),
		SessionID: strings.TrimSpace(c.Query("session_id")),
	})
	if err != nil {
		respondWithMappedError(c, err, paymentEventErrorRules, response.CodeInternal, "error.payment_event_fetch_failed")
		return
	}
	response.SuccessWithPage(c, events, response.BuildPagination(page, pageSize, total))
}

// GetAdminPaymentEvent 获取单条回调事件（含原始报文）
func (h *Handler) GetAdminPaymentEvent(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	event, err := h.PaymentEventService.Get(id)
	if err != nil {
		respondWithMappedError(c, err, paymentEventErrorRules, response.CodeInternal, "error.payment_event_fetch_failed")
		return
	}
	response.Success(c, event)
}
