package admin

import (
	"strings"

	handlershared "github.com/aipath-api/internal/http/handlers/shared"
	"github.com/aipath-api/internal/http/response"
	"github.com/aipath-api/internal/repository"
	"github.com/aipath-api/internal/service"

	"github.com/gin-gonic/gin"
)

type updatePayoutStatusPayload struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

var payoutErrorRules = []mappedHandlerError{
	{target: service.ErrPayoutNotFound, code: response.CodeNotFound, key: "error.payout_not_found"},
	{target: service.ErrPayoutStatusInvalid, code: response.CodeBadRequest, key: "error.payout_status_invalid"},
	{target: service.ErrValidation, code: response.CodeBadRequest, key: "error.bad_request"},
}

// GetAdminPayouts 获取推广佣金流水
func (h *Handler) GetAdminPayouts(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	createdFrom, err := parseTimeQuery(c.Query("created_from"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	createdTo, err := parseTimeQuery(c.Query("created_to"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	payouts, total, err := h.PayoutService.List(repository.PayoutListFilter{
		Page:        page,
		PageSize:    pageSize,
		Status:      strings.TrimSpace(c.Query("status")),
		ReferrerID:  strings.TrimSpace(c.Query("referrer_id")),
		UserID:      strings.TrimSpace(c.Query("user_id")),
		CourseID:    strings.TrimSpace(c.Query("course_id")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondWithMappedError(c, err, payoutErrorRules, response.CodeInternal, "error.payout_fetch_failed")
		return
	}
	response.SuccessWithPage(c, payouts, response.BuildPagination(page, pageSize, total))
}

// GetAdminPayout 获取单条佣金流水
func (h *Handler) GetAdminPayout(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	payout, err := h.PayoutService.Get(id)
	if err != nil {
		respondWithMappedError(c, err, payoutErrorRules, response.CodeInternal, "error.payout_fetch_failed")
		return
	}
	response.Success(c, payout)
}

// UpdateAdminPayoutStatus 结算或取消佣金
func (h *Handler) UpdateAdminPayoutStatus(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req updatePayoutStatusPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	payout, err := h.PayoutService.UpdateStatus(service.UpdatePayoutStatusInput{
		PayoutID: id,
		Status:   req.Status,
		Note:     req.Note,
		AdminID:  adminID,
	})
	if err != nil {
		respondWithMappedError(c, err, payoutErrorRules, response.CodeInternal, "error.save_failed")
		return
	}
	response.Success(c, payout)
}
