package admin

import (
	"strings"

	handlershared "github.com/aipath-api/internal/http/handlers/shared"
	"github.com/aipath-api/internal/http/response"
	"github.com/aipath-api/internal/repository"
	"github.com/aipath-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CourseRequest 课程创建/更新请求
type CourseRequest struct {
	ID            string           `json:"id"`
	Title         string           `json:"title" binding:"required"`
	Description   string           `json:"description"`
	Cost          *decimal.Decimal `json:"cost"`
	AffiliateLink string           `json:"affiliate_link"`
	ImageURL      string           `json:"image_url"`
	Level         string           `json:"level"`
	RoleID        string           `json:"role_id"`
	IsActive      *bool            `json:"is_active"`
	SortOrder     int              `json:"sort_order"`
}

func (r CourseRequest) toInput() service.CourseInput {
	return service.CourseInput{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		Cost:          r.Cost,
		AffiliateLink: r.AffiliateLink,
		ImageURL:      r.ImageURL,
		Level:         r.Level,
		RoleID:        r.RoleID,
		IsActive:      r.IsActive,
		SortOrder:     r.SortOrder,
	}
}

var courseErrorRules = []mappedHandlerError{
	{target: service.ErrCourseNotFound, code: response.CodeNotFound, key: "error.course_not_found"},
	{target: service.ErrCourseExists, code: response.CodeConflict, key: "error.course_exists"},
	{target: service.ErrCourseInvalid, code: response.CodeBadRequest, key: "error.course_invalid"},
}

// GetAdminCourses 获取课程列表 (Admin)
func (h *Handler) GetAdminCourses(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	courses, total, err := h.CourseService.ListAdmin(repository.CourseListFilter{
		Page:     page,
		PageSize: pageSize,
		Level:    strings.TrimSpace(c.Query("level")),
		RoleID:   strings.TrimSpace(c.Query("role_id")),
		Search:   strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.course_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, courses, response.BuildPagination(page, pageSize, total))
}

// GetAdminCourse 获取课程详情 (Admin)
func (h *Handler) GetAdminCourse(c *gin.Context) {
	course, err := h.CourseService.GetAdmin(c.Param("id"))
	if err != nil {
		respondWithMappedError(c, err, courseErrorRules, response.CodeInternal, "error.course_fetch_failed")
		return
	}
	response.Success(c, course)
}

// CreateCourse 创建课程
func (h *Handler) CreateCourse(c *gin.Context) {
	var req CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	course, err := h.CourseService.Create(c.Request.Context(), req.toInput())
	if err != nil {
		respondWithMappedError(c, err, courseErrorRules, response.CodeInternal, "error.save_failed")
		return
	}
	response.Success(c, course)
}

// UpdateCourse 更新课程
func (h *Handler) UpdateCourse(c *gin.Context) {
	var req CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	course, err := h.CourseService.Update(c.Request.Context(), c.Param("id"), req.toInput())
	if err != nil {
		respondWithMappedError(c, err, courseErrorRules, response.CodeInternal, "error.save_failed")
		return
	}
	response.Success(c, course)
}

// DeleteCourse 下架并删除课程，已购权益保留
func (h *Handler) DeleteCourse(c *gin.Context) {
	if err := h.CourseService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondWithMappedError(c, err, courseErrorRules, response.CodeInternal, "error.save_failed")
		return
	}
	response.Success(c, nil)
}
