package public

import (
	"strings"

	handlershared "github.com/aipath-api/internal/http/handlers/shared"
	"github.com/aipath-api/internal/http/response"
	"github.com/aipath-api/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetCourses 前台课程目录，支持 level / role_id / search 过滤
func (h *Handler) GetCourses(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	courses, total, err := h.CourseService.ListPublic(c.Request.Context(), repository.CourseListFilter{
		Page:     page,
		PageSize: pageSize,
		Level:    strings.TrimSpace(c.Query("level")),
		RoleID:   strings.TrimSpace(c.Query("role_id")),
		Search:   strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondCourseReadError(c, err)
		return
	}
	response.SuccessWithPage(c, courses, response.BuildPagination(page, pageSize, total))
}

// GetCourse 前台课程详情
func (h *Handler) GetCourse(c *gin.Context) {
	course, err := h.CourseService.GetPublic(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondCourseReadError(c, err)
		return
	}
	response.Success(c, course)
}
