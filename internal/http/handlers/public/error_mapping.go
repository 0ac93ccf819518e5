package public

import (
	"errors"
	"net/http"

	"github.com/aipath-api/internal/http/response"
	"github.com/aipath-api/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

var courseReadErrorRules = []mappedHandlerError{
	{target: service.ErrCourseNotFound, code: response.CodeNotFound, key: "error.course_not_found"},
}

var entitlementReadErrorRules = []mappedHandlerError{
	{target: service.ErrEntitlementNotFound, code: response.CodeNotFound, key: "error.entitlement_not_found"},
	{target: service.ErrValidation, code: response.CodeBadRequest, key: "error.bad_request"},
}

func respondCourseReadError(c *gin.Context, err error) {
	respondWithMappedError(c, err, courseReadErrorRules, response.CodeInternal, "error.course_fetch_failed")
}

func respondEntitlementReadError(c *gin.Context, err error) {
	respondWithMappedError(c, err, entitlementReadErrorRules, response.CodeInternal, "error.entitlement_fetch_failed")
}

// plainError 纯文本接口的错误映射：HTTP 状态码 + 固定文案
type plainError struct {
	target error
	status int
	body   string
}

var checkoutPlainErrors = []plainError{
	{target: service.ErrCheckoutFieldsMissing, status: http.StatusBadRequest, body: "Missing courseId or userId"},
	{target: service.ErrCourseNotFound, status: http.StatusNotFound, body: "Course not found"},
}

// resolvePlainError 未命中映射时返回 500 并附带错误信息
func resolvePlainError(err error, rules []plainError) (int, string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			return rule.status, rule.body
		}
	}
	return http.StatusInternalServerError, "Internal Server Error: " + err.Error()
}
