package service

import (
	"errors"
	"fmt"
)

// 错误分类：处理器按分类映射 HTTP 状态码
var (
	ErrValidation         = errors.New("validation error")
	ErrNotFound           = errors.New("not found")
	ErrAuthentication     = errors.New("authentication error")
	ErrForbidden          = errors.New("forbidden")
	ErrServiceUnavailable = errors.New("service error")
)

// 结算与回调
var (
	ErrCheckoutFieldsMissing   = fmt.Errorf("%w: missing courseId or userId", ErrValidation)
	ErrCourseNotFound          = fmt.Errorf("%w: course not found", ErrNotFound)
	ErrCoursePriceInvalid      = fmt.Errorf("%w: course price invalid", ErrServiceUnavailable)
	ErrCheckoutProviderFailed  = fmt.Errorf("%w: checkout provider failed", ErrServiceUnavailable)
	ErrWebhookSignatureInvalid = fmt.Errorf("%w: webhook signature invalid", ErrAuthentication)
	ErrWebhookPayloadInvalid   = fmt.Errorf("%w: webhook payload invalid", ErrValidation)
	ErrEventLedgerFailed       = fmt.Errorf("%w: payment event ledger failed", ErrServiceUnavailable)
	ErrReconcileFailed         = fmt.Errorf("%w: entitlement reconcile failed", ErrServiceUnavailable)
	ErrPaymentEventNotFound    = fmt.Errorf("%w: payment event not found", ErrNotFound)
)

// 后台与用户读取
var (
	ErrInvalidCredentials  = fmt.Errorf("%w: invalid credentials", ErrAuthentication)
	ErrTokenInvalid        = fmt.Errorf("%w: token invalid", ErrAuthentication)
	ErrTokenRevoked        = fmt.Errorf("%w: token revoked", ErrAuthentication)
	ErrUserMismatch        = fmt.Errorf("%w: token subject does not match user", ErrForbidden)
	ErrEntitlementNotFound = fmt.Errorf("%w: entitlement not found", ErrNotFound)
	ErrPayoutNotFound      = fmt.Errorf("%w: payout not found", ErrNotFound)
	ErrPayoutStatusInvalid = fmt.Errorf("%w: payout status transition invalid", ErrValidation)
	ErrCourseInvalid       = fmt.Errorf("%w: course invalid", ErrValidation)
	ErrCourseExists        = fmt.Errorf("%w: course already exists", ErrValidation)
	ErrQueueUnavailable    = fmt.Errorf("%w: queue unavailable", ErrServiceUnavailable)
	ErrStorageUnavailable  = fmt.Errorf("%w: storage unavailable", ErrServiceUnavailable)
)
