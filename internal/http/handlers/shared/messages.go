package shared

// messages 错误提示文案，按 key 索引
var messages = map[string]string{
	"error.bad_request":                "Bad request",
	"error.unauthorized":               "Unauthorized",
	"error.forbidden":                  "Forbidden",
	"error.not_found":                  "Not found",
	"error.internal":                   "Internal server error",
	"error.jwt_secret_missing":         "JWT secret is not configured",
	"error.auth_header_missing":        "Authorization header is required",
	"error.auth_header_invalid":        "Authorization header must be Bearer token",
	"error.token_invalid":              "Token is invalid",
	"error.token_revoked":              "Token has been revoked",
	"error.admin_id_invalid":           "Admin id is invalid",
	"error.admin_id_type_invalid":      "Admin id type is invalid",
	"error.admin_login_invalid":        "Invalid username or password",
	"error.login_failed":               "Login failed",
	"error.password_old_invalid":       "Old password is incorrect",
	"error.password_weak":              "New password is too weak",
	"error.save_failed":                "Save failed",
	"error.user_mismatch":              "Token does not belong to this user",
	"error.rate_limit_exceeded":        "Too many requests, please retry later",
	"error.rate_limit_unavailable":     "Rate limiter unavailable",
	"error.course_not_found":           "Course not found",
	"error.course_invalid":             "Course data is invalid",
	"error.course_exists":              "Course already exists",
	"error.course_fetch_failed":        "Failed to fetch courses",
	"error.entitlement_not_found":      "Entitlement not found",
	"error.entitlement_fetch_failed":   "Failed to fetch entitlements",
	"error.payout_not_found":           "Payout not found",
	"error.payout_status_invalid":      "Payout status transition is not allowed",
	"error.payout_fetch_failed":        "Failed to fetch payouts",
	"error.payment_event_not_found":    "Payment event not found",
	"error.payment_event_fetch_failed": "Failed to fetch payment events",
	"error.role_not_found":             "Role not found",
	"error.authz_failed":               "Authorization update failed",
}

// Message 按 key 返回提示文案，未登记的 key 原样返回
func Message(key string) string {
	if msg, ok := messages[key]; ok {
		return msg
	}
	return key
}
