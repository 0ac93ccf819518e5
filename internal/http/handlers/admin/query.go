package admin

import (
	"fmt"
	"strings"
	"time"
)

// parseTimeQuery 支持 RFC3339 与 YYYY-MM-DD 两种格式，空值返回 nil
func parseTimeQuery(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return &parsed, nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid time %q", raw)
	}
	return &parsed, nil
}
