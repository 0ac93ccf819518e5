package stripe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aipath-api/internal/constants"
)

// CheckoutMetadata Checkout Session 携带的业务关联信息，随完成事件原样返回。
type CheckoutMetadata struct {
	CourseID   string `json:"courseId"`
	ReferrerID string `json:"referrerId"`
	UserID     string `json:"userId"`
}

// ToMap 转换为 Stripe metadata，referrerId 缺省时写入空字符串。
func (m CheckoutMetadata) ToMap() map[string]string {
	return map[string]string{
		constants.CheckoutMetadataCourseID: m.CourseID,
		constants.CheckoutMetadataReferrer: m.ReferrerID,
		constants.CheckoutMetadataUserID:   m.UserID,
	}
}

// DecodeCheckoutMetadata 严格解析 metadata：拒绝未知键，courseId 与 userId 必填。
func DecodeCheckoutMetadata(raw json.RawMessage) (CheckoutMetadata, error) {
	var meta CheckoutMetadata
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return meta, fmt.Errorf("%w: metadata is empty", ErrMetadataInvalid)
	}
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&meta); err != nil {
		return CheckoutMetadata{}, fmt.Errorf("%w: %v", ErrMetadataInvalid, err)
	}
	meta.CourseID = strings.TrimSpace(meta.CourseID)
	meta.UserID = strings.TrimSpace(meta.UserID)
	meta.ReferrerID = strings.TrimSpace(meta.ReferrerID)
	if meta.CourseID == "" || meta.UserID == "" {
		return meta, fmt.Errorf("%w: courseId and userId are required", ErrMetadataInvalid)
	}
	return meta, nil
}
