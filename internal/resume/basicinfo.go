package resume

import (
	"strings"

	"resumechat/internal/errors"
)

// Validation messages shown inline at the basic-info form
const (
	MsgRequired     = "이름과 이메일은 필수 입력 항목입니다."
	MsgInvalidEmail = "올바른 이메일 형식이 아닙니다."
	MsgInvalidPhone = "올바른 전화번호 형식이 아닙니다."
)

// BasicInfo is the personal-info block collected at step 1
type BasicInfo struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Portfolio string `json:"portfolio,omitempty"`
}

// Normalize trims surrounding whitespace from every field
func (b BasicInfo) Normalize() BasicInfo {
	return BasicInfo{
		Name:      strings.TrimSpace(b.Name),
		Email:     strings.TrimSpace(b.Email),
		Phone:     strings.TrimSpace(b.Phone),
		Portfolio: strings.TrimSpace(b.Portfolio),
	}
}

// Validate checks the basic-info format rules.
// The returned error names the first failing field in its "field" context.
func (b BasicInfo) Validate() error {
	b = b.Normalize()

	if b.Name == "" {
		return invalid("name", MsgRequired)
	}
	if b.Email == "" {
		return invalid("email", MsgRequired)
	}
	if !strings.Contains(b.Email, "@") || !strings.Contains(b.Email, ".") {
		return invalid("email", MsgInvalidEmail)
	}
	if b.Phone != "" && !isPhone(b.Phone) {
		return invalid("phone", MsgInvalidPhone)
	}
	return nil
}

func isPhone(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && r != '-' {
			return false
		}
	}
	return true
}

func invalid(field, message string) error {
	return errors.NewValidationError(errors.ErrCodeInvalidBasicInfo, message, nil).
		WithContext("field", field)
}
