package utils

import (
	"errors"
	"strings"
)

// ErrInvalidPhone is returned for anything that is not a Philippine mobile number
var ErrInvalidPhone = errors.New("invalid Philippine mobile number")

// NormalizePhone folds the accepted national and international spellings of a
// Philippine mobile number into +639XXXXXXXXX:
//
//	09171234567, 9171234567, 639171234567, +63 917 123 4567
//
// Spaces, dashes, dots and parentheses are ignored. The function is idempotent.
func NormalizePhone(raw string) (string, error) {
	var sb strings.Builder
	for i, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
		default:
			return "", ErrInvalidPhone
		}
	}
	digits := sb.String()

	var national string
	switch {
	case len(digits) == 11 && strings.HasPrefix(digits, "09"):
		national = digits[1:]
	case len(digits) == 10 && strings.HasPrefix(digits, "9"):
		national = digits
	case len(digits) == 12 && strings.HasPrefix(digits, "639"):
		national = digits[2:]
	default:
		return "", ErrInvalidPhone
	}
	return "+63" + national, nil
}

// IsValidPhone reports whether NormalizePhone accepts raw
func IsValidPhone(raw string) bool {
	_, err := NormalizePhone(raw)
	return err == nil
}

// MaskPhone hides all but the last four digits for logging
func MaskPhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
