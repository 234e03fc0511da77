package tuerulebase

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Catneko-0422/tuerulebase/pkg/domain"
)

// DefaultMaxCodeLength bounds the characters accepted by SanitizeCode.
const DefaultMaxCodeLength = 256

var (
	ErrEmptyCode   = fmt.Errorf("%w: code is required", domain.ErrInvalidInput)
	ErrCodeTooLong = fmt.Errorf("%w: code exceeds maximum length", domain.ErrInvalidInput)
	ErrInvalidUTF8 = fmt.Errorf("%w: code contains invalid UTF-8 sequences", domain.ErrInvalidInput)
	ErrControlChar = fmt.Errorf("%w: code contains control characters", domain.ErrInvalidInput)
)

// SanitizeCode trims surrounding whitespace and otherwise returns the code
// unchanged. It rejects codes that are empty, longer than limit characters,
// not valid UTF-8 or that still contain control characters after the trim.
// A limit <= 0 selects DefaultMaxCodeLength.
func SanitizeCode(code string, limit int) (string, error) {
	if limit <= 0 {
		limit = DefaultMaxCodeLength
	}
	if !utf8.ValidString(code) {
		return "", ErrInvalidUTF8
	}

	code = strings.TrimSpace(code)
	if n := utf8.RuneCountInString(code); n > limit {
		return "", fmt.Errorf("%w: length=%d limit=%d", ErrCodeTooLong, n, limit)
	}

	if code == "" {
		return "", ErrEmptyCode
	}
	if i := strings.IndexFunc(code, unicode.IsControl); i >= 0 {
		return "", fmt.Errorf("%w: at byte %d", ErrControlChar, i)
	}
	return code, nil
}
