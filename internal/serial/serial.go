package serial

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// MaxLength is the longest serial the machines table accepts.
const MaxLength = 100

var serialRe = regexp.MustCompile(`^[A-Za-z0-9\-_]+$`)

var (
	ErrEmpty   = errors.New("serial number is required")
	ErrTooLong = fmt.Errorf("serial number must be at most %d characters", MaxLength)
	ErrInvalid = errors.New("serial number may contain only latin letters, digits, '-' and '_'")
)

// Normalize trims and upper-cases a factory serial number and checks it
// against the allowed alphabet. Stored serials are always the normalized
// form, which makes uniqueness case-insensitive.
func Normalize(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrEmpty
	}
	if len(s) > MaxLength {
		return "", ErrTooLong
	}
	if !serialRe.MatchString(s) {
		return "", ErrInvalid
	}
	return strings.ToUpper(s), nil
}

// Canonical upper-cases a serial taken from a URL without validating it,
// so lookups by an arbitrary path segment simply miss instead of failing.
func Canonical(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// LikePattern builds a case-insensitive substring pattern for a LIKE
// clause using '\' as the escape character. '_' is legal in serials, so it
// must not act as a wildcard.
func LikePattern(fragment string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToUpper(strings.TrimSpace(fragment))) + "%"
}
