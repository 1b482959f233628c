// Package validate holds the free-text checks used by the appointment request flow.
package validate

import (
	"regexp"
	"strings"
)

var (
	fullNameRe = regexp.MustCompile(`^[А-ЯЁ][а-яё\-]+(?: [А-ЯЁ][а-яё\-]+){1,2}$`)
	phoneRe    = regexp.MustCompile(`^(?:\+7|8)[\s\-]?\(?\d{3}\)?[\s\-]?\d{3}[\s\-]?\d{2}[\s\-]?\d{2}$`)
)

// NormalizeFullName collapses runs of whitespace into single spaces and trims the ends.
func NormalizeFullName(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// IsValidFullName reports whether text is a 2-3 word Cyrillic full name
// with every word capitalized. Whitespace is normalized before matching.
func IsValidFullName(text string) bool {
	return fullNameRe.MatchString(NormalizeFullName(text))
}

// IsRussianPhoneNumber reports whether text is a +7/8 prefixed Russian number
// with optional separators and parenthesized area code. No extra characters are allowed.
func IsRussianPhoneNumber(text string) bool {
	return phoneRe.MatchString(text)
}
