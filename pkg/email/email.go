// Package email holds small helpers for addressing and personalizing
// outbound mail.
package email

import (
	"strings"
	"unicode"
)

// DeriveDisplayName builds a best-effort display name from an email address,
// for use when a donor record carries no full name. "jane.doe@example.com"
// becomes "Jane Doe"; unparseable local parts fall back to "Donor".
func DeriveDisplayName(address string) string {
	localPart := address
	if at := strings.IndexByte(address, '@'); at > 0 {
		localPart = address[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(parts) == 0 {
		return "Donor"
	}

	for i, p := range parts {
		parts[i] = capitalize(p)
	}
	return strings.Join(parts, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
