package kernel

import (
	"strings"
	"unicode"
)

// NormalizeUKPhone converts a UK phone number to E.164. Accepted inputs:
//
//	07xxxxxxxxx   -> +447xxxxxxxxx
//	447xxxxxxxxx  -> +447xxxxxxxxx
//	00447xxxxxxxx -> +447xxxxxxxx
//	+<anything>   -> kept (digits only after the plus)
//
// Anything else yields fallback.
func NormalizeUKPhone(raw, fallback string) string {
	trimmed := strings.TrimSpace(raw)
	hasPlus := strings.HasPrefix(trimmed, "+")
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, trimmed)

	switch {
	case digits == "":
		return fallback
	case hasPlus && len(digits) >= 8:
		return "+" + digits
	case strings.HasPrefix(digits, "00") && len(digits) >= 10:
		return "+" + digits[2:]
	case strings.HasPrefix(digits, "0") && len(digits) == 11:
		return "+44" + digits[1:]
	case strings.HasPrefix(digits, "44") && len(digits) == 12:
		return "+" + digits
	default:
		return fallback
	}
}
