// Package wa provides WhatsApp click-to-chat helpers: phone sanitizing and
// validation, link construction, and display masking. Phones arrive from the
// sheet in inconsistent shapes ("+971 50-123 4567", "971501234567"), so every
// consumer goes through these helpers rather than trusting the raw value.
package wa

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	nonDigitPlusRE = regexp.MustCompile(`[^\d+]`)
	nonDigitRE     = regexp.MustCompile(`\D`)
	e164RE         = regexp.MustCompile(`^\+\d{8,15}$`)
)

// SanitizePhone strips everything except digits and '+' from a phone string.
func SanitizePhone(phone string) string {
	return nonDigitPlusRE.ReplaceAllString(phone, "")
}

// IsValidE164 reports whether phone is a strict E.164 number: a leading '+'
// followed by 8 to 15 digits.
func IsValidE164(phone string) bool {
	return e164RE.MatchString(strings.TrimSpace(phone))
}

// IsValidPhone is the operational validity check used by the classifier:
// a phone is sendable when at least 9 digits remain after removing all
// non-digit characters. Looser than E.164 on purpose; the sheet often
// carries locally formatted numbers that WhatsApp still resolves.
func IsValidPhone(phone string) bool {
	return len(nonDigitRE.ReplaceAllString(phone, "")) >= 9
}

// BuildLink constructs a wa.me click-to-chat URI for the given phone and
// pre-filled message. The phone is reduced to bare digits (leading '+'
// stripped) and the message is URL-encoded.
func BuildLink(phone, message string) string {
	digits := strings.TrimPrefix(SanitizePhone(phone), "+")
	return "https://wa.me/" + digits + "?text=" + url.QueryEscape(message)
}

// MaskPhone renders a phone for display and logs: first 4 and last 3
// characters with a fixed token in between. Strings shorter than 6
// characters are returned unmasked; empty input shows as "Unknown".
func MaskPhone(phone string) string {
	trimmed := strings.TrimSpace(phone)
	if trimmed == "" {
		return "Unknown"
	}
	if len(trimmed) < 6 {
		return trimmed
	}
	return trimmed[:4] + "***" + trimmed[len(trimmed)-3:]
}
