// Package textparse recovers structured appointment fields from free-text
// WhatsApp message bodies. Rows from the sheet frequently omit the structured
// start/service/dentist columns while the composed message itself still
// carries them ("your appointment is tomorrow at 2:00 PM with Dr Sara"), so
// the mapper falls back to these extractors before giving up on a field.
//
// All constructed instants use the clinic's fixed +04:00 offset; extraction
// that finds nothing returns ok=false, which callers must treat as genuinely
// unknown rather than an error.
package textparse

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/whitesmile/frontdesk-backend/internal/clinictime"
)

var (
	startIsoParamRE = regexp.MustCompile(`(?i)startIso=([^&\s]+)`)
	relativeDayRE   = regexp.MustCompile(`(?i)\b(today|tomorrow)\s+at\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
	onDateRE        = regexp.MustCompile(`(?i)\bon\s+(\d{1,2})(?:st|nd|rd|th)?\s+([A-Za-z]+)\s+at\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
	bookedDayRE     = regexp.MustCompile(`(?i)\bbooked\s+(today|tomorrow)\s+at\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)

	dentistRE     = regexp.MustCompile(`\bDr\.?\s+\p{L}+`)
	patientNameRE = regexp.MustCompile(`(?i)^Hi\s+(.+?),`)

	// Ordered: first non-empty capture wins.
	serviceREs = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bservice:\s*([^\n,.]+)`),
		regexp.MustCompile(`(?i)\btreatment:\s*([^\n,.]+)`),
		regexp.MustCompile(`(?i)\bprocedure:\s*([^\n,.]+)`),
		regexp.MustCompile(`(?i)\bappointment\s+for\s+([^\n,.]+)`),
		regexp.MustCompile(`(?i)\bbooked\s+for\s+([^\n,.]+)`),
	}
)

var monthsByName = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// ExtractStartISO attempts to recover the appointment start instant from a
// message body, using createdAt as the reference for relative phrases.
// Patterns are tried in strict order, stopping at the first match:
//
//  1. a startIso= query parameter embedded in a link, URL-decoded
//  2. "today|tomorrow at H[:MM] am/pm" resolved against createdAt
//  3. "on 23rd December at 2:00 PM", year inferred from createdAt and rolled
//     to the next year when the result would precede the reference
//  4. "booked today|tomorrow at H[:MM] am/pm"
//
// The returned string is an ISO-8601 instant at the clinic offset.
func ExtractStartISO(message string, createdAt time.Time) (string, bool) {
	if message == "" {
		return "", false
	}

	if m := startIsoParamRE.FindStringSubmatch(message); m != nil {
		if decoded, err := url.QueryUnescape(m[1]); err == nil {
			return decoded, true
		}
		return m[1], true
	}

	base := createdAt
	if base.IsZero() {
		base = time.Now()
	}

	if m := relativeDayRE.FindStringSubmatch(message); m != nil {
		return relativeISO(base, m[1], m[2], m[3], m[4]), true
	}

	if m := onDateRE.FindStringSubmatch(message); m != nil {
		name := strings.ToLower(m[2])
		month, ok := monthsByName[name]
		if !ok && len(name) >= 3 {
			month, ok = monthsByName[name[:3]]
		}
		if ok {
			day := atoi(m[1])
			hour := to24Hour(atoi(m[3]), m[5])
			minute := atoiDefault(m[4], 0)
			local := base.In(clinictime.Zone())
			at := time.Date(local.Year(), month, day, hour, minute, 0, 0, clinictime.Zone())
			if at.Before(base) {
				at = at.AddDate(1, 0, 0)
			}
			return at.Format("2006-01-02T15:04:05-07:00"), true
		}
	}

	if m := bookedDayRE.FindStringSubmatch(message); m != nil {
		return relativeISO(base, m[1], m[2], m[3], m[4]), true
	}

	return "", false
}

// relativeISO builds the clinic-offset instant for "today|tomorrow at H:MM".
// The day boundary is the clinic's, not UTC's: a message created 23:30 UTC
// saying "today" means the clinic date already in progress at +04:00.
func relativeISO(base time.Time, when, hourStr, minStr, ampm string) string {
	dayOffset := 0
	if strings.EqualFold(when, "tomorrow") {
		dayOffset = 1
	}
	dateKey := clinictime.DateKey(base.AddDate(0, 0, dayOffset))
	hour := to24Hour(atoi(hourStr), ampm)
	minute := atoiDefault(minStr, 0)
	return fmt.Sprintf("%sT%02d:%02d:00+04:00", dateKey, hour, minute)
}

// to24Hour converts a 12-hour clock reading to 24-hour. An empty meridiem
// leaves the hour untouched.
func to24Hour(hour int, ampm string) int {
	switch strings.ToLower(ampm) {
	case "pm":
		if hour < 12 {
			return hour + 12
		}
	case "am":
		if hour == 12 {
			return 0
		}
	}
	return hour
}

// ExtractService pulls a service/treatment name from the message body using
// an ordered list of label patterns. Returns ok=false when nothing matches.
func ExtractService(message string) (string, bool) {
	for _, re := range serviceREs {
		if m := re.FindStringSubmatch(message); m != nil {
			if s := strings.TrimSpace(m[1]); s != "" {
				return s, true
			}
		}
	}
	return "", false
}

// ExtractDentist finds the first "Dr <Name>" mention in the message,
// trimming trailing punctuation. Returns "" when absent.
func ExtractDentist(message string) string {
	m := dentistRE.FindString(message)
	return strings.TrimRight(m, ",.!?;:")
}

// ExtractPatientName captures the greeting name from a "Hi <name>," opener.
// Returns "" when the message does not start with a greeting.
func ExtractPatientName(message string) string {
	if m := patientNameRE.FindStringSubmatch(message); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
