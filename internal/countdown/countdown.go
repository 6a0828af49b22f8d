// Package countdown computes the label shown before event registration opens.
package countdown

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// RegisterNow is shown once registration has opened.
const RegisterNow = "REGISTER NOW"

// Event registration times are published as "March 3rd 2025, 5:00:00 pm".
const registrationLayout = "January 2 2006, 3:04:05 pm"

var ordinalSuffix = regexp.MustCompile(`(?i)\b(\d{1,2})(st|nd|rd|th)\b`)

// ParseRegistrationTime parses an event registration start time in loc.
func ParseRegistrationTime(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	value := strings.Join(strings.Fields(raw), " ")
	if value == "" {
		return time.Time{}, fmt.Errorf("registration time is empty")
	}
	value = ordinalSuffix.ReplaceAllString(value, "$1")
	value = capitalizeMonth(strings.ToLower(value))

	parsed, err := time.ParseInLocation(registrationLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse registration time %q: %w", raw, err)
	}
	return parsed, nil
}

// Remaining returns the countdown label for a registration opening at start.
func Remaining(start, now time.Time) string {
	diff := start.Sub(now)
	if diff <= 0 {
		return RegisterNow
	}

	days := int(diff / (24 * time.Hour))
	if days > 0 {
		if days == 1 {
			return "1 day left"
		}
		return fmt.Sprintf("%d days left", days)
	}

	hours := int(diff / time.Hour)
	minutes := int(diff/time.Minute) % 60
	seconds := int(diff/time.Second) % 60
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}

func capitalizeMonth(value string) string {
	if value == "" {
		return value
	}
	return strings.ToUpper(value[:1]) + value[1:]
}
