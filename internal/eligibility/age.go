// internal/eligibility/age.go
package eligibility

import (
	"strings"
	"time"
)

var dateOfBirthLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006",
}

// ParseDateOfBirth reads a calendar date. ok is false when the value is absent
// or not a valid date.
func ParseDateOfBirth(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateOfBirthLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// AgeAt returns whole years between dob and now: the year difference, minus one
// when the birthday has not yet occurred in now's year.
func AgeAt(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}

// ageOf returns nil when the date of birth is indeterminate.
func ageOf(raw string, now time.Time) *int {
	dob, ok := ParseDateOfBirth(raw)
	if !ok {
		return nil
	}
	age := AgeAt(dob, now)
	return &age
}
