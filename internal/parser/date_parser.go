package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	dayFirstRegex = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	isoRegex      = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	agoRegex      = regexp.MustCompile(`^(\d+)\s+(day|days|week|weeks)\s+ago$`)
)

// ParseDate parses a slate date relative to now
// Supported formats:
// - today, yesterday
// - dd/mm/yyyy (e.g., "15/12/2026")
// - yyyy-mm-dd (e.g., "2026-12-15")
// - X days ago, X weeks ago (e.g., "3 days ago")
// The result is midnight of that calendar day in now's location
func ParseDate(input string, now time.Time) (time.Time, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch input {
	case "", "today":
		return today, nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}

	if m := dayFirstRegex.FindStringSubmatch(input); m != nil {
		return buildDate(m[3], m[2], m[1], now.Location())
	}
	if m := isoRegex.FindStringSubmatch(input); m != nil {
		return buildDate(m[1], m[2], m[3], now.Location())
	}
	if m := agoRegex.FindStringSubmatch(input); m != nil {
		return parseAgo(m[1], m[2], today)
	}

	return time.Time{}, fmt.Errorf("invalid date %q. Use: today, yesterday, dd/mm/yyyy, yyyy-mm-dd or X days ago", input)
}

// buildDate validates the parts and rejects dates that do not exist
func buildDate(yearStr, monthStr, dayStr string, loc *time.Location) (time.Time, error) {
	year, _ := strconv.Atoi(yearStr)
	month, _ := strconv.Atoi(monthStr)
	day, _ := strconv.Atoi(dayStr)

	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("month must be between 1 and 12")
	}
	if day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("day must be between 1 and 31")
	}
	if year < 1900 || year > 2100 {
		return time.Time{}, fmt.Errorf("year must be between 1900 and 2100")
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)

	// Check if date is valid (handles leap years, etc.)
	if date.Day() != day || date.Month() != time.Month(month) || date.Year() != year {
		return time.Time{}, fmt.Errorf("invalid date")
	}
	return date, nil
}

func parseAgo(amountStr, unit string, today time.Time) (time.Time, error) {
	amount, err := strconv.Atoi(amountStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid number")
	}

	switch unit {
	case "day", "days":
		if amount > 3650 {
			return time.Time{}, fmt.Errorf("days must be at most 3650")
		}
		return today.AddDate(0, 0, -amount), nil
	case "week", "weeks":
		if amount > 520 {
			return time.Time{}, fmt.Errorf("weeks must be at most 520")
		}
		return today.AddDate(0, 0, -amount*7), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported time unit")
	}
}

// FormatDate formats a slate date for display and editing
func FormatDate(date time.Time) string {
	if date.IsZero() {
		return ""
	}
	return date.Format("02/01/2006")
}
