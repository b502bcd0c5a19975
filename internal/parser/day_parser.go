package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	isoDateRegex      = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	slashDateRegex    = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	daysAgoRegex      = regexp.MustCompile(`^(\d+)\s+(day|days|week|weeks)\s+ago$`)
	shortDaysAgoRegex = regexp.MustCompile(`^-(\d+)([dw])$`)
)

// ParseDay resolves a day argument to midnight of that calendar day in
// now's location.
// Supported formats:
// - "" or "today", "yesterday"
// - yyyy-mm-dd (e.g., "2025-03-10")
// - dd/mm/yyyy (e.g., "10/03/2025")
// - X days ago / X weeks ago (e.g., "3 days ago")
// - -Xd / -Xw (e.g., "-3d")
func ParseDay(input string, now time.Time) (time.Time, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch input {
	case "", "today":
		return today, nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}

	if matches := isoDateRegex.FindStringSubmatch(input); matches != nil {
		return buildDate(matches[1], matches[2], matches[3], now.Location())
	}
	if matches := slashDateRegex.FindStringSubmatch(input); matches != nil {
		return buildDate(matches[3], matches[2], matches[1], now.Location())
	}
	if day, err := parseDaysAgo(input, today); err == nil {
		return day, nil
	}

	return time.Time{}, fmt.Errorf("invalid day %q. Use: today, yesterday, yyyy-mm-dd, dd/mm/yyyy, X days ago, or -Xd", input)
}

// buildDate validates the parts and checks the date exists (leap years etc.)
func buildDate(yearStr, monthStr, dayStr string, loc *time.Location) (time.Time, error) {
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid year")
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month")
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day")
	}

	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("month must be between 1 and 12")
	}
	if day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("day must be between 1 and 31")
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if date.Day() != day || date.Month() != time.Month(month) || date.Year() != year {
		return time.Time{}, fmt.Errorf("invalid date")
	}
	return date, nil
}

// parseDaysAgo parses "3 days ago", "1 week ago", "-3d" and "-2w"
func parseDaysAgo(input string, today time.Time) (time.Time, error) {
	var amountStr, unit string
	if matches := daysAgoRegex.FindStringSubmatch(input); matches != nil {
		amountStr, unit = matches[1], matches[2]
	} else if matches := shortDaysAgoRegex.FindStringSubmatch(input); matches != nil {
		amountStr, unit = matches[1], matches[2]
	} else {
		return time.Time{}, fmt.Errorf("invalid relative day format")
	}

	amount, err := strconv.Atoi(amountStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid number")
	}

	switch unit {
	case "d", "day", "days":
		if amount > 366 {
			return time.Time{}, fmt.Errorf("days must be at most 366")
		}
		return today.AddDate(0, 0, -amount), nil
	case "w", "week", "weeks":
		if amount > 52 {
			return time.Time{}, fmt.Errorf("weeks must be at most 52")
		}
		return today.AddDate(0, 0, -7*amount), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported time unit")
	}
}
