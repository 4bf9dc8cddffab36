package utils

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	// DateTimeLayout is used for timestamps that carry a time of day.
	DateTimeLayout = "15:04 · Jan 2, 2006"
	// DateLayout is used for timestamps that fall exactly on midnight.
	DateLayout = "Jan 2, 2006"
)

// ErrInvalidAge is returned when an age string cannot be parsed.
var ErrInvalidAge = errors.New("invalid age")

var magnitudeSuffixes = []string{"", "K", "M", "B", "T"}

// FormatNumber renders a count with three significant digits and a K/M/B/T suffix.
func FormatNumber(n int64) string {
	num, _ := strconv.ParseFloat(strconv.FormatFloat(float64(n), 'g', 3, 64), 64)

	magnitude := 0
	for (num >= 1000 || num <= -1000) && magnitude < len(magnitudeSuffixes)-1 {
		magnitude++
		num /= 1000
	}

	return humanize.FtoaWithDigits(num, 2) + magnitudeSuffixes[magnitude]
}

// FormatDate renders a timestamp, omitting the time of day when it is midnight.
func FormatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 {
		return t.Format(DateLayout)
	}
	return t.Format(DateTimeLayout)
}

// ParseAge parses ages like "1d", "2w" or "30M" into a duration.
// Supported units are y (365 days), m (30 days), w, d, h, M (minutes) and s.
func ParseAge(age string) (time.Duration, error) {
	if len(age) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAge, age)
	}

	num, err := strconv.Atoi(age[:len(age)-1])
	if err != nil || num < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAge, age)
	}

	const day = 24 * time.Hour

	var unit time.Duration
	switch age[len(age)-1] {
	case 'y':
		unit = 365 * day
	case 'm':
		unit = 30 * day
	case 'w':
		unit = 7 * day
	case 'd':
		unit = day
	case 'h':
		unit = time.Hour
	case 'M':
		unit = time.Minute
	case 's':
		unit = time.Second
	default:
		return 0, fmt.Errorf("%w: unknown unit in %q", ErrInvalidAge, age)
	}

	return time.Duration(num) * unit, nil
}
