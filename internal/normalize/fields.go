// Package normalize turns spreadsheet rows into inventory records.
package normalize

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mautomotiv/inventaire/internal/sheet"
)

// ErrMissing is wrapped by a FieldError for a required field left empty.
var ErrMissing = errors.New("missing")

// FieldError reports a row that cannot become a record.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	if errors.Is(e.Err, ErrMissing) {
		return "missing " + e.Field
	}
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

func missing(field string) error {
	return &FieldError{Field: field, Err: ErrMissing}
}

// Spreadsheet serial 25569 is 1970-01-01.
const unixEpochSerial = 25569

var (
	isoDate     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dayFirst    = regexp.MustCompile(`^(\d{1,2})[/.-](\d{1,2})[/.-](\d{2}|\d{4})$`)
	dateLayouts = []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006/01/02",
		"2 Jan 2006",
		"2 January 2006",
		"Jan 2, 2006",
		"January 2, 2006",
	}
)

// Date converts a date cell to YYYY-MM-DD. ISO dates pass through, D/M/Y with
// "/", "-" or "." separators is read day first, numbers are spreadsheet
// serials. Anything unrecognised becomes "".
func Date(c sheet.Cell) string {
	if c.IsNumber {
		return serialDate(c.Number)
	}

	s := strings.TrimSpace(c.Text)
	if s == "" {
		return ""
	}
	if isoDate.MatchString(s) {
		return s
	}

	if m := dayFirst.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year := m[3]
		if len(year) == 2 {
			year = "20" + year
		}
		y, _ := strconv.Atoi(year)
		if day <= 31 {
			return calendarDate(y, month, day)
		}
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.DateOnly)
		}
	}
	return ""
}

func serialDate(v float64) string {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	secs := math.Round((v - unixEpochSerial) * 86400)
	return time.Unix(int64(secs), 0).UTC().Format(time.DateOnly)
}

// calendarDate returns "" for dates that do not exist, such as 31/02.
func calendarDate(year, month, day int) string {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return ""
	}
	return t.Format(time.DateOnly)
}

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	dotsBeforeAt = regexp.MustCompile(`\.+@`)
	dotsAfterAt  = regexp.MustCompile(`@\.+`)
)

// Email cleans up a hand-typed address. Separators typed in place of dots are
// fixed and whitespace dropped. Addresses that still do not look valid are
// kept with a warning when they have a single "@" and a dotted domain, and
// dropped otherwise.
func Email(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	s = strings.NewReplacer(";", ".", ",", ".").Replace(s)
	s = strings.Join(strings.Fields(s), "")
	s = dotsBeforeAt.ReplaceAllString(s, "@")
	s = dotsAfterAt.ReplaceAllString(s, "@")

	if s == "" || emailPattern.MatchString(s) {
		return s
	}

	parts := strings.Split(s, "@")
	if len(parts) == 2 && strings.Contains(parts[1], ".") {
		slog.Warn("keeping malformed email", "email", s)
		return s
	}
	slog.Warn("dropping invalid email", "email", raw)
	return ""
}
