// internal/timeparse/timeparse.go
// --------------------------------
// This internal package provides helpers for turning the time values found in
// rate-limit headers into Go values. Vendors disagree on the format, so each
// helper accepts exactly one shape and reports an error for anything else:
//
// - Duration: Go-style duration strings like "1s", "6m0s", "20ms".
// - Seconds: a relative count of seconds, e.g. a Retry-After delay.
// - Unix: epoch seconds, fractional epoch seconds, or epoch milliseconds.
// - HTTPDate: IMF-fixdate and the obsolete RFC 850 / asctime forms.
// - ISO8601: RFC 3339 timestamps, with or without a zone.
package timeparse

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// MillisThreshold is the smallest epoch value read as milliseconds rather than
// seconds. Second-based epochs stay below it until the year 33658.
const MillisThreshold = 1_000_000_000_000

// ErrEmpty is returned for blank input.
var ErrEmpty = errors.New("empty value")

// Number parses a non-negative decimal number and returns its whole part.
// fractional reports whether a fractional part was present; it is dropped,
// which truncates toward zero.
func Number(s string) (whole uint64, fractional bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, ErrEmpty
	}

	intPart, fracPart, hasDot := strings.Cut(s, ".")
	if intPart == "" || !digits(intPart) || (hasDot && (fracPart == "" || !digits(fracPart))) {
		return 0, false, errors.Errorf("not a non-negative number: %q", s)
	}

	whole, err = strconv.ParseUint(intPart, 10, 64)
	if err != nil {
		return 0, false, errors.Wrapf(err, "parse %q", s)
	}
	return whole, hasDot, nil
}

// Duration converts strings like "1s", "6m0s" or "1.5s" into a duration.
func Duration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrEmpty
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.Wrapf(err, "parse duration %q", s)
	}
	if d < 0 {
		return 0, errors.Errorf("negative duration %q", s)
	}
	return d, nil
}

// Seconds converts a relative seconds count into a duration.
func Seconds(s string) (time.Duration, error) {
	whole, _, err := Number(s)
	if err != nil {
		return 0, err
	}
	if whole > math.MaxInt64/uint64(time.Second) {
		return 0, errors.Errorf("seconds out of range: %q", s)
	}
	return time.Duration(whole) * time.Second, nil
}

// Unix converts an epoch timestamp into a UTC time.
func Unix(s string) (time.Time, error) {
	whole, fractional, err := Number(s)
	if err != nil {
		return time.Time{}, err
	}
	if whole > math.MaxInt64 {
		return time.Time{}, errors.Errorf("timestamp out of range: %q", s)
	}
	if !fractional && whole >= MillisThreshold {
		return time.UnixMilli(int64(whole)).UTC(), nil
	}
	return time.Unix(int64(whole), 0).UTC(), nil
}

// HTTPDate parses the date formats allowed in HTTP headers.
func HTTPDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrEmpty
	}

	if t, err := http.ParseTime(s); err == nil {
		return t.UTC(), nil
	}
	// Numeric zones show up in the wild even though HTTP mandates GMT.
	t, err := time.Parse(time.RFC1123Z, s)
	if err != nil {
		return time.Time{}, errors.Errorf("not an HTTP date: %q", s)
	}
	return t.UTC(), nil
}

var iso8601Layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
}

// ISO8601 parses RFC 3339 style timestamps. A missing zone means UTC.
func ISO8601(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrEmpty
	}

	for _, layout := range iso8601Layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.Errorf("not an ISO 8601 timestamp: %q", s)
}

// IsHTTPDate reports whether s looks like an HTTP date.
func IsHTTPDate(s string) bool {
	_, err := HTTPDate(s)
	return err == nil
}

func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
