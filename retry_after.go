package ratelimits

import "github.com/opengovern/ratelimits/internal/timeparse"

// parseRetryAfter reads Retry-After as delta-seconds or an HTTP-date.
// A missing header yields the zero ResetTime.
func parseRetryAfter(vendor Vendor, idx index) (ResetTime, error) {
	raw, ok := idx.get(headerRetryAfter)
	if !ok {
		return ResetTime{}, nil
	}

	if d, err := timeparse.Seconds(raw); err == nil {
		return ResetAfter(d), nil
	}
	at, err := timeparse.HTTPDate(raw)
	if err != nil {
		return ResetTime{}, &MalformedTimestampError{Vendor: vendor, Field: FieldRetryAfter, Value: raw, Err: err}
	}
	return ResetAt(at), nil
}
