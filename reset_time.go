// reset_time.go
// -------------
// ResetTime records when a rate limit lifts. It keeps the form the server
// used: an absolute instant (subject to clock skew between client and server)
// or a delay relative to the moment the response was parsed.
package ratelimits

import (
	"math"
	"time"
)

// ResetKind tags the form of a ResetTime.
type ResetKind uint8

const (
	// ResetUnknown is the zero ResetTime: no reset was stated.
	ResetUnknown ResetKind = iota
	// ResetAbsolute is a wall-clock instant.
	ResetAbsolute
	// ResetRelative is a delay from now.
	ResetRelative
)

func (k ResetKind) String() string {
	switch k {
	case ResetAbsolute:
		return "absolute"
	case ResetRelative:
		return "relative"
	default:
		return "unknown"
	}
}

// ResetTime is either an absolute instant or a relative delay.
// The zero value means the reset is unknown.
type ResetTime struct {
	kind  ResetKind
	at    time.Time
	after time.Duration
}

// ResetAt returns an absolute reset time.
func ResetAt(t time.Time) ResetTime {
	return ResetTime{kind: ResetAbsolute, at: t.UTC()}
}

// ResetAfter returns a relative reset time. Negative delays become zero.
func ResetAfter(d time.Duration) ResetTime {
	if d < 0 {
		d = 0
	}
	return ResetTime{kind: ResetRelative, after: d}
}

func (r ResetTime) Kind() ResetKind { return r.kind }

// IsZero reports whether no reset is known.
func (r ResetTime) IsZero() bool { return r.kind == ResetUnknown }

// Time returns the instant of an absolute reset.
func (r ResetTime) Time() (time.Time, bool) {
	return r.at, r.kind == ResetAbsolute
}

// Duration returns the delay of a relative reset.
func (r ResetTime) Duration() (time.Duration, bool) {
	return r.after, r.kind == ResetRelative
}

// Instant returns the reset as a wall-clock instant, resolving relative
// delays against now. It returns the zero time for an unknown reset.
func (r ResetTime) Instant(now time.Time) time.Time {
	switch r.kind {
	case ResetAbsolute:
		return r.at
	case ResetRelative:
		return now.Add(r.after).UTC()
	default:
		return time.Time{}
	}
}

// Until returns how long after now the reset happens, never negative.
func (r ResetTime) Until(now time.Time) time.Duration {
	switch r.kind {
	case ResetAbsolute:
		if d := r.at.Sub(now); d > 0 {
			return d
		}
		return 0
	case ResetRelative:
		return r.after
	default:
		return 0
	}
}

// Seconds returns Until rounded down to whole seconds.
func (r ResetTime) Seconds(now time.Time) uint64 {
	return uint64(r.Until(now) / time.Second)
}

// Equal reports whether both values have the same form and the same value.
func (r ResetTime) Equal(o ResetTime) bool {
	return r.kind == o.kind && r.after == o.after && r.at.Equal(o.at)
}

func (r ResetTime) String() string {
	switch r.kind {
	case ResetAbsolute:
		return r.at.Format(time.RFC3339)
	case ResetRelative:
		return "in " + r.after.String()
	default:
		return "unknown"
	}
}

// ResolveReset picks one reset from the vendor's own reset header and the
// Retry-After header. When both are known the later instant wins, so callers
// never retry earlier than either header allows; a tie keeps the vendor value.
func ResolveReset(vendor, retryAfter ResetTime, now time.Time) ResetTime {
	switch {
	case vendor.IsZero():
		return retryAfter
	case retryAfter.IsZero():
		return vendor
	}
	if retryAfter.Instant(now).After(vendor.Instant(now)) {
		return retryAfter
	}
	return vendor
}

// clampSeconds converts a whole-second count to a duration without overflow.
func clampSeconds(s uint64) time.Duration {
	if s > math.MaxInt64/uint64(time.Second) {
		return math.MaxInt64
	}
	return time.Duration(s) * time.Second
}
