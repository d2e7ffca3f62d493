package adapters

import (
	"math"
	"time"

	"golang.org/x/time/rate"

	"github.com/opengovern/ratelimits"
)

// Limit spreads the remaining quota of h evenly until the reset, or over the
// vendor's window when no reset is known. The burst is the remaining count.
// ok is false when neither a reset nor a window gives a time span.
func Limit(h ratelimits.Headers, now time.Time) (limit rate.Limit, burst int, ok bool) {
	span := h.Reset.Until(now)
	if span <= 0 {
		span = h.Window
	}
	if span <= 0 {
		return 0, 0, false
	}
	if h.Remaining == 0 {
		return 0, 0, true
	}

	burst = math.MaxInt
	if h.Remaining < uint64(math.MaxInt) {
		burst = int(h.Remaining)
	}
	return rate.Limit(float64(h.Remaining) / span.Seconds()), burst, true
}

// NewLimiter returns a limiter matching h. Without a time span the limiter
// does not restrict.
func NewLimiter(h ratelimits.Headers, now time.Time) *rate.Limiter {
	limit, burst, ok := Limit(h, now)
	if !ok {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(limit, burst)
}

// UpdateLimiter retunes l to h, leaving it untouched when h gives no span.
func UpdateLimiter(l *rate.Limiter, h ratelimits.Headers, now time.Time) {
	limit, burst, ok := Limit(h, now)
	if !ok {
		return
	}
	l.SetLimitAt(now, limit)
	l.SetBurstAt(now, burst)
}
