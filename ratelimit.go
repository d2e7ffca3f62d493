// ratelimit.go
// ------------
// RateLimit is the normalized result of one parse. It is one of:
//
// - KindNone: the response carries no rate-limit headers. This is not an error.
// - KindHeaders: limit, remaining and reset as stated by a known convention.
// - KindPolicy: RateLimit-Policy quota descriptions without current usage.
// - KindRetryAfter: only a Retry-After header was present.
//
// Values are built once per parse and never mutated.
package ratelimits

import (
	"fmt"
	"time"
)

// Kind tags the variant held by a RateLimit.
type Kind uint8

const (
	KindNone Kind = iota
	KindHeaders
	KindPolicy
	KindRetryAfter
)

func (k Kind) String() string {
	switch k {
	case KindHeaders:
		return "headers"
	case KindPolicy:
		return "policy"
	case KindRetryAfter:
		return "retry-after"
	default:
		return "none"
	}
}

// Headers holds rate-limit values exactly as stated by the server.
// Remaining may exceed Limit; it is passed through unchanged.
type Headers struct {
	// Limit is the request quota of the window.
	Limit uint64
	// Remaining is the number of requests left in the current window.
	Remaining uint64
	// Reset is when the quota refills. It is zero for conventions without a
	// reset header when no Retry-After was sent either.
	Reset ResetTime
	// Window is the window length fixed by the vendor, zero when unknown.
	Window time.Duration
	// Vendor is the convention the values were read with.
	Vendor Vendor
}

// RateLimit is the result of parsing one header set.
type RateLimit struct {
	kind     Kind
	vendor   Vendor
	headers  Headers
	policies []Policy
	reset    ResetTime
}

func (r RateLimit) Kind() Kind { return r.kind }

// Headers returns the standard limit values of a KindHeaders result.
func (r RateLimit) Headers() (Headers, bool) {
	return r.headers, r.kind == KindHeaders
}

// Policies returns the quota policies advertised with RateLimit-Policy.
func (r RateLimit) Policies() []Policy {
	if len(r.policies) == 0 {
		return nil
	}
	out := make([]Policy, len(r.policies))
	copy(out, r.policies)
	return out
}

// Reset returns the resolved reset time, zero when none is known.
func (r RateLimit) Reset() ResetTime {
	if r.kind == KindHeaders {
		return r.headers.Reset
	}
	return r.reset
}

// Limit returns the request quota when the result carries one.
func (r RateLimit) Limit() (uint64, bool) {
	return r.headers.Limit, r.kind == KindHeaders
}

// Remaining returns the remaining requests when the result carries them.
func (r RateLimit) Remaining() (uint64, bool) {
	return r.headers.Remaining, r.kind == KindHeaders
}

// Vendor returns the convention the result was read with.
func (r RateLimit) Vendor() Vendor { return r.vendor }

// IsZero reports whether the response carried no rate-limit headers.
func (r RateLimit) IsZero() bool { return r.kind == KindNone }

func (r RateLimit) String() string {
	switch r.kind {
	case KindHeaders:
		h := r.headers
		s := fmt.Sprintf("%s: %d/%d remaining, reset %s", h.Vendor, h.Remaining, h.Limit, h.Reset)
		if h.Window > 0 {
			s += fmt.Sprintf(", window %s", h.Window)
		}
		return s
	case KindPolicy:
		return fmt.Sprintf("%s: %d policies, reset %s", r.vendor, len(r.policies), r.reset)
	case KindRetryAfter:
		return "retry after " + r.reset.String()
	default:
		return "no rate limit"
	}
}
