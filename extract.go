// extract.go
// ----------
// Field extraction. Given a vendor and a header set, read the limit, remaining
// and reset slots with the vendor's variant, reconcile the reset with
// Retry-After, and assemble the result. The first problem found aborts the
// call with a typed error naming the vendor and the field.
package ratelimits

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/opengovern/ratelimits/internal/timeparse"
)

// unixThreshold separates relative second counts from epoch timestamps when a
// convention does not say which one it sends. As a delay it is about 31 years;
// as a timestamp it is September 2001.
const unixThreshold = 1_000_000_000

// Extract reads rate-limit values from h with the given vendor's convention.
// now anchors relative reset values when they are compared with Retry-After.
func Extract(vendor Vendor, h HeaderSet, now time.Time) (RateLimit, error) {
	return extract(vendor, newIndex(h), now)
}

func extract(vendor Vendor, idx index, now time.Time) (RateLimit, error) {
	if vendor == VendorUnknown {
		return extractUnknown(idx)
	}
	v, ok := variants[vendor]
	if !ok {
		return RateLimit{}, &AmbiguityError{Vendor: vendor, Reason: "no field mapping for this convention"}
	}

	retryAfter, err := parseRetryAfter(vendor, idx)
	if err != nil {
		return RateLimit{}, err
	}

	var policies []Policy
	if raw, ok := idx.get(headerPolicy); ok {
		if policies, err = parsePolicy(vendor, raw); err != nil {
			return RateLimit{}, err
		}
	}

	if !v.present(idx) {
		if retryAfter.IsZero() {
			return RateLimit{}, nil
		}
		return RateLimit{kind: KindRetryAfter, vendor: vendor, reset: retryAfter}, nil
	}

	if vendor == VendorStandard && !idx.hasAny(v.limit...) {
		if raw, ok := idx.get(headerRateLimit); ok {
			return extractUsage(vendor, raw, policies, retryAfter, now)
		}
		if len(policies) > 0 && !idx.hasAny(v.remaining...) {
			return RateLimit{kind: KindPolicy, vendor: vendor, policies: policies, reset: retryAfter}, nil
		}
	}

	h, err := v.extract(idx, now)
	if err != nil {
		return RateLimit{}, err
	}
	h.Reset = ResolveReset(h.Reset, retryAfter, now)
	if h.Reset.IsZero() && v.resetRequired {
		return RateLimit{}, &MissingFieldError{Vendor: vendor, Field: FieldReset}
	}

	return RateLimit{kind: KindHeaders, vendor: vendor, headers: h, policies: policies}, nil
}

func extractUnknown(idx index) (RateLimit, error) {
	if idx.hasAny(headerRateLimit, headerPolicy) || idx.hasPrefix(bestEffortPrefixes...) {
		return RateLimit{}, &AmbiguityError{
			Vendor: VendorUnknown,
			Reason: "rate-limit headers present but no convention selected",
		}
	}

	retryAfter, err := parseRetryAfter(VendorUnknown, idx)
	if err != nil {
		return RateLimit{}, err
	}
	if retryAfter.IsZero() {
		return RateLimit{}, nil
	}
	return RateLimit{kind: KindRetryAfter, reset: retryAfter}, nil
}

// extractUsage combines the draft-07 RateLimit header with the policy it
// names. With several policies in play the one with the fewest remaining
// units is reported.
func extractUsage(vendor Vendor, raw string, policies []Policy, retryAfter ResetTime, now time.Time) (RateLimit, error) {
	usages, err := parseUsage(vendor, raw)
	if err != nil {
		return RateLimit{}, err
	}
	if len(usages) == 0 {
		return RateLimit{}, &MissingFieldError{Vendor: vendor, Field: FieldRemaining}
	}

	u := usages[0]
	for _, candidate := range usages[1:] {
		if candidate.remaining < u.remaining {
			u = candidate
		}
	}

	p, ok := matchPolicy(policies, u.name)
	if !ok {
		return RateLimit{}, &MissingFieldError{Vendor: vendor, Field: FieldLimit}
	}

	h := Headers{
		Limit:     p.Quota,
		Remaining: u.remaining,
		Reset:     ResolveReset(u.reset, retryAfter, now),
		Window:    p.Window,
		Vendor:    vendor,
	}
	return RateLimit{kind: KindHeaders, vendor: vendor, headers: h, policies: policies}, nil
}

func matchPolicy(policies []Policy, name string) (Policy, bool) {
	for _, p := range policies {
		if p.Name == name {
			return p, true
		}
	}
	if name == "" && len(policies) == 1 {
		return policies[0], true
	}
	return Policy{}, false
}

// present reports whether idx carries any header of the convention. A pinned
// vendor with none of them yields the empty result, not a missing field.
func (v variant) present(idx index) bool {
	if idx.hasAny(v.limit...) || idx.hasAny(v.remaining...) || idx.hasAny(v.reset...) {
		return true
	}
	if v.used != "" && idx.hasAny(v.used) {
		return true
	}
	if idx.hasAny(headerPolicy, headerRateLimit) {
		return true
	}
	return v.vendor == VendorStandard && idx.hasPrefix(bestEffortPrefixes...)
}

func (v variant) extract(idx index, now time.Time) (Headers, error) {
	h := Headers{Vendor: v.vendor, Window: v.window}

	var err error
	if v.used == "" {
		if h.Limit, err = v.count(idx, FieldLimit, v.limit); err != nil {
			return Headers{}, err
		}
		if h.Remaining, err = v.count(idx, FieldRemaining, v.remaining); err != nil {
			return Headers{}, err
		}
	} else {
		used, err := v.count(idx, FieldUsed, []string{v.used})
		if err != nil {
			return Headers{}, err
		}
		if h.Remaining, err = v.count(idx, FieldRemaining, v.remaining); err != nil {
			return Headers{}, err
		}
		if used > math.MaxUint64-h.Remaining {
			return Headers{}, &MalformedIntegerError{
				Vendor: v.vendor,
				Field:  FieldLimit,
				Value:  fmt.Sprintf("%d+%d", used, h.Remaining),
			}
		}
		h.Limit = used + h.Remaining
	}

	if h.Reset, err = v.resetTime(idx, now); err != nil {
		return Headers{}, err
	}
	return h, nil
}

// lookup returns the value of the first present header among names. Counts
// under two names must be spelled the same.
func (v variant) lookup(idx index, field Field, names []string) (string, bool, error) {
	value, found := "", false
	for _, name := range names {
		raw, ok := idx.get(name)
		if !ok {
			continue
		}
		if v.listValues {
			raw = firstMember(raw)
		}
		if !found {
			value, found = raw, true
			continue
		}
		if raw != value {
			return "", false, &AmbiguityError{
				Vendor: v.vendor,
				Reason: fmt.Sprintf("conflicting %s headers: %q and %q", field, value, raw),
			}
		}
	}
	return value, found, nil
}

func (v variant) count(idx index, field Field, names []string) (uint64, error) {
	raw, found, err := v.lookup(idx, field, names)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, &MissingFieldError{Vendor: v.vendor, Field: field}
	}

	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, &MalformedIntegerError{Vendor: v.vendor, Field: field, Value: raw, Err: err}
	}
	return n, nil
}

// resetTime reads the reset slot. Values under several names are compared as
// instants, so a delay and an epoch timestamp for the same moment agree.
func (v variant) resetTime(idx index, now time.Time) (ResetTime, error) {
	if v.resetKind == resetNone {
		return ResetTime{}, nil
	}

	var (
		reset ResetTime
		first string
		found bool
	)
	for _, name := range v.reset {
		raw, ok := idx.get(name)
		if !ok {
			continue
		}
		if v.listValues {
			raw = firstMember(raw)
		}
		parsed, err := parseResetValue(v.resetKind, raw)
		if err != nil {
			return ResetTime{}, &MalformedTimestampError{Vendor: v.vendor, Field: FieldReset, Value: raw, Err: err}
		}
		if !found {
			reset, first, found = parsed, raw, true
			continue
		}
		if !parsed.Instant(now).Equal(reset.Instant(now)) {
			return ResetTime{}, &AmbiguityError{
				Vendor: v.vendor,
				Reason: fmt.Sprintf("conflicting %s headers: %q and %q", FieldReset, first, raw),
			}
		}
	}
	return reset, nil
}

func parseResetValue(kind resetKind, raw string) (ResetTime, error) {
	switch kind {
	case resetTimestamp:
		return absolute(timeparse.Unix(raw))
	case resetSeconds:
		return relative(timeparse.Seconds(raw))
	case resetDuration:
		return relative(timeparse.Duration(raw))
	case resetHTTPDate:
		return absolute(timeparse.HTTPDate(raw))
	case resetISO8601:
		return absolute(timeparse.ISO8601(raw))
	case resetAuto:
		if whole, _, err := timeparse.Number(raw); err == nil {
			if whole >= unixThreshold {
				return absolute(timeparse.Unix(raw))
			}
			return relative(timeparse.Seconds(raw))
		}
		if t, err := timeparse.HTTPDate(raw); err == nil {
			return ResetAt(t), nil
		}
		return absolute(timeparse.ISO8601(raw))
	default:
		return ResetTime{}, nil
	}
}

func absolute(t time.Time, err error) (ResetTime, error) {
	if err != nil {
		return ResetTime{}, err
	}
	return ResetAt(t), nil
}

func relative(d time.Duration, err error) (ResetTime, error) {
	if err != nil {
		return ResetTime{}, err
	}
	return ResetAfter(d), nil
}

// firstMember returns the first list member of a draft-style value without
// its parameters: "100, 10;w=1" and "100;w=21600" both give "100".
func firstMember(raw string) string {
	raw, _, _ = strings.Cut(raw, ",")
	raw, _, _ = strings.Cut(raw, ";")
	return strings.TrimSpace(raw)
}
