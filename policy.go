// policy.go
// ---------
// RateLimit-Policy and RateLimit header parsing. Both headers are HTTP
// structured-field lists. Two shapes are in use:
//
//	RateLimit-Policy: 100;w=60, 1000;w=3600          (drafts 03 to 06)
//	RateLimit-Policy: "default";q=100;w=60           (draft 07 and later)
//	RateLimit: "default";r=50;t=30                   (draft 07 and later)
//
// The older polli drafts spell the window parameter "window".
package ratelimits

import (
	"math"
	"time"

	"github.com/dunglas/httpsfv"
	"github.com/pkg/errors"
)

// Causes attached to malformed policy and usage members.
var (
	ErrInnerList = errors.New("inner list member")
	ErrNoQuota   = errors.New("policy has no quota")
	ErrNotCount  = errors.New("not a non-negative number")
)

// Policy describes one quota the server enforces.
type Policy struct {
	// Name identifies the policy. Older drafts have unnamed policies.
	Name string
	// Quota is the number of units allowed per window.
	Quota uint64
	// Window is the policy window, zero when not stated.
	Window time.Duration
	// QuotaUnit is the unit of Quota ("request", "content-bytes", ...),
	// empty when not stated.
	QuotaUnit string
}

// ParsePolicy parses a RateLimit-Policy header value.
func ParsePolicy(value string) ([]Policy, error) {
	return parsePolicy(VendorStandard, value)
}

func parsePolicy(vendor Vendor, value string) ([]Policy, error) {
	malformed := func(err error) error {
		return &MalformedIntegerError{Vendor: vendor, Field: FieldPolicy, Value: value, Err: err}
	}

	list, err := httpsfv.UnmarshalList([]string{value})
	if err != nil {
		return nil, malformed(err)
	}

	policies := make([]Policy, 0, len(list))
	for _, member := range list {
		item, ok := member.(httpsfv.Item)
		if !ok {
			return nil, malformed(ErrInnerList)
		}

		var p Policy
		quotaSet := false
		switch bare := item.Value.(type) {
		case string:
			p.Name = bare
		case httpsfv.Token:
			p.Name = string(bare)
		default:
			if p.Quota, quotaSet = sfUint(bare); !quotaSet {
				return nil, malformed(errors.Wrapf(ErrNotCount, "bare item %v", bare))
			}
		}

		if q, ok := param(item, "q"); ok {
			if p.Quota, quotaSet = sfUint(q); !quotaSet {
				return nil, malformed(errors.Wrapf(ErrNotCount, "q=%v", q))
			}
		}
		if !quotaSet {
			return nil, malformed(errors.Wrapf(ErrNoQuota, "policy %q", p.Name))
		}

		window, ok := param(item, "w")
		if !ok {
			window, ok = param(item, "window")
		}
		if ok {
			secs, valid := sfUint(window)
			if !valid {
				return nil, &MalformedIntegerError{
					Vendor: vendor,
					Field:  FieldWindow,
					Value:  value,
					Err:    errors.Wrapf(ErrNotCount, "w=%v", window),
				}
			}
			p.Window = clampSeconds(secs)
		}

		if qu, ok := param(item, "qu"); ok {
			switch unit := qu.(type) {
			case string:
				p.QuotaUnit = unit
			case httpsfv.Token:
				p.QuotaUnit = string(unit)
			}
		}

		policies = append(policies, p)
	}
	return policies, nil
}

// usage is one member of the draft-07 RateLimit header.
type usage struct {
	name      string
	remaining uint64
	reset     ResetTime
}

func parseUsage(vendor Vendor, value string) ([]usage, error) {
	list, err := httpsfv.UnmarshalList([]string{value})
	if err != nil {
		return nil, &MalformedIntegerError{Vendor: vendor, Field: FieldRemaining, Value: value, Err: err}
	}

	out := make([]usage, 0, len(list))
	for _, member := range list {
		item, ok := member.(httpsfv.Item)
		if !ok {
			return nil, &MalformedIntegerError{Vendor: vendor, Field: FieldRemaining, Value: value, Err: ErrInnerList}
		}

		var u usage
		switch bare := item.Value.(type) {
		case string:
			u.name = bare
		case httpsfv.Token:
			u.name = string(bare)
		}

		r, ok := param(item, "r")
		if !ok {
			return nil, &MissingFieldError{Vendor: vendor, Field: FieldRemaining}
		}
		if u.remaining, ok = sfUint(r); !ok {
			return nil, &MalformedIntegerError{
				Vendor: vendor,
				Field:  FieldRemaining,
				Value:  value,
				Err:    errors.Wrapf(ErrNotCount, "r=%v", r),
			}
		}

		if t, ok := param(item, "t"); ok {
			secs, valid := sfUint(t)
			if !valid {
				return nil, &MalformedTimestampError{
					Vendor: vendor,
					Field:  FieldReset,
					Value:  value,
					Err:    errors.Wrapf(ErrNotCount, "t=%v", t),
				}
			}
			u.reset = ResetAfter(clampSeconds(secs))
		}
		out = append(out, u)
	}
	return out, nil
}

func param(item httpsfv.Item, key string) (interface{}, bool) {
	if item.Params == nil {
		return nil, false
	}
	return item.Params.Get(key)
}

// sfUint reads a non-negative structured-field number. Decimals are truncated
// toward zero.
func sfUint(v interface{}) (uint64, bool) {
	switch n := v.(type) {
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case float64:
		if n < 0 || n >= math.MaxUint64 {
			return 0, false
		}
		return uint64(n), true
	default:
		return 0, false
	}
}
