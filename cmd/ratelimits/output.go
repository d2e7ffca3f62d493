package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/opengovern/ratelimits"
)

type policyView struct {
	Name      string `json:"name,omitempty"`
	Quota     uint64 `json:"quota"`
	Window    string `json:"window,omitempty"`
	QuotaUnit string `json:"quota_unit,omitempty"`
}

// resultView is the JSON shape of a RateLimit. Reset is reported both as the
// instant it happens and as whole seconds from now.
type resultView struct {
	Kind         string       `json:"kind"`
	Vendor       string       `json:"vendor,omitempty"`
	Limit        *uint64      `json:"limit,omitempty"`
	Remaining    *uint64      `json:"remaining,omitempty"`
	ResetAt      *time.Time   `json:"reset_at,omitempty"`
	ResetSeconds *uint64      `json:"reset_seconds,omitempty"`
	Window       string       `json:"window,omitempty"`
	Policies     []policyView `json:"policies,omitempty"`
}

func newResultView(rl ratelimits.RateLimit, now time.Time) resultView {
	view := resultView{Kind: rl.Kind().String()}
	if rl.Vendor() != ratelimits.VendorUnknown {
		view.Vendor = rl.Vendor().String()
	}

	if h, ok := rl.Headers(); ok {
		limit, remaining := h.Limit, h.Remaining
		view.Limit, view.Remaining = &limit, &remaining
		if h.Window > 0 {
			view.Window = h.Window.String()
		}
	}

	if reset := rl.Reset(); !reset.IsZero() {
		at := reset.Instant(now)
		secs := reset.Seconds(now)
		view.ResetAt, view.ResetSeconds = &at, &secs
	}

	for _, p := range rl.Policies() {
		pv := policyView{Name: p.Name, Quota: p.Quota, QuotaUnit: p.QuotaUnit}
		if p.Window > 0 {
			pv.Window = p.Window.String()
		}
		view.Policies = append(view.Policies, pv)
	}
	return view
}

func render(w io.Writer, rl ratelimits.RateLimit, now time.Time, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(newResultView(rl, now)), "encode result")
	}

	if _, err := fmt.Fprintln(w, rl); err != nil {
		return errors.Wrap(err, "write result")
	}
	for _, p := range rl.Policies() {
		line := fmt.Sprintf("  policy %d", p.Quota)
		if p.Name != "" {
			line = fmt.Sprintf("  policy %q: %d", p.Name, p.Quota)
		}
		if p.QuotaUnit != "" {
			line += " " + p.QuotaUnit
		}
		if p.Window > 0 {
			line += " per " + p.Window.String()
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return errors.Wrap(err, "write result")
		}
	}
	return nil
}
