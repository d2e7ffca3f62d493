// variants.go
// -----------
// Per-vendor field mapping. A variant names the headers that fill the limit,
// remaining and reset slots of one convention, how its reset value is written,
// and the window length the vendor documents. The table is fixed at compile
// time and never mutated.
package ratelimits

import "time"

// resetKind says how a vendor writes its reset header.
type resetKind uint8

const (
	// resetNone means the convention has no reset header.
	resetNone resetKind = iota
	// resetTimestamp is Unix epoch seconds.
	resetTimestamp
	// resetSeconds is seconds until the window resets.
	resetSeconds
	// resetDuration is a Go-style duration string such as "6m0s".
	resetDuration
	// resetHTTPDate is an IMF-fixdate.
	resetHTTPDate
	// resetISO8601 is an RFC 3339 timestamp.
	resetISO8601
	// resetAuto sniffs the value: see parseResetValue.
	resetAuto
)

type variant struct {
	vendor Vendor

	// Candidate header names for each slot. The first present name is used;
	// two present names with different values are ambiguous.
	limit     []string
	remaining []string
	reset     []string

	// used, when set, replaces the limit header: limit = used + remaining.
	used string

	resetKind     resetKind
	resetRequired bool

	// listValues strips draft-style list members and parameters, so
	// "100;w=21600" and "100, 10;window=1" both read as 100.
	listValues bool

	// window is the documented window length, zero when none is fixed.
	window time.Duration
}

// Polli draft and generic X-RateLimit-* headers: https://datatracker.ietf.org/doc/html/draft-polli-ratelimit-headers-00
// Reddit: https://www.reddit.com/r/redditdev/comments/1yxrp7/formal_ratelimiting_headers/
// GitHub: https://docs.github.com/en/rest/using-the-rest-api/rate-limits-for-the-rest-api
// Twitter: https://developer.x.com/en/docs/x-api/rate-limits
// Vimeo: https://developer.vimeo.com/guidelines/rate-limiting
// GitLab: https://docs.gitlab.com/ee/administration/settings/user_and_ip_rate_limits.html
// Docker Hub: https://docs.docker.com/docker-hub/usage/pulls/
// OpenAI: https://platform.openai.com/docs/guides/rate-limits
// Anthropic: https://docs.anthropic.com/en/api/rate-limits
var variants = map[Vendor]variant{
	VendorStandard: {
		vendor:     VendorStandard,
		limit:      []string{headerLimit, headerXLimit, "x-rate-limit-limit"},
		remaining:  []string{headerRemaining, headerXRemaining, "x-rate-limit-remaining"},
		reset:      []string{headerReset, headerXReset, "x-rate-limit-reset"},
		resetKind:  resetAuto,
		listValues: true,
	},
	VendorReddit: {
		vendor:        VendorReddit,
		used:          headerXUsed,
		remaining:     []string{headerXRemaining},
		reset:         []string{headerXReset},
		resetKind:     resetSeconds,
		resetRequired: true,
		window:        10 * time.Minute,
	},
	VendorGithub: {
		vendor:        VendorGithub,
		limit:         []string{headerXLimit},
		remaining:     []string{headerXRemaining},
		reset:         []string{headerXReset},
		resetKind:     resetTimestamp,
		resetRequired: true,
		window:        time.Hour,
	},
	VendorTwitter: {
		vendor:        VendorTwitter,
		limit:         []string{"x-rate-limit-limit"},
		remaining:     []string{"x-rate-limit-remaining"},
		reset:         []string{"x-rate-limit-reset"},
		resetKind:     resetTimestamp,
		resetRequired: true,
		window:        15 * time.Minute,
	},
	VendorVimeo: {
		vendor:        VendorVimeo,
		limit:         []string{headerXLimit},
		remaining:     []string{headerXRemaining},
		reset:         []string{headerXReset},
		resetKind:     resetHTTPDate,
		resetRequired: true,
		window:        time.Minute,
	},
	VendorGitlab: {
		vendor:        VendorGitlab,
		limit:         []string{headerLimit},
		remaining:     []string{headerRemaining},
		reset:         []string{headerReset},
		resetKind:     resetTimestamp,
		resetRequired: true,
		window:        time.Minute,
	},
	VendorAkamai: {
		vendor:        VendorAkamai,
		limit:         []string{headerXLimit},
		remaining:     []string{headerXRemaining},
		reset:         []string{"x-ratelimit-next"},
		resetKind:     resetISO8601,
		resetRequired: true,
		window:        time.Minute,
	},
	VendorDockerHub: {
		vendor:     VendorDockerHub,
		limit:      []string{headerLimit},
		remaining:  []string{headerRemaining},
		resetKind:  resetNone,
		listValues: true,
		window:     6 * time.Hour,
	},
	VendorOpenAI: {
		vendor:        VendorOpenAI,
		limit:         []string{"x-ratelimit-limit-requests"},
		remaining:     []string{"x-ratelimit-remaining-requests"},
		reset:         []string{"x-ratelimit-reset-requests"},
		resetKind:     resetDuration,
		resetRequired: true,
	},
	VendorAnthropic: {
		vendor:        VendorAnthropic,
		limit:         []string{"anthropic-ratelimit-requests-limit"},
		remaining:     []string{"anthropic-ratelimit-requests-remaining"},
		reset:         []string{"anthropic-ratelimit-requests-reset"},
		resetKind:     resetISO8601,
		resetRequired: true,
	},
}
