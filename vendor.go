// vendor.go
// ---------
// Vendor detection. Each known convention owns one detection rule; rules are
// tried in order and the first match wins. Conventions whose header names are
// a superset of the generic X-RateLimit-* set come first, otherwise they would
// be read as the generic convention. Detection never fails: the worst outcome
// is VendorUnknown.
package ratelimits

import (
	"strconv"

	"github.com/opengovern/ratelimits/internal/timeparse"
)

// Vendor identifies a rate-limit header convention.
type Vendor uint8

const (
	// VendorUnknown means no rate-limit convention was recognized.
	VendorUnknown Vendor = iota
	// VendorStandard covers the IETF RateLimit-* drafts and the generic
	// X-RateLimit-* headers, including best-effort matches.
	VendorStandard
	// VendorGithub is the GitHub REST API convention.
	VendorGithub
	// VendorTwitter is the Twitter (X) API convention.
	VendorTwitter
	// VendorReddit is the Reddit API convention.
	VendorReddit
	// VendorVimeo is the Vimeo API convention.
	VendorVimeo
	// VendorGitlab is the GitLab convention.
	VendorGitlab
	// VendorAkamai is the Akamai API gateway convention.
	VendorAkamai
	// VendorDockerHub is the Docker Hub pull quota convention.
	VendorDockerHub
	// VendorOpenAI is the OpenAI convention, also used by Groq and others.
	VendorOpenAI
	// VendorAnthropic is the Anthropic API convention.
	VendorAnthropic
)

var vendorNames = [...]string{
	VendorUnknown:   "unknown",
	VendorStandard:  "standard",
	VendorGithub:    "github",
	VendorTwitter:   "twitter",
	VendorReddit:    "reddit",
	VendorVimeo:     "vimeo",
	VendorGitlab:    "gitlab",
	VendorAkamai:    "akamai",
	VendorDockerHub: "dockerhub",
	VendorOpenAI:    "openai",
	VendorAnthropic: "anthropic",
}

func (v Vendor) String() string {
	if int(v) < len(vendorNames) {
		return vendorNames[v]
	}
	return "vendor(" + strconv.Itoa(int(v)) + ")"
}

// ParseVendor returns the vendor with the given String name.
func ParseVendor(name string) (Vendor, bool) {
	for v, n := range vendorNames {
		if n == name {
			return Vendor(v), true
		}
	}
	return VendorUnknown, false
}

// Header names shared by detection and extraction.
const (
	headerRetryAfter = "retry-after"
	headerPolicy     = "ratelimit-policy"
	headerRateLimit  = "ratelimit"

	headerXLimit     = "x-ratelimit-limit"
	headerXRemaining = "x-ratelimit-remaining"
	headerXReset     = "x-ratelimit-reset"
	headerXUsed      = "x-ratelimit-used"

	headerLimit     = "ratelimit-limit"
	headerRemaining = "ratelimit-remaining"
	headerReset     = "ratelimit-reset"
)

// bestEffortPrefixes mark a header as rate-limit related even when its exact
// name belongs to no known convention.
var bestEffortPrefixes = []string{"x-ratelimit-", "ratelimit-", "x-rate-limit-"}

type detectionRule struct {
	vendor Vendor
	match  func(idx index) bool
}

var detectionRules = []detectionRule{
	{VendorAnthropic, func(idx index) bool {
		return idx.hasAny("anthropic-ratelimit-requests-limit", "anthropic-ratelimit-requests-remaining")
	}},
	{VendorOpenAI, func(idx index) bool {
		return idx.hasAny("x-ratelimit-limit-requests", "x-ratelimit-remaining-requests")
	}},
	{VendorDockerHub, func(idx index) bool {
		return idx.hasAny("docker-ratelimit-source")
	}},
	{VendorGitlab, func(idx index) bool {
		return idx.hasAny("ratelimit-observed")
	}},
	{VendorAkamai, func(idx index) bool {
		return idx.hasAny("x-ratelimit-next")
	}},
	{VendorReddit, func(idx index) bool {
		return idx.hasAny(headerXUsed) && !idx.hasAny(headerXLimit)
	}},
	{VendorTwitter, func(idx index) bool {
		return idx.hasAny("x-rate-limit-limit", "x-rate-limit-remaining", "x-rate-limit-reset")
	}},
	{VendorGithub, func(idx index) bool {
		return idx.hasAny(headerXLimit, headerXRemaining, headerXReset) &&
			idx.hasAny("x-ratelimit-resource", "x-github-request-id")
	}},
	{VendorVimeo, func(idx index) bool {
		reset, ok := idx.get(headerXReset)
		return ok && timeparse.IsHTTPDate(reset)
	}},
	{VendorStandard, func(idx index) bool {
		return idx.hasAny(headerLimit, headerRemaining, headerReset, headerPolicy, headerRateLimit,
			headerXLimit, headerXRemaining, headerXReset)
	}},
	{VendorStandard, func(idx index) bool {
		return idx.hasPrefix(bestEffortPrefixes...)
	}},
}

// Detect returns the convention used by h.
func Detect(h HeaderSet) Vendor {
	return detect(newIndex(h))
}

func detect(idx index) Vendor {
	for _, rule := range detectionRules {
		if rule.match(idx) {
			return rule.vendor
		}
	}
	return VendorUnknown
}
