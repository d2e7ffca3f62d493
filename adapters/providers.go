package adapters

import (
	"net"
	"net/http"
	"strings"

	"github.com/opengovern/ratelimits"
)

// knownHosts pins the convention of well-known API hosts so their responses
// are read with the right rules even when detection would fall back to the
// generic headers.
var knownHosts = map[string]ratelimits.Vendor{
	"api.github.com":       ratelimits.VendorGithub,
	"uploads.github.com":   ratelimits.VendorGithub,
	"gitlab.com":           ratelimits.VendorGitlab,
	"api.twitter.com":      ratelimits.VendorTwitter,
	"api.x.com":            ratelimits.VendorTwitter,
	"oauth.reddit.com":     ratelimits.VendorReddit,
	"api.vimeo.com":        ratelimits.VendorVimeo,
	"registry-1.docker.io": ratelimits.VendorDockerHub,
	"index.docker.io":      ratelimits.VendorDockerHub,
	"api.openai.com":       ratelimits.VendorOpenAI,
	"api.groq.com":         ratelimits.VendorOpenAI,
	"api.anthropic.com":    ratelimits.VendorAnthropic,
}

// VendorForHost returns the convention used by host, or VendorUnknown when
// the host is not known and detection should decide.
func VendorForHost(host string) ratelimits.Vendor {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return knownHosts[host]
}

// IsRateLimited reports whether resp was rejected because of a rate limit.
// 429 always is. GitHub answers 403 and some gateways 503 once the quota is
// used up, so those count when nothing is left or only Retry-After was sent.
func IsRateLimited(resp *http.Response, rl ratelimits.RateLimit) bool {
	if resp == nil {
		return false
	}
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return true
	case http.StatusForbidden, http.StatusServiceUnavailable:
		if remaining, ok := rl.Remaining(); ok {
			return remaining == 0
		}
		return rl.Kind() == ratelimits.KindRetryAfter
	default:
		return false
	}
}
