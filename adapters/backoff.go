package adapters

import (
	"context"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/opengovern/ratelimits"
)

// RetryAfterBackoff returns a retryablehttp.Backoff that waits for the parsed
// reset of a rate-limited response, bounded by min and max. Responses that
// are not rate limited, or carry no usable reset, get
// retryablehttp.DefaultBackoff.
func RetryAfterBackoff(p *ratelimits.Parser) retryablehttp.Backoff {
	if p == nil {
		p = ratelimits.NewParser(ratelimits.Config{})
	}
	return func(min, max time.Duration, attemptNum int, resp *http.Response) time.Duration {
		if wait, ok := resetWait(p, resp); ok {
			if wait < min {
				wait = min
			}
			if wait > max {
				wait = max
			}
			return wait
		}
		return retryablehttp.DefaultBackoff(min, max, attemptNum, resp)
	}
}

// CheckRetry returns a retryablehttp.CheckRetry that also retries 403
// responses caused by an exhausted quota. Everything else is decided by
// retryablehttp.DefaultRetryPolicy.
func CheckRetry(p *ratelimits.Parser) retryablehttp.CheckRetry {
	if p == nil {
		p = ratelimits.NewParser(ratelimits.Config{})
	}
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err == nil && resp != nil && resp.StatusCode == http.StatusForbidden {
			if rl, perr := p.Parse(Response(resp)); perr == nil && IsRateLimited(resp, rl) {
				return true, nil
			}
		}
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
}

func resetWait(p *ratelimits.Parser, resp *http.Response) (time.Duration, bool) {
	if resp == nil {
		return 0, false
	}
	rl, err := p.Parse(Response(resp))
	if err != nil || !IsRateLimited(resp, rl) {
		return 0, false
	}
	reset := rl.Reset()
	if reset.IsZero() {
		return 0, false
	}
	return reset.Until(p.Now()), true
}
