package ratelimits_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opengovern/ratelimits"
)

func TestParser_Detects(t *testing.T) {
	p := ratelimits.NewParser(ratelimits.Config{Now: func() time.Time { return fixedNow }})

	rl, err := p.Parse(ratelimits.Map{
		"X-RateLimit-Limit":     "5000",
		"X-RateLimit-Remaining": "4987",
		"X-RateLimit-Reset":     "1350085394",
		"Retry-After":           "120",
	})
	require.NoError(t, err)
	assert.Equal(t, ratelimits.VendorStandard, rl.Vendor())
	assert.Equal(t, ratelimits.ResetAfter(2*time.Minute), rl.Reset())

	limit, ok := rl.Limit()
	assert.True(t, ok)
	assert.Equal(t, uint64(5000), limit)

	remaining, ok := rl.Remaining()
	assert.True(t, ok)
	assert.Equal(t, uint64(4987), remaining)
	assert.Equal(t, fixedNow, p.Now())
}

func TestParser_ForcedVendor(t *testing.T) {
	p := ratelimits.NewParser(ratelimits.Config{
		Now:    func() time.Time { return fixedNow },
		Vendor: ratelimits.VendorGithub,
	})

	// Detection alone would report the generic convention for these.
	rl, err := p.Parse(ratelimits.Map{
		"X-RateLimit-Limit":     "60",
		"X-RateLimit-Remaining": "59",
		"X-RateLimit-Reset":     "1717243260",
	})
	require.NoError(t, err)
	assert.Equal(t, ratelimits.VendorGithub, rl.Vendor())

	h, ok := rl.Headers()
	require.True(t, ok)
	assert.Equal(t, time.Hour, h.Window)

	rl, err = p.Parse(ratelimits.Map{"Content-Length": "0"})
	require.NoError(t, err)
	assert.Equal(t, ratelimits.KindNone, rl.Kind())
	assert.True(t, rl.IsZero())
}

func TestParse_NoHeaders(t *testing.T) {
	rl, err := ratelimits.Parse(ratelimits.Map{"Content-Length": "0"})
	require.NoError(t, err)
	assert.True(t, rl.IsZero())
	assert.Equal(t, "no rate limit", rl.String())
}

func TestParser_Concurrent(t *testing.T) {
	p := ratelimits.NewParser(ratelimits.Config{Now: func() time.Time { return fixedNow }})
	h := ratelimits.Map{
		"x-ratelimit-limit-requests":     "60",
		"x-ratelimit-remaining-requests": "59",
		"x-ratelimit-reset-requests":     "1s",
	}

	var wg sync.WaitGroup
	results := make([]ratelimits.RateLimit, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = p.Parse(h)
		}(i)
	}
	wg.Wait()

	for _, rl := range results {
		assert.Equal(t, results[0], rl)
	}
	assert.Equal(t, ratelimits.VendorOpenAI, results[0].Vendor())
}

func TestRateLimit_String(t *testing.T) {
	rl, err := ratelimits.Extract(ratelimits.VendorReddit, ratelimits.Map{
		"X-Ratelimit-Used":      "100",
		"X-Ratelimit-Remaining": "22",
		"X-Ratelimit-Reset":     "30",
	}, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "reddit: 22/122 remaining, reset in 30s, window 10m0s", rl.String())

	rl, err = ratelimits.Extract(ratelimits.VendorUnknown, ratelimits.Map{"Retry-After": "5"}, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "retry after in 5s", rl.String())
}
