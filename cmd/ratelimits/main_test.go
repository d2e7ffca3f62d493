package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/go-containerregistry/pkg/name"
	ggcrregistry "github.com/google/go-containerregistry/pkg/registry"
	"github.com/google/go-containerregistry/pkg/v1/random"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	now = func() time.Time { return fixedNow }
	t.Cleanup(func() { now = time.Now })

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParse_Stdin(t *testing.T) {
	out, err := run(t, "HTTP/1.1 429 Too Many Requests\n"+
		"x-ratelimit-limit: 5000\n"+
		"x-ratelimit-remaining: 0\n"+
		"x-ratelimit-reset: 1350085394\n"+
		"retry-after: 120\n",
		"parse")
	require.NoError(t, err)
	assert.Equal(t, "standard: 0/5000 remaining, reset in 2m0s\n", out)
}

func TestParse_JSON(t *testing.T) {
	out, err := run(t, "X-Ratelimit-Used: 100\nX-Ratelimit-Remaining: 22\nX-Ratelimit-Reset: 30\n", "parse", "--json", "-")
	require.NoError(t, err)

	var got resultView
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "headers", got.Kind)
	assert.Equal(t, "reddit", got.Vendor)
	require.NotNil(t, got.Limit)
	assert.Equal(t, uint64(122), *got.Limit)
	require.NotNil(t, got.ResetSeconds)
	assert.Equal(t, uint64(30), *got.ResetSeconds)
	require.NotNil(t, got.ResetAt)
	assert.True(t, fixedNow.Add(30*time.Second).Equal(*got.ResetAt))
	assert.Equal(t, "10m0s", got.Window)
}

func TestParse_PolicyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "headers.txt")
	require.NoError(t, os.WriteFile(path, []byte(`RateLimit-Policy: "burst";q=100;w=60`+"\n"), 0o600))

	out, err := run(t, "", "parse", path)
	require.NoError(t, err)
	assert.Equal(t, "standard: 1 policies, reset unknown\n  policy \"burst\": 100 per 1m0s\n", out)
}

func TestParse_VendorFromEnv(t *testing.T) {
	t.Setenv("RATELIMITS_VENDOR", "github")

	out, err := run(t, "x-ratelimit-limit: 60\nx-ratelimit-remaining: 59\nx-ratelimit-reset: 1717243260\n", "parse")
	require.NoError(t, err)
	assert.Equal(t, "github: 59/60 remaining, reset 2024-06-01T12:01:00Z, window 1h0m0s\n", out)
}

func TestParse_Errors(t *testing.T) {
	_, err := run(t, "x-ratelimit-limit: 60\n", "parse", "--vendor", "myspace")
	assert.ErrorContains(t, err, `unknown vendor "myspace"`)

	_, err = run(t, "not a header\n", "parse")
	assert.ErrorContains(t, err, "line 1")

	_, err = run(t, "x-ratelimit-limit: many\nx-ratelimit-remaining: 1\n", "parse")
	assert.ErrorContains(t, err, "malformed integer in limit")

	_, err = run(t, "", "parse", filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorContains(t, err, "open header file")

	_, err = run(t, "", "parse", "--log-level", "loud")
	assert.ErrorContains(t, err, "invalid --log-level")
}

func TestFetch(t *testing.T) {
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Header().Set("RateLimit-Limit", "10")
		w.Header().Set("RateLimit-Remaining", "9")
		w.Header().Set("RateLimit-Reset", "5")
	}))
	defer server.Close()

	out, err := run(t, "", "fetch", "--token", "opaque-token", server.URL)
	require.NoError(t, err)
	assert.Equal(t, "standard: 9/10 remaining, reset in 5s\n", out)
	assert.Equal(t, "Bearer opaque-token", auth)
}

func TestFetch_RetriesAfterReset(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("X-RateLimit-Limit", "10")
		w.Header().Set("X-RateLimit-Remaining", "8")
	}))
	defer server.Close()

	out, err := run(t, "", "fetch", "--retries", "2", "--min-wait", "1ms", "--max-wait", "10ms", server.URL)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, "standard: 8/10 remaining, reset unknown\n", out)
}

func TestFetch_ExpiredToken(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(fixedNow.Add(-time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = run(t, "", "fetch", "--token", token, "http://127.0.0.1:1")
	assert.ErrorContains(t, err, "token expired at 2024-06-01T11:00:00Z")

	valid, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(fixedNow.Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	assert.NoError(t, checkToken(valid, fixedNow))
	assert.NoError(t, checkToken("opaque", fixedNow))
}

func TestFetch_BadClientCert(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.p12")
	require.NoError(t, os.WriteFile(path, []byte("not pkcs12"), 0o600))

	_, err := run(t, "", "fetch", "--client-cert", path, "https://example.invalid")
	assert.ErrorContains(t, err, "decode PKCS#12 bundle")

	_, err = run(t, "", "fetch", "--client-cert", path+".missing", "https://example.invalid")
	assert.ErrorContains(t, err, "read client certificate")
}

// newQuotaRegistry serves an in-memory registry that stamps Docker Hub quota
// headers on every response, holding one image at library/alpine:latest.
func newQuotaRegistry(t *testing.T) string {
	t.Helper()
	t.Setenv("DOCKER_CONFIG", t.TempDir())

	inner := ggcrregistry.New(ggcrregistry.Logger(log.New(io.Discard, "", 0)))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ratelimit-limit", "100;w=21600")
		w.Header().Set("ratelimit-remaining", "99;w=21600")
		w.Header().Set("docker-ratelimit-source", "192.0.2.1")
		inner.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	ref := strings.TrimPrefix(server.URL, "http://") + "/library/alpine:latest"
	img, err := random.Image(256, 1)
	require.NoError(t, err)
	parsed, err := name.ParseReference(ref, name.Insecure)
	require.NoError(t, err)
	require.NoError(t, remote.Write(parsed, img))
	return ref
}

func TestRegistry(t *testing.T) {
	ref := newQuotaRegistry(t)

	for _, client := range []string{clientGGCR, clientORAS} {
		t.Run(client, func(t *testing.T) {
			out, err := run(t, "", "registry", "--insecure", "--client", client, ref)
			require.NoError(t, err)
			assert.Equal(t, "dockerhub: 99/100 remaining, reset unknown, window 6h0m0s\n", out)
		})
	}

	_, err := run(t, "", "registry", "--client", "skopeo", ref)
	assert.ErrorContains(t, err, `unknown registry client "skopeo"`)
}
