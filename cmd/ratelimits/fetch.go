package main

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/crypto/pkcs12"
	"golang.org/x/oauth2"

	"github.com/opengovern/ratelimits"
	"github.com/opengovern/ratelimits/adapters"
)

func newFetchCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch URL",
		Short: "Send one request and report the rate limit of the response",
		Long: `Fetch sends a request (HEAD by default) and prints the rate-limit state
from the response headers. With --retries, rate-limited responses are retried
after the reset the server announced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd.Context(), cmd.OutOrStdout(), v, args[0])
		},
	}

	cmd.Flags().String("method", http.MethodHead, "HTTP method")
	cmd.Flags().String("token", "", "bearer token sent in the Authorization header")
	cmd.Flags().String("client-cert", "", "PKCS#12 bundle with a TLS client certificate")
	cmd.Flags().String("client-cert-password", "", "password of the PKCS#12 bundle")
	cmd.Flags().Duration("timeout", 30*time.Second, "request timeout")
	cmd.Flags().Int("retries", 0, "retry rate-limited and failed requests up to this many times")
	cmd.Flags().Duration("min-wait", time.Second, "shortest wait between retries")
	cmd.Flags().Duration("max-wait", 5*time.Minute, "longest wait between retries")
	return cmd
}

func runFetch(ctx context.Context, out io.Writer, v *viper.Viper, url string) error {
	parser, err := newParser(v)
	if err != nil {
		return err
	}

	base := http.DefaultTransport.(*http.Transport).Clone()
	if path := v.GetString("client-cert"); path != "" {
		cert, err := loadClientCert(path, v.GetString("client-cert-password"))
		if err != nil {
			return err
		}
		base.TLSClientConfig = &tls.Config{Certificates: []tls.Certificate{cert}}
	}

	var (
		last    ratelimits.RateLimit
		lastErr error
		seen    bool
	)
	observer := &adapters.Transport{
		Base:   base,
		Logger: logrus.StandardLogger(),
		Hook: func(_ *http.Request, _ *http.Response, rl ratelimits.RateLimit, err error) {
			last, lastErr, seen = rl, err, true
		},
	}
	if v.GetString("vendor") != "" {
		observer.Parser = parser
	}

	var rt http.RoundTripper = observer
	if token := v.GetString("token"); token != "" {
		if err := checkToken(token, now()); err != nil {
			return err
		}
		rt = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base:   rt,
		}
	}

	client := &http.Client{Transport: rt, Timeout: v.GetDuration("timeout")}
	if retries := v.GetInt("retries"); retries > 0 {
		rc := retryablehttp.NewClient()
		rc.HTTPClient = client
		rc.Logger = nil
		rc.RetryMax = retries
		rc.RetryWaitMin = v.GetDuration("min-wait")
		rc.RetryWaitMax = v.GetDuration("max-wait")
		rc.Backoff = adapters.RetryAfterBackoff(parser)
		rc.CheckRetry = withRetryLogging(adapters.CheckRetry(parser), logrus.StandardLogger())
		rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
		client = rc.StandardClient()
	}

	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(v.GetString("method")), url, nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "request %s", url)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	logrus.WithField("status", resp.StatusCode).Infof("%s %s", req.Method, url)
	if !seen {
		return errors.Errorf("no response observed for %s", url)
	}
	if lastErr != nil {
		return lastErr
	}
	return render(out, last, now(), v.GetBool("json"))
}

// checkToken rejects a JWT bearer token whose exp claim has passed, which
// would only burn quota on a 401. Opaque tokens are accepted as is.
func checkToken(token string, at time.Time) error {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(at) {
		return errors.Errorf("token expired at %s", claims.ExpiresAt.UTC().Format(time.RFC3339))
	}
	return nil
}

func loadClientCert(path, password string) (tls.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tls.Certificate{}, errors.Wrap(err, "read client certificate")
	}
	key, cert, err := pkcs12.Decode(data, password)
	if err != nil {
		return tls.Certificate{}, errors.Wrapf(err, "decode PKCS#12 bundle %s", path)
	}
	return tls.Certificate{
		Certificate: [][]byte{cert.Raw},
		PrivateKey:  key,
		Leaf:        cert,
	}, nil
}

// withRetryLogging wraps a retry policy to log each retry at debug level.
func withRetryLogging(policy retryablehttp.CheckRetry, log logrus.FieldLogger) retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		retry, err := policy(ctx, resp, err)
		if retry {
			switch {
			case err != nil:
				log.WithError(err).Debug("retrying request")
			case resp != nil:
				log.WithField("status", resp.StatusCode).Debug("retrying request")
			}
		}
		return retry, err
	}
}
