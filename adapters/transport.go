package adapters

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/opengovern/ratelimits"
)

// Hook receives the rate-limit state of every response that passed through a
// Transport. err is the parse error, if any; rl is then the zero RateLimit.
type Hook func(req *http.Request, resp *http.Response, rl ratelimits.RateLimit, err error)

// Transport is an http.RoundTripper that parses the rate-limit headers of
// each response and reports them to Hook. It observes only: requests are
// never delayed or retried, and parse errors never fail the round trip.
type Transport struct {
	// Base is the underlying transport. Defaults to http.DefaultTransport.
	Base http.RoundTripper

	// Parser parses responses. When nil, a parser pinned to the request
	// host's convention is used, see VendorForHost.
	Parser *ratelimits.Parser

	Hook Hook

	// Logger receives a debug entry per response. Defaults to the logrus
	// standard logger.
	Logger logrus.FieldLogger
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base().RoundTrip(req)
	if err != nil || resp == nil {
		return resp, err
	}

	rl, parseErr := t.parser(req).Parse(Response(resp))

	entry := t.logger().WithFields(logrus.Fields{
		"method": req.Method,
		"host":   req.URL.Host,
		"status": resp.StatusCode,
	})
	switch {
	case parseErr != nil:
		entry.WithError(parseErr).Debug("unreadable rate-limit headers")
	case !rl.IsZero():
		entry.WithField("vendor", rl.Vendor()).Debugf("rate limit: %s", rl)
	}

	if t.Hook != nil {
		t.Hook(req, resp, rl, parseErr)
	}
	return resp, nil
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) parser(req *http.Request) *ratelimits.Parser {
	if t.Parser != nil {
		return t.Parser
	}
	return ratelimits.NewParser(ratelimits.Config{Vendor: VendorForHost(req.URL.Host)})
}

func (t *Transport) logger() logrus.FieldLogger {
	if t.Logger != nil {
		return t.Logger
	}
	return logrus.StandardLogger()
}
