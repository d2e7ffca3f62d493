// parser.go
// ---------
// Package ratelimits extracts rate-limit information from HTTP response
// headers and normalizes it into a single RateLimit value, whichever vendor
// convention produced it.
//
// A parse runs two steps:
//   - Detect picks the vendor convention from the header names present.
//   - Extract reads limit, remaining and reset with that convention's rules and
//     reconciles the reset with Retry-After, keeping the later of the two.
//
// Parsing is a pure function of its input. A Parser holds no mutable state and
// is safe for concurrent use. Nothing is cached between calls.
package ratelimits

import "time"

// Parser detects and extracts rate-limit headers.
type Parser struct {
	config Config
}

// NewParser returns a Parser using config.
func NewParser(config Config) *Parser {
	return &Parser{config: config}
}

var defaultParser = NewParser(Config{})

// Parse parses h with detection and the system clock.
func Parse(h HeaderSet) (RateLimit, error) {
	return defaultParser.Parse(h)
}

// Parse parses h. A response without rate-limit headers yields a KindNone
// result, not an error.
func (p *Parser) Parse(h HeaderSet) (RateLimit, error) {
	return p.ParseAt(h, p.config.now())
}

// ParseAt parses h as if the response had been received at now.
func (p *Parser) ParseAt(h HeaderSet, now time.Time) (RateLimit, error) {
	idx := newIndex(h)

	vendor := p.config.Vendor
	if vendor == VendorUnknown {
		vendor = detect(idx)
	}
	return extract(vendor, idx, now)
}

// Now returns the parser's current time.
func (p *Parser) Now() time.Time {
	return p.config.now()
}
