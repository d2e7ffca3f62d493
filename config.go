// config.go
// ----------
// This file defines the Config structure, which allows per-parser
// customization of behavior: the clock used to anchor relative reset values
// and an optional fixed convention that bypasses vendor detection.
package ratelimits

import "time"

// Config customizes a Parser. The zero value detects the vendor and uses the
// system clock.
type Config struct {
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// Vendor forces a convention instead of detecting one. Use it when the
	// caller knows which API it is talking to; VendorUnknown means detect.
	Vendor Vendor
}

func (c Config) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
