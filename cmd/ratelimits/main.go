// Command ratelimits reads rate-limit headers from captured responses, live
// HTTP endpoints and container registries, and prints them in one normalized
// form.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		logrus.WithError(err).Error("ratelimits failed")
		os.Exit(1)
	}
}
