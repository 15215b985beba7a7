package main

import (
	"context"
	"os/signal"
	"syscall"
)

// signalContext returns a context cancelled on SIGINT/SIGTERM so an
// interrupted run stops at the next suspension point and leaves the
// result table consistent up to the last flushed page.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
