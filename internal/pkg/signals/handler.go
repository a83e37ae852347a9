// Package signals ties long-running scans to process signals: SIGINT and
// SIGTERM stop them, SIGHUP asks a watcher to reload its patterns.
package signals

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/endorses/strsearch/internal/pkg/logger"
)

// SetupHandler cancels the context on SIGINT or SIGTERM.
// Returns a cleanup function that should be called when the signal handler is no longer needed
func SetupHandler(ctx context.Context, cancel context.CancelFunc) (cleanup func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case sig := <-sigCh:
			logger.Info("Received signal, stopping scan", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return func() {
		signal.Stop(sigCh)
		cancel()
		<-done
	}
}

// OnHangup calls onHangup for every SIGHUP until ctx is done.
// Returns a cleanup function that should be called when the signal handler is no longer needed
func OnHangup(ctx context.Context, onHangup func()) (cleanup func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case sig := <-sigCh:
				logger.Info("Received signal, invoking callback", "signal", sig.String())
				onHangup()
			case <-ctx.Done():
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigCh)
		cancel()
		<-done
	}
}
