package signals

import (
	"context"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sendSignal(t *testing.T, sig os.Signal) {
	t.Helper()
	proc, err := os.FindProcess(os.Getpid())
	require.NoError(t, err)
	require.NoError(t, proc.Signal(sig))
}

func TestSetupHandler_CancelsContextOnSignal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cleanup := SetupHandler(ctx, cancel)
	defer cleanup()

	sendSignal(t, syscall.SIGTERM)

	select {
	case <-ctx.Done():
	case <-time.After(1 * time.Second):
		t.Fatal("Context was not cancelled after signal")
	}
}

func TestSetupHandler_CleansUpOnContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cleanup := SetupHandler(ctx, cancel)

	cancel()

	// Cleanup waits for the handler goroutine and must not block.
	finished := make(chan struct{})
	go func() {
		cleanup()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(1 * time.Second):
		t.Fatal("cleanup did not return")
	}
}

func TestOnHangup_InvokesCallbackPerSignal(t *testing.T) {
	var calls atomic.Int32
	cleanup := OnHangup(context.Background(), func() { calls.Add(1) })
	defer cleanup()

	sendSignal(t, syscall.SIGHUP)
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 10*time.Millisecond)

	sendSignal(t, syscall.SIGHUP)
	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 10*time.Millisecond)
}

func TestOnHangup_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	cleanup := OnHangup(ctx, func() { calls.Add(1) })

	cancel()
	cleanup()

	assert.Equal(t, int32(0), calls.Load())
}
