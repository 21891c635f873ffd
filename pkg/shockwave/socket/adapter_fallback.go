package socket

import (
	"context"
	"net"
	"time"
)

// pollReadyFallback waits a short tick (or until ctx ends) without
// performing any real readiness check, then lets the caller's next
// TryRead/TryWrite attempt determine readiness via its own deadline probe.
// Used where a raw-syscall readiness check isn't available: connection
// types that don't implement syscall.Conn (e.g. most net.Conn wrappers),
// and as the entire strategy on platforms with no adapter_unix.go.
func pollReadyFallback(conn net.Conn, ctx context.Context, forRead bool) error {
	const tick = 2 * time.Millisecond
	timer := time.NewTimer(tick)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
