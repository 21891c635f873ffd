//go:build !linux && !darwin
// +build !linux,!darwin

package socket

import (
	"context"
	"net"
)

// pollReady has no raw-syscall readiness primitive on this platform; see
// pollReadyFallback.
func pollReady(conn net.Conn, ctx context.Context, forRead bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return pollReadyFallback(conn, ctx, forRead)
}
