//go:build linux || darwin
// +build linux darwin

package socket

import (
	"context"
	"net"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

var distantPast = time.Unix(1, 0)

// pollReady blocks until conn is ready for the requested operation or ctx is
// done.
//
// Reads are probed with a non-consuming MSG_PEEK recv. syscall.RawConn's
// Read calls its callback immediately on every attempt and only waits for
// readability in between attempts that return false, so the callback has to
// perform a real readiness check itself rather than assume it only runs
// once the fd is already readable.
//
// Writes have no portable peek-equivalent short of attempting the write
// itself, and this engine's request/response workload rarely fills a TCP
// send buffer, so PollWriteReady degrades to an immediate, ctx-only check;
// TryWrite's deadline-based ErrWouldBlock detection is what actually
// protects PollWriteAll against a full buffer.
func pollReady(conn net.Conn, ctx context.Context, forRead bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !forRead {
		return nil
	}

	sc, ok := conn.(syscall.Conn)
	if !ok {
		return pollReadyFallback(conn, ctx, forRead)
	}
	rawConn, err := sc.SyscallConn()
	if err != nil {
		return pollReadyFallback(conn, ctx, forRead)
	}

	stop := context.AfterFunc(ctx, func() {
		conn.SetReadDeadline(distantPast) //nolint:errcheck // forces the in-flight wait below to return
	})
	defer stop()
	defer conn.SetReadDeadline(time.Time{}) //nolint:errcheck // best-effort deadline clear

	var peekErr error
	probe := func(fd uintptr) bool {
		if ctxErr := ctx.Err(); ctxErr != nil {
			peekErr = ctxErr
			return true
		}
		var scratch [1]byte
		_, _, errno := unix.Recvfrom(int(fd), scratch[:], unix.MSG_PEEK)
		if errno == unix.EAGAIN || errno == unix.EWOULDBLOCK {
			return false // not ready yet, let RawConn.Read wait for readability
		}
		if errno != nil {
			peekErr = errno
		}
		return true // data available, EOF, or a genuine error
	}

	if err := rawConn.Read(probe); err != nil {
		// A timeout here means the AfterFunc callback forced the deadline,
		// which only happens once ctx is done.
		if isTimeout(err) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
		}
		return err
	}
	return peekErr
}
