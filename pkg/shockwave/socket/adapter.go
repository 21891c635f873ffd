package socket

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/shockwave-http/shockwave/pkg/shockwave/buffer"
)

// ErrWouldBlock is returned by TryRead and TryWrite when the socket is not
// currently ready for the requested operation.
var ErrWouldBlock = errors.New("socket: operation would block")

// Adapter is the byte-stream adapter the connection driver reads from and
// writes to. It wraps a net.Conn that is expected to already have been
// tuned via Apply before the Adapter takes ownership of it.
//
// Two operation styles are exposed: TryRead/TryWrite never wait — they
// either make progress immediately or report ErrWouldBlock — and
// PollReadReady/PollWriteReady block cooperatively (via the runtime's
// netpoller, not an OS thread) until the socket is ready or ctx is done.
// PollReadBuf and PollWriteAll compose the two: try, and only wait on
// ErrWouldBlock.
type Adapter struct {
	conn net.Conn
}

// NewAdapter wraps conn. The caller is responsible for having applied
// socket tuning (Apply) to conn first.
func NewAdapter(conn net.Conn) *Adapter {
	return &Adapter{conn: conn}
}

// Conn returns the underlying connection.
func (a *Adapter) Conn() net.Conn {
	return a.conn
}

// Read is a plain blocking read, backed directly by net.Conn, which already
// integrates with the runtime's netpoller. The default connection driver
// reads through this rather than the Try/Poll primitives.
func (a *Adapter) Read(dst []byte) (int, error) {
	return a.conn.Read(dst)
}

// Write is a plain blocking write, backed directly by net.Conn.
func (a *Adapter) Write(src []byte) (int, error) {
	return a.conn.Write(src)
}

// TryRead attempts a single non-blocking-style read into dst. If no data is
// currently available, it returns (0, ErrWouldBlock) instead of waiting.
func (a *Adapter) TryRead(dst []byte) (int, error) {
	if err := a.conn.SetReadDeadline(time.Now()); err != nil {
		return 0, err
	}
	defer a.conn.SetReadDeadline(time.Time{}) //nolint:errcheck // best-effort deadline clear

	n, err := a.conn.Read(dst)
	if err != nil && isTimeout(err) {
		return n, ErrWouldBlock
	}
	return n, err
}

// TryWrite attempts a single non-blocking-style write of src. If the send
// buffer is currently full, it returns (0, ErrWouldBlock) instead of
// waiting.
func (a *Adapter) TryWrite(src []byte) (int, error) {
	if err := a.conn.SetWriteDeadline(time.Now()); err != nil {
		return 0, err
	}
	defer a.conn.SetWriteDeadline(time.Time{}) //nolint:errcheck // best-effort deadline clear

	n, err := a.conn.Write(src)
	if err != nil && isTimeout(err) {
		return n, ErrWouldBlock
	}
	return n, err
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// PollReadReady blocks until the socket has data ready to read or ctx is
// done. Platform-specific (see adapter_unix.go / adapter_other.go).
func (a *Adapter) PollReadReady(ctx context.Context) error {
	return pollReady(a.conn, ctx, true)
}

// PollWriteReady blocks until the socket can accept a write or ctx is done.
// Platform-specific (see adapter_unix.go / adapter_other.go).
func (a *Adapter) PollWriteReady(ctx context.Context) error {
	return pollReady(a.conn, ctx, false)
}

// PollReadBuf reads up to n bytes into buf's writable tail, calling TryRead
// in a loop and waiting on PollReadReady whenever TryRead reports
// ErrWouldBlock. Returns once at least one byte has been committed, on a
// definitive error, or when ctx ends.
func (a *Adapter) PollReadBuf(ctx context.Context, buf *buffer.Buffer, n int) (int, error) {
	tail := buf.Tail(n)
	for {
		read, err := a.TryRead(tail)
		if err == nil {
			buf.CommitWrite(read)
			return read, nil
		}
		if !errors.Is(err, ErrWouldBlock) {
			return 0, err
		}
		if err := a.PollReadReady(ctx); err != nil {
			return 0, err
		}
	}
}

// PollWriteAll drains src by repeated TryWrite, waiting on PollWriteReady
// whenever the send buffer is full, until every byte has been written or an
// error occurs.
func (a *Adapter) PollWriteAll(ctx context.Context, src []byte) error {
	for len(src) > 0 {
		n, err := a.TryWrite(src)
		src = src[n:]
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrWouldBlock) {
			return err
		}
		if err := a.PollWriteReady(ctx); err != nil {
			return err
		}
	}
	return nil
}
