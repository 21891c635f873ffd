package http11

import (
	"context"
	"io"

	shockwave "github.com/shockwave-http/shockwave/pkg/shockwave"
)

// Body is the request body reader. It shares the connection's socket with
// the driver: a request with a declared Content-Length never reads past that
// many bytes, and any bytes already buffered while parsing headers (the
// "pre-read prefix") are served before falling back to the socket.
//
// A Body is never read concurrently with the driver: the driver blocks on
// the handler call for as long as the handler is reading the body, so no
// locking is required around the shared reader.
type Body struct {
	r             io.Reader // underlying socket-backed reader (nil once exhausted or absent)
	contentLength int64     // declared length; 0 for bodyless requests
	bytesRead     int64     // bytes already delivered to the caller
}

// NewBody constructs a socket-backed body. r is the reader to pull
// additional bytes from once any pre-read prefix (already folded into r by
// the caller, see Parser.setupBodyReader) has been exhausted.
func NewBody(r io.Reader, contentLength int64) *Body {
	return &Body{r: r, contentLength: contentLength}
}

// Remaining reports how many body bytes have not yet been delivered.
func (b *Body) Remaining() int64 {
	if b == nil {
		return 0
	}
	return b.contentLength - b.bytesRead
}

// ContentLength returns the declared length of the body.
func (b *Body) ContentLength() int64 {
	if b == nil {
		return 0
	}
	return b.contentLength
}

// Read implements io.Reader. It never reads past ContentLength bytes total;
// once the body is fully consumed it returns io.EOF, matching io.Reader's
// contract for callers happy to treat "done" and "nothing left" the same
// way. Callers that must distinguish a fully-delivered body from one cut
// short by the peer should check Remaining() == 0 after a non-nil error.
func (b *Body) Read(dst []byte) (int, error) {
	if b == nil || b.r == nil {
		return 0, io.EOF
	}
	remaining := b.Remaining()
	if remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(dst)) > remaining {
		dst = dst[:remaining]
	}
	n, err := b.r.Read(dst)
	b.bytesRead += int64(n)
	if err == io.EOF && b.Remaining() > 0 {
		// The peer closed before delivering the whole declared body.
		return n, ErrTruncatedBody
	}
	return n, err
}

// Collect reads the entire body into a single contiguous slice of exactly
// ContentLength() bytes. It fails with ErrTruncatedBody if the peer closes
// the connection before the declared length is reached, and with
// ErrQuotaExceeded if called again after the body has already been fully
// consumed and more bytes are requested than remain.
func (b *Body) Collect(ctx context.Context) ([]byte, error) {
	if b == nil || b.contentLength == 0 {
		return nil, nil
	}
	if b.Remaining() <= 0 {
		return nil, ErrQuotaExceeded
	}

	// Read into a pooled scratch buffer sized to the declared length, then
	// copy out exactly ContentLength() bytes for the caller to own. The
	// scratch buffer goes back to the pool immediately after; only the
	// final, right-sized copy escapes.
	scratch := shockwave.GetBuffer(int(b.contentLength))
	defer shockwave.PutBuffer(scratch)

	pos := int64(0)
	for pos < b.contentLength {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := b.Read(scratch[pos:b.contentLength])
		pos += int64(n)
		if err != nil {
			if err == io.EOF && pos == b.contentLength {
				break
			}
			return nil, err
		}
	}

	out := make([]byte, b.contentLength)
	copy(out, scratch[:b.contentLength])
	return out, nil
}

// Discard drains and throws away any unread body bytes, so the connection
// stays correctly framed for the next request even when the handler never
// touched the body.
func (b *Body) Discard() error {
	if b == nil || b.Remaining() <= 0 {
		return nil
	}
	_, err := io.Copy(io.Discard, b)
	return err
}
