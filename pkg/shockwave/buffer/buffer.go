// Package buffer implements the growable, split/reclaim byte buffer used by
// the connection driver to accumulate request-line and header bytes.
//
// A Buffer owns a single contiguous backing array borrowed from a
// bytebufferpool.Pool. Appending grows the logical length within the
// writable tail; Snapshot copies out an immutable prefix (so it shares no
// mutable aliasing with what remains) and compacts the remainder to the
// front of the backing array; Reset attempts to reclaim the backing array
// back to its pool once the logical length returns to zero.
package buffer

import (
	"github.com/valyala/bytebufferpool"
)

var pool bytebufferpool.Pool

// Buffer is a growable byte region with split/reclaim semantics.
type Buffer struct {
	bb *bytebufferpool.ByteBuffer
}

// New acquires a Buffer backed by a pooled array.
func New() *Buffer {
	acquires.Add(1)
	return &Buffer{bb: pool.Get()}
}

// Len returns the current logical length.
func (b *Buffer) Len() int {
	if b.bb == nil {
		return 0
	}
	return len(b.bb.B)
}

// Bytes returns the buffer's current contents. The slice is only valid
// until the next mutating call (Append, Snapshot, Reset, Release).
func (b *Buffer) Bytes() []byte {
	if b.bb == nil {
		return nil
	}
	return b.bb.B
}

// Append grows the buffer by copying p into its writable tail.
func (b *Buffer) Append(p []byte) {
	if b.bb == nil {
		b.bb = pool.Get()
	}
	b.bb.Write(p) //nolint:errcheck // bytebufferpool.Write never errors
}

// Tail returns the writable tail of the backing array, growing it by at
// least n bytes of spare capacity first. CommitWrite must be called with
// however many bytes were actually filled in before the slice is used
// again; this is the safe substitute for writing into an uninitialised
// buffer tail via pointer arithmetic.
func (b *Buffer) Tail(n int) []byte {
	if b.bb == nil {
		b.bb = pool.Get()
	}
	cur := len(b.bb.B)
	if cap(b.bb.B)-cur < n {
		grown := make([]byte, cur, cur+n)
		copy(grown, b.bb.B)
		b.bb.B = grown
	}
	return b.bb.B[cur : cur+n]
}

// CommitWrite advances the logical length by n bytes, which must already
// have been filled into the slice returned by the most recent Tail call.
func (b *Buffer) CommitWrite(n int) {
	b.bb.B = b.bb.B[:len(b.bb.B)+n]
}

// Snapshot takes ownership of the first n bytes as an independent,
// immutable copy, then compacts the remaining bytes to the front of the
// backing array. The returned slice shares no backing array with the
// buffer, satisfying the "a prefix snapshot shares no mutable aliasing
// with the remainder" invariant unconditionally.
func (b *Buffer) Snapshot(n int) []byte {
	if b.bb == nil || n <= 0 {
		return nil
	}
	if n > len(b.bb.B) {
		n = len(b.bb.B)
	}
	out := make([]byte, n)
	copy(out, b.bb.B[:n])

	remaining := len(b.bb.B) - n
	copy(b.bb.B, b.bb.B[n:])
	b.bb.B = b.bb.B[:remaining]

	return out
}

// Truncate shortens the logical length to n, discarding any bytes beyond it
// without copying or releasing the backing array. Used by a consumer that
// has located a delimiter inside the buffer and needs to drop trailing bytes
// that belong to whatever comes next (e.g. a pipelined request).
func (b *Buffer) Truncate(n int) {
	if b.bb == nil {
		return
	}
	if n < 0 {
		n = 0
	}
	if n > len(b.bb.B) {
		n = len(b.bb.B)
	}
	b.bb.B = b.bb.B[:n]
}

// Reset clears the logical length. If the buffer has grown very large it is
// released back to the pool and a fresh one acquired on next use, so a
// single oversized request doesn't pin a large backing array forever.
func (b *Buffer) Reset() {
	if b.bb == nil {
		return
	}
	if cap(b.bb.B) > maxRetainedCapacity {
		discards.Add(1)
		pool.Put(b.bb)
		b.bb = nil
		return
	}
	b.bb.Reset()
}

// Release returns the backing array to the pool. The Buffer must not be
// used again afterward without calling New.
func (b *Buffer) Release() {
	if b.bb == nil {
		return
	}
	releases.Add(1)
	pool.Put(b.bb)
	b.bb = nil
}

// maxRetainedCapacity bounds how large a backing array Reset will keep
// around rather than returning to the pool; matches the pool's own
// large-buffer discard behaviour (see bytebufferpool's calibration window).
const maxRetainedCapacity = 64 << 10
