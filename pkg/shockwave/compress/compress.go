// Package compress negotiates and applies response body compression. It
// sits between a handler finishing its Write calls and the ResponseWriter's
// Flush: the response body is always buffered in full first (streaming
// compression is out of scope, matching the engine's buffered-body model),
// then compressed in place once, with Content-Encoding and Content-Length
// set from the compressed result.
package compress

import (
	"bytes"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"

	"github.com/shockwave-http/shockwave/pkg/shockwave/http11"
)

// Encoding identifies a supported content-coding.
type Encoding string

const (
	Identity Encoding = ""
	Gzip     Encoding = "gzip"
	Brotli   Encoding = "br"
)

var gzipWriterPool = sync.Pool{
	New: func() interface{} {
		w, _ := gzip.NewWriterLevel(nil, gzip.DefaultCompression)
		return w
	},
}

var brotliWriterPool = sync.Pool{
	New: func() interface{} {
		return brotli.NewWriterLevel(nil, brotli.DefaultCompression)
	},
}

// Negotiate picks the best encoding shockwave supports out of the client's
// Accept-Encoding header. Brotli is preferred over gzip when both are
// acceptable, matching the stronger-first order used across the pack's
// compression-aware HTTP stacks. An empty or unsatisfiable header yields
// Identity, meaning no compression is applied.
func Negotiate(acceptEncoding string) Encoding {
	if acceptEncoding == "" {
		return Identity
	}
	hasBrotli, hasGzip := false, false
	for _, tok := range strings.Split(acceptEncoding, ",") {
		name := strings.TrimSpace(strings.SplitN(tok, ";", 2)[0])
		switch name {
		case "br":
			hasBrotli = true
		case "gzip", "*":
			hasGzip = true
		}
	}
	switch {
	case hasBrotli:
		return Brotli
	case hasGzip:
		return Gzip
	default:
		return Identity
	}
}

// minCompressLength is the smallest body size worth paying the compression
// overhead for; smaller bodies are left uncompressed.
const minCompressLength = 256

// Apply compresses rw's buffered body with enc and rewrites its
// Content-Encoding header, replacing the body in place. It is a no-op for
// Identity or bodies shorter than minCompressLength. Call it after the
// handler has finished writing the body and before Flush.
func Apply(rw *http11.ResponseWriter, enc Encoding) error {
	body := rw.Body()
	if enc == Identity || len(body) < minCompressLength {
		return nil
	}

	compressed, err := compress(body, enc)
	if err != nil {
		return err
	}

	rw.SetBody(compressed)
	rw.Header().Set([]byte("Content-Encoding"), []byte(enc))
	return nil
}

// Middleware wraps h so its response body is compressed according to the
// request's Accept-Encoding header once h returns. h must not call Flush
// itself; the connection driver flushes after the handler returns, so the
// compressed body and Content-Encoding header are still in place when it does.
func Middleware(h http11.Handler) http11.Handler {
	return func(req *http11.Request, rw *http11.ResponseWriter) error {
		if err := h(req, rw); err != nil {
			return err
		}
		enc := Negotiate(req.Header.GetString([]byte("Accept-Encoding")))
		return Apply(rw, enc)
	}
}

func compress(body []byte, enc Encoding) ([]byte, error) {
	var buf bytes.Buffer

	switch enc {
	case Gzip:
		w := gzipWriterPool.Get().(*gzip.Writer)
		defer gzipWriterPool.Put(w)
		w.Reset(&buf)
		if _, err := w.Write(body); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	case Brotli:
		w := brotliWriterPool.Get().(*brotli.Writer)
		defer brotliWriterPool.Put(w)
		w.Reset(&buf)
		if _, err := w.Write(body); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	default:
		return body, nil
	}

	return buf.Bytes(), nil
}
