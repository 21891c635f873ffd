package compress

import (
	"strings"
	"testing"

	"github.com/shockwave-http/shockwave/pkg/shockwave/http11"
)

func TestNegotiatePrefersBrotli(t *testing.T) {
	if got := Negotiate("gzip, br, deflate"); got != Brotli {
		t.Errorf("Negotiate = %q, want %q", got, Brotli)
	}
}

func TestNegotiateFallsBackToGzip(t *testing.T) {
	if got := Negotiate("deflate, gzip"); got != Gzip {
		t.Errorf("Negotiate = %q, want %q", got, Gzip)
	}
}

func TestNegotiateIdentityOnUnsupportedHeader(t *testing.T) {
	if got := Negotiate("deflate"); got != Identity {
		t.Errorf("Negotiate = %q, want %q", got, Identity)
	}
	if got := Negotiate(""); got != Identity {
		t.Errorf("Negotiate = %q, want %q", got, Identity)
	}
}

func TestApplyCompressesLargeBody(t *testing.T) {
	var out strings.Builder
	rw := http11.NewResponseWriter(&out)

	body := strings.Repeat("shockwave ", 100)
	rw.Write([]byte(body))

	if err := Apply(rw, Gzip); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if got := string(rw.Header().Get([]byte("Content-Encoding"))); got != "gzip" {
		t.Errorf("Content-Encoding = %q, want %q", got, "gzip")
	}
	if len(rw.Body()) >= len(body) {
		t.Errorf("compressed body (%d bytes) not smaller than original (%d bytes)", len(rw.Body()), len(body))
	}
}

func TestApplySkipsSmallBody(t *testing.T) {
	var out strings.Builder
	rw := http11.NewResponseWriter(&out)
	rw.Write([]byte("tiny"))

	if err := Apply(rw, Gzip); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if got := string(rw.Header().Get([]byte("Content-Encoding"))); got != "" {
		t.Errorf("Content-Encoding = %q, want empty for a small body", got)
	}
}

func TestApplyIsNoOpForIdentity(t *testing.T) {
	var out strings.Builder
	rw := http11.NewResponseWriter(&out)
	body := strings.Repeat("x", 1000)
	rw.Write([]byte(body))

	if err := Apply(rw, Identity); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if string(rw.Body()) != body {
		t.Error("Apply mutated the body for Identity encoding")
	}
}
