package ext

import (
	"strings"
	"testing"

	"github.com/shockwave-http/shockwave/pkg/shockwave/http11"
)

func TestWithBearerTokenExtractsToken(t *testing.T) {
	parser := http11.NewParser()
	req, err := parser.Parse(strings.NewReader(
		"GET /secure HTTP/1.1\r\nAuthorization: Bearer abc123\r\n\r\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	var got string
	err = WithBearerToken(req, func(token []byte) error {
		got = string(token)
		return nil
	})
	if err != nil {
		t.Fatalf("WithBearerToken failed: %v", err)
	}
	if got != "abc123" {
		t.Errorf("token = %q, want %q", got, "abc123")
	}
}

func TestWithBearerTokenRejectsMissingHeader(t *testing.T) {
	parser := http11.NewParser()
	req, err := parser.Parse(strings.NewReader("GET /secure HTTP/1.1\r\n\r\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	err = WithBearerToken(req, func(token []byte) error {
		t.Error("fn should not be called without an Authorization header")
		return nil
	})
	if err == nil {
		t.Error("expected an error for a missing Authorization header")
	}
}

func TestWithBearerTokenRejectsNonBearerScheme(t *testing.T) {
	parser := http11.NewParser()
	req, err := parser.Parse(strings.NewReader(
		"GET /secure HTTP/1.1\r\nAuthorization: Basic dXNlcjpwYXNz\r\n\r\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	err = WithBearerToken(req, func(token []byte) error {
		t.Error("fn should not be called for a Basic auth header")
		return nil
	})
	if err == nil {
		t.Error("expected an error for a non-Bearer scheme")
	}
}
