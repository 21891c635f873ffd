package ext

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/shockwave-http/shockwave/pkg/shockwave/http11"
)

type user struct {
	Name string `json:"name"`
}

func TestJSONFromRequestDecodesBody(t *testing.T) {
	body := `{"name":"Alice"}`
	raw := "POST /users HTTP/1.1\r\n" +
		"Content-Type: application/json\r\n" +
		"Content-Length: " + strconv.Itoa(len(body)) + "\r\n" +
		"\r\n" + body

	parser := http11.NewParser()
	req, err := parser.Parse(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	extractor := JSON[user]()
	got, err := extractor.FromRequest(context.Background(), req)
	if err != nil {
		t.Fatalf("FromRequest failed: %v", err)
	}
	if got.Value.Name != "Alice" {
		t.Errorf("Name = %q, want %q", got.Value.Name, "Alice")
	}
}

func TestJSONFromRequestRejectsWrongContentType(t *testing.T) {
	body := `{"name":"Alice"}`
	raw := "POST /users HTTP/1.1\r\n" +
		"Content-Type: text/plain\r\n" +
		"Content-Length: " + strconv.Itoa(len(body)) + "\r\n" +
		"\r\n" + body

	parser := http11.NewParser()
	req, err := parser.Parse(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	extractor := JSON[user]()
	if _, err := extractor.FromRequest(context.Background(), req); err == nil {
		t.Error("expected an error for a non-JSON Content-Type")
	}
}

func TestJsonIntoResponseWritesBody(t *testing.T) {
	var buf strings.Builder
	rw := http11.NewResponseWriter(&buf)

	j := Json[user]{Value: user{Name: "Bob"}}
	if err := j.IntoResponse(rw); err != nil {
		t.Fatalf("IntoResponse failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"name":"Bob"`) {
		t.Errorf("output missing encoded body: %q", out)
	}
}
