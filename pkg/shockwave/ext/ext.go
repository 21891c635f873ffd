// Package ext provides FromRequest/IntoResponse-shaped extractors and
// responders for use inside an http11.Handler. The reference design models
// these as polled futures so a body read can suspend without blocking a
// thread; here the connection driver already blocks the handler goroutine
// for the duration of a request, so FromRequest reduces to a synchronous
// function taking the already-available *http11.Request and its Body.
package ext

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shockwave-http/shockwave/pkg/shockwave/http11"
)

// FromRequest extracts a T from an incoming request, synchronously.
type FromRequest[T any] interface {
	FromRequest(ctx context.Context, req *http11.Request) (T, error)
}

// IntoResponse writes a T as the response, synchronously.
type IntoResponse interface {
	IntoResponse(rw *http11.ResponseWriter) error
}

// Json wraps a value extracted from, or to be serialised as, a JSON body.
type Json[T any] struct {
	Value T
}

// jsonExtractor implements FromRequest[Json[T]].
type jsonExtractor[T any] struct{}

// JSON returns a FromRequest extractor for T, requiring the request's
// Content-Type to be application/json.
func JSON[T any]() FromRequest[Json[T]] {
	return jsonExtractor[T]{}
}

var errContentType = fmt.Errorf("ext: Content-Type is not application/json")

// FromRequest reads and decodes the full request body as JSON. It mirrors
// the reference Json<T> extractor's content-type check, but performs the
// body read synchronously via Body.Collect instead of polling a future.
func (jsonExtractor[T]) FromRequest(ctx context.Context, req *http11.Request) (Json[T], error) {
	var out Json[T]

	contentType := req.Header.Get([]byte("Content-Type"))
	if !hasJSONContentType(contentType) {
		return out, errContentType
	}

	body, ok := req.Body.(*http11.Body)
	if !ok || body == nil {
		return out, fmt.Errorf("ext: request has no body to decode")
	}

	data, err := body.Collect(ctx)
	if err != nil {
		return out, fmt.Errorf("ext: reading body: %w", err)
	}

	if err := json.Unmarshal(data, &out.Value); err != nil {
		return out, fmt.Errorf("ext: decoding json: %w", err)
	}
	return out, nil
}

func hasJSONContentType(contentType []byte) bool {
	const want = "application/json"
	if len(contentType) < len(want) {
		return false
	}
	return strings.EqualFold(string(contentType[:len(want)]), want)
}

// IntoResponse serialises Value as a JSON response body.
func (j Json[T]) IntoResponse(rw *http11.ResponseWriter) error {
	data, err := json.Marshal(j.Value)
	if err != nil {
		return rw.WriteError(500, "failed to encode response")
	}
	return rw.WriteJSON(200, data)
}
