package ext

import (
	"fmt"

	"github.com/shockwave-http/shockwave/pkg/shockwave"
	"github.com/shockwave-http/shockwave/pkg/shockwave/http11"
)

var errMissingBearer = fmt.Errorf("ext: missing or malformed Authorization: Bearer header")

const bearerPrefix = "Bearer "

// WithBearerToken extracts the bearer token from the request's
// Authorization header into a zeroed buffer drawn from the secure buffer
// pool, invokes fn with it, and wipes the buffer before returning it to the
// pool regardless of how fn returns. This keeps the raw token bytes out of
// a regular, non-zeroed pool for as short a window as possible.
func WithBearerToken(req *http11.Request, fn func(token []byte) error) error {
	auth := req.Header.Get([]byte("Authorization"))
	if len(auth) <= len(bearerPrefix) || string(auth[:len(bearerPrefix)]) != bearerPrefix {
		return errMissingBearer
	}
	raw := auth[len(bearerPrefix):]

	buf := shockwave.GetSecureBuffer(len(raw))
	defer shockwave.PutSecureBuffer(buf)
	n := copy(buf, raw)

	return fn(buf[:n])
}
