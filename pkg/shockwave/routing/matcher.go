// Package routing implements a small request router on top of http11: a
// method/path predicate (Matcher), a handler bound to one Matcher (Route),
// and a builder (Router) that tries its routes in order and falls through
// to a fallback handler when none matches.
package routing

import "github.com/shockwave-http/shockwave/pkg/shockwave/http11"

// Matcher is a partial match against an incoming request: each set
// predicate (path, method) must accept for the whole Matcher to accept. A
// predicate left unset always accepts.
type Matcher struct {
	path      string
	hasPath   bool
	method    uint8
	hasMethod bool
}

// MatchMethod returns a Matcher that only checks the request method.
func MatchMethod(methodID uint8) Matcher {
	return Matcher{method: methodID, hasMethod: true}
}

// MatchPath returns a Matcher that only checks the request path.
func MatchPath(path string) Matcher {
	return Matcher{path: path, hasPath: true}
}

// MatchMethodAndPath returns a Matcher that checks both method and path.
func MatchMethodAndPath(methodID uint8, path string) Matcher {
	return Matcher{method: methodID, hasMethod: true, path: path, hasPath: true}
}

// Matches reports whether req satisfies every predicate the Matcher has
// set. A Matcher with no predicates set matches everything.
//
// This is the inverted form of the reference matcher: there, a path
// predicate rejected the request when the path DID equal the expected
// value, which made every configured route refuse its own traffic. Here a
// predicate rejects only when it is set and does NOT hold, so a route
// actually matches its own path and method.
func (m Matcher) Matches(req *http11.Request) bool {
	if m.hasPath && req.Path() != m.path {
		return false
	}
	if m.hasMethod && req.MethodID != m.method {
		return false
	}
	return true
}
