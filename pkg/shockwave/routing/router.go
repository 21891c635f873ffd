package routing

import "github.com/shockwave-http/shockwave/pkg/shockwave/http11"

// Route is a single handler bound to a Matcher.
type Route struct {
	matcher Matcher
	handler http11.Handler
}

// Router is an ordered chain of routes tried in registration order,
// falling through to a NotFound handler when nothing matches.
type Router struct {
	routes   []Route
	fallback http11.Handler
}

// New creates an empty Router. Unmatched requests get a 404.
func New() *Router {
	return &Router{fallback: NotFoundHandler}
}

// WithFallback creates an empty Router with a custom fallback handler
// instead of the default 404.
func WithFallback(fallback http11.Handler) *Router {
	return &Router{fallback: fallback}
}

// Handle registers a handler for the given matcher. Routes are tried in
// the order they were registered; the first Matcher that accepts the
// request wins.
func (r *Router) Handle(matcher Matcher, handler http11.Handler) *Router {
	r.routes = append(r.routes, Route{matcher: matcher, handler: handler})
	return r
}

// Get registers a GET route for path.
func (r *Router) Get(path string, handler http11.Handler) *Router {
	return r.Handle(MatchMethodAndPath(http11.MethodGET, path), handler)
}

// Post registers a POST route for path.
func (r *Router) Post(path string, handler http11.Handler) *Router {
	return r.Handle(MatchMethodAndPath(http11.MethodPOST, path), handler)
}

// Put registers a PUT route for path.
func (r *Router) Put(path string, handler http11.Handler) *Router {
	return r.Handle(MatchMethodAndPath(http11.MethodPUT, path), handler)
}

// Patch registers a PATCH route for path.
func (r *Router) Patch(path string, handler http11.Handler) *Router {
	return r.Handle(MatchMethodAndPath(http11.MethodPATCH, path), handler)
}

// Delete registers a DELETE route for path.
func (r *Router) Delete(path string, handler http11.Handler) *Router {
	return r.Handle(MatchMethodAndPath(http11.MethodDELETE, path), handler)
}

// ServeHTTP implements http11.Handler: the first registered route whose
// Matcher accepts the request handles it; otherwise the fallback runs. A
// path that matches an entry by path alone but not by method falls all the
// way through to the fallback rather than a dedicated 405, matching the
// simple either/or branch structure this is grounded on.
func (r *Router) ServeHTTP(req *http11.Request, rw *http11.ResponseWriter) error {
	for _, route := range r.routes {
		if route.matcher.Matches(req) {
			return route.handler(req, rw)
		}
	}
	return r.fallback(req, rw)
}

// NotFoundHandler writes a plain 404 response.
func NotFoundHandler(req *http11.Request, rw *http11.ResponseWriter) error {
	return rw.WriteError(404, "404 Not Found")
}
