package transport

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rhuss/buchung/pkg/api"
)

// RouteKey identifies a route by method and normalized path.
type RouteKey struct {
	Method string
	Path   string
}

// collapseRule folds a parameterized path into a flat route key. A path
// matching prefix followed by exactly one non-empty segment is rewritten
// to key, with the segment stored under param in the request's PathParams.
type collapseRule struct {
	prefix string
	key    string
	param  string
}

// Router dispatches requests by exact (method, path) lookup in a flat
// route table. Register and Collapse must be called before the first
// Dispatch; the route table is read-only afterwards.
type Router struct {
	routes     map[RouteKey]Handler
	collapses  []collapseRule
	middleware []Middleware
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{
		routes: make(map[RouteKey]Handler),
	}
}

// Register binds a handler to a method and normalized path.
func (r *Router) Register(method, path string, h Handler) {
	r.routes[RouteKey{Method: method, Path: path}] = h
}

// Collapse adds a path-collapsing rule: requests whose path is prefix plus
// a single segment dispatch under key, with the segment exposed as the
// named path parameter. Example: Collapse("/tables/", "/tables_id",
// "tableId") routes GET /tables/42 to the "/tables_id" handler with
// PathParams["tableId"] = "42".
func (r *Router) Collapse(prefix, key, param string) {
	r.collapses = append(r.collapses, collapseRule{prefix: prefix, key: key, param: param})
}

// Use appends middleware applied around every dispatched handler, first
// middleware outermost.
func (r *Router) Use(mw ...Middleware) {
	r.middleware = append(r.middleware, mw...)
}

// Dispatch routes a request and always produces a renderable response:
// handler errors become error envelopes, and an unmatched (method, path)
// pair becomes the bad-route envelope naming both.
func (r *Router) Dispatch(ctx context.Context, req *Request) *Response {
	path := normalizePath(req.Path)
	key := RouteKey{Method: req.Method, Path: path}

	for _, rule := range r.collapses {
		rest, ok := strings.CutPrefix(path, rule.prefix)
		if !ok || rest == "" || strings.Contains(rest, "/") {
			continue
		}
		key.Path = rule.key
		if req.PathParams == nil {
			req.PathParams = make(map[string]string, 1)
		}
		req.PathParams[rule.param] = rest
		break
	}

	handler, ok := r.routes[key]
	if !ok {
		env := api.NewBadRouteEnvelope(req.Method, req.Path)
		return &Response{StatusCode: env.StatusCode, Body: env}
	}

	resp, err := Chain(r.middleware...)(handler).Handle(ctx, req)
	if err != nil {
		return errorResponse(err)
	}
	return resp
}

// normalizePath strips a trailing slash so /tables/ and /tables share a
// route. The root path stays untouched.
func normalizePath(path string) string {
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	if path == "" {
		path = "/"
	}
	return path
}

// errorResponse maps a handler error to its envelope. Structured errors
// keep their message; anything else is an internal error and the detail
// stays out of the response body.
func errorResponse(err error) *Response {
	status := http.StatusBadRequest

	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		if apiErr.Kind == api.ErrorKindNotFound {
			status = http.StatusNotFound
		}
		env := api.NewErrorEnvelope(status, apiErr.Message)
		return &Response{StatusCode: env.StatusCode, Body: env}
	}

	env := api.NewErrorEnvelope(http.StatusInternalServerError, "Internal server error")
	return &Response{StatusCode: env.StatusCode, Body: env}
}
