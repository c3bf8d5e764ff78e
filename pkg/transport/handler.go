package transport

import "context"

// Request is a protocol-independent request as seen by handlers: the
// method and path that selected the route, any parameters extracted during
// path collapsing, and the raw body.
type Request struct {
	Method string
	Path   string

	// PathParams holds values extracted from collapsed path segments,
	// e.g. "tableId" for /tables/{tableId}.
	PathParams map[string]string

	Body []byte
}

// Response is the handler result. Body is marshaled to JSON by the
// protocol adapter.
type Response struct {
	StatusCode int
	Body       any
}

// Handler processes a dispatched request. Returning an error delegates
// rendering to the dispatcher, which maps it to a status code and the
// uniform error envelope.
type Handler interface {
	Handle(ctx context.Context, req *Request) (*Response, error)
}

// HandlerFunc is an adapter that allows using an ordinary function as a
// Handler.
type HandlerFunc func(ctx context.Context, req *Request) (*Response, error)

// Handle calls f(ctx, req).
func (f HandlerFunc) Handle(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// OK builds a 200 response with the given body.
func OK(body any) *Response {
	return &Response{StatusCode: 200, Body: body}
}
