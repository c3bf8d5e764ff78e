package transport

import (
	"context"
	"log/slog"
)

// Recovery returns middleware that catches panics in the handler and
// converts them to internal server errors. The server continues to accept
// new requests after a panic is recovered.
func Recovery(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, req *Request) (resp *Response, retErr error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("handler panicked",
						"method", req.Method,
						"path", req.Path,
						"panic", r)
					resp = nil
					retErr = errInternal
				}
			}()
			return next.Handle(ctx, req)
		})
	}
}

// errInternal marks a recovered panic. The dispatcher renders it as a 500
// envelope without leaking the panic value.
var errInternal = internalError{}

type internalError struct{}

func (internalError) Error() string { return "internal server error" }
