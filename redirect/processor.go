package redirect

import (
	"context"
	"net/http"
)

// Processor is a stage of the request pipeline.
type Processor interface {
	// Ready blocks until the processor is able to accept another request. A
	// non-nil error means the request must not be served.
	Ready(ctx context.Context) error

	// Serve handles the request, writing the response to w. A non-nil error
	// indicates that the request failed; it is up to the caller to decide how
	// the failure is presented to the client.
	Serve(w http.ResponseWriter, r *Request) error
}

// ProcessorFunc is an adaptor that allows an ordinary function to be used as
// a Processor. It is always ready.
type ProcessorFunc func(http.ResponseWriter, *Request) error

// Ready always returns nil.
func (fn ProcessorFunc) Ready(context.Context) error {
	return nil
}

// Serve calls fn(w, r).
func (fn ProcessorFunc) Serve(w http.ResponseWriter, r *Request) error {
	return fn(w, r)
}
