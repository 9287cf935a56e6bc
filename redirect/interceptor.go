package redirect

import (
	"context"
	"net/http"
)

// Transform builds interceptors that share a single rewrite policy.
type Transform struct {
	policy Policy
}

// New returns a transform whose interceptors redirect to the secure URL
// without rewriting it.
func New() Transform {
	return Transform{}
}

// WithReplacements returns a transform whose interceptors rewrite the secure
// URL using the given replacements, in order.
func WithReplacements(replacements []Replacement) Transform {
	return Transform{NewPolicy(replacements...)}
}

// Policy returns the rewrite policy used by the transform.
func (t Transform) Policy() Policy {
	return t.policy
}

// Wrap returns an interceptor that sits in front of inner.
func (t Transform) Wrap(inner Processor) *Interceptor {
	return &Interceptor{
		inner:  inner,
		policy: t.policy,
	}
}

// Interceptor is a Processor that forwards requests made over a secure
// connection to an inner processor, and answers all other requests with a
// permanent redirect to the equivalent HTTPS URL.
//
// It holds no per-request state and is safe for concurrent use provided the
// inner processor is.
type Interceptor struct {
	inner  Processor
	policy Policy
}

// Ready reports the readiness of the inner processor.
func (in *Interceptor) Ready(ctx context.Context) error {
	return in.inner.Ready(ctx)
}

// Serve forwards r to the inner processor if it arrived over a secure
// connection, otherwise it redirects the client to the secure URL.
//
// The inner processor's readiness is always awaited first, even though an
// insecure request is never forwarded to it.
func (in *Interceptor) Serve(w http.ResponseWriter, r *Request) error {
	if err := in.inner.Ready(r.Context()); err != nil {
		return err
	}

	if r.Connection.IsSecure() {
		return in.inner.Serve(w, r)
	}

	w.Header().Set("Location", in.Target(r))
	w.WriteHeader(http.StatusMovedPermanently)

	return nil
}

// Target returns the URL that an insecure request is redirected to.
func (in *Interceptor) Target(r *Request) string {
	return in.policy.Rewrite(
		"https://" + r.Connection.Host + r.Target(),
	)
}
