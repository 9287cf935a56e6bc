package frontend

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"sync"
	"time"

	"github.com/icecave/httpsredirect/redirect"
	"github.com/icecave/httpsredirect/statuspage"
	"golang.org/x/time/rate"
)

// HandlerProcessor adapts an ordinary http.Handler into a redirect.Processor.
// It is always ready and never fails.
type HandlerProcessor struct {
	Handler http.Handler
}

// Ready always returns nil.
func (p *HandlerProcessor) Ready(context.Context) error {
	return nil
}

// Serve forwards the request to the handler.
func (p *HandlerProcessor) Serve(w http.ResponseWriter, r *redirect.Request) error {
	p.Handler.ServeHTTP(w, r.Request)
	return nil
}

// ProxyProcessor is a redirect.Processor that forwards requests to an
// upstream HTTP server.
type ProxyProcessor struct {
	// Target is the base URL of the upstream server.
	Target *url.URL

	// Transport is used to make upstream requests. If it is nil,
	// http.DefaultTransport is used.
	Transport http.RoundTripper

	// FlushInterval is passed to httputil.ReverseProxy.
	FlushInterval time.Duration

	once  sync.Once
	proxy *httputil.ReverseProxy
}

// proxyTransaction carries per-request state between Serve and the shared
// reverse proxy's callbacks.
type proxyTransaction struct {
	Connection redirect.ConnectionInfo
	Err        error
}

type proxyTransactionKey struct{}

// Ready always returns nil.
func (p *ProxyProcessor) Ready(context.Context) error {
	return nil
}

// Serve forwards the request to the upstream server. If the upstream server
// can not be reached a statuspage.Error with a 502 status is returned.
func (p *ProxyProcessor) Serve(w http.ResponseWriter, r *redirect.Request) error {
	p.once.Do(p.init)

	tx := &proxyTransaction{Connection: r.Connection}
	ctx := context.WithValue(r.Context(), proxyTransactionKey{}, tx)

	p.proxy.ServeHTTP(w, r.Request.WithContext(ctx))

	if tx.Err != nil {
		return statuspage.Error{
			Inner:      fmt.Errorf("upstream request to %s failed: %w", p.Target.Host, tx.Err),
			StatusCode: http.StatusBadGateway,
		}
	}

	return nil
}

func (p *ProxyProcessor) init() {
	p.proxy = httputil.NewSingleHostReverseProxy(p.Target)
	p.proxy.Transport = p.Transport
	p.proxy.FlushInterval = p.FlushInterval

	director := p.proxy.Director
	p.proxy.Director = func(out *http.Request) {
		director(out)

		if tx, ok := out.Context().Value(proxyTransactionKey{}).(*proxyTransaction); ok {
			out.Header.Set("X-Forwarded-Proto", tx.Connection.Scheme)
			out.Header.Set("X-Forwarded-Host", tx.Connection.Host)
		}
	}

	p.proxy.ErrorHandler = func(_ http.ResponseWriter, r *http.Request, err error) {
		if tx, ok := r.Context().Value(proxyTransactionKey{}).(*proxyTransaction); ok {
			tx.Err = err
		}
	}
}

// RateLimitedProcessor is a redirect.Processor that only becomes ready when
// its rate limiter allows another request.
type RateLimitedProcessor struct {
	Inner   redirect.Processor
	Limiter *rate.Limiter
}

// Ready waits for the limiter, then for the inner processor. If the limiter
// can not admit the request before ctx is done a statuspage.Error with a 503
// status is returned.
func (p *RateLimitedProcessor) Ready(ctx context.Context) error {
	if err := p.Limiter.Wait(ctx); err != nil {
		return statuspage.Error{
			Inner:      err,
			StatusCode: http.StatusServiceUnavailable,
		}
	}

	return p.Inner.Ready(ctx)
}

// Serve forwards the request to the inner processor.
func (p *RateLimitedProcessor) Serve(w http.ResponseWriter, r *redirect.Request) error {
	return p.Inner.Serve(w, r)
}

// HSTSProcessor is a redirect.Processor that adds a Strict-Transport-Security
// header to responses sent over secure connections.
type HSTSProcessor struct {
	Inner             redirect.Processor
	MaxAge            time.Duration
	IncludeSubdomains bool
}

// Ready returns the readiness of the inner processor.
func (p *HSTSProcessor) Ready(ctx context.Context) error {
	return p.Inner.Ready(ctx)
}

// Serve adds the header, then forwards the request to the inner processor.
func (p *HSTSProcessor) Serve(w http.ResponseWriter, r *redirect.Request) error {
	if p.MaxAge > 0 && r.Connection.IsSecure() {
		value := fmt.Sprintf("max-age=%d", int64(p.MaxAge/time.Second))
		if p.IncludeSubdomains {
			value += "; includeSubDomains"
		}
		w.Header().Set("Strict-Transport-Security", value)
	}

	return p.Inner.Serve(w, r)
}
