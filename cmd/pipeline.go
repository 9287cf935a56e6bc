package cmd

import (
	"log"
	"net/url"

	"github.com/icecave/httpsredirect/connection"
	"github.com/icecave/httpsredirect/frontend"
	"github.com/icecave/httpsredirect/health"
	"github.com/icecave/httpsredirect/redirect"
	"github.com/icecave/httpsredirect/statuspage"
	"golang.org/x/time/rate"
)

// Pipeline is the chain of processors that requests pass through:
//
//	Interceptor → HSTSProcessor → RateLimitedProcessor → Upstream
type Pipeline struct {
	// Interceptor is the entry point for every request.
	Interceptor *redirect.Interceptor

	// Upstream forwards requests to the upstream server. It sits beneath the
	// rate limiter, so probing its readiness does not use up request budget.
	Upstream redirect.Processor
}

// NewPipeline returns the pipeline described by config, rewriting redirect
// targets with the given replacements.
func NewPipeline(config *Config, replacements []redirect.Replacement) (*Pipeline, error) {
	target, err := url.Parse(config.UpstreamURL)
	if err != nil {
		return nil, err
	}

	upstream := &frontend.ProxyProcessor{
		Target: target,
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if config.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), config.RateBurst)
	}

	return &Pipeline{
		Interceptor: redirect.WithReplacements(replacements).Wrap(
			&frontend.HSTSProcessor{
				Inner: &frontend.RateLimitedProcessor{
					Inner:   upstream,
					Limiter: limiter,
				},
				MaxAge: config.HSTSMaxAge,
			},
		),
		Upstream: upstream,
	}, nil
}

// NewHandler returns the HTTP handler that serves p, answering health checks
// before requests reach the pipeline.
func NewHandler(config *Config, p *Pipeline, logger *log.Logger) (*frontend.Handler, error) {
	trustedProxies, err := connection.ParseNetworks(config.TrustedProxies)
	if err != nil {
		return nil, err
	}

	statusPage := &statuspage.Writer{}

	conditionalHandlers := []frontend.ConditionalHandler{
		&health.HTTPHandler{
			Checker: &health.ReadinessChecker{
				Processor: p.Upstream,
				Timeout:   config.CheckTimeout,
			},
			Logger: logger,
		},
	}

	if config.ValidateHost {
		conditionalHandlers = append(
			conditionalHandlers,
			&frontend.InvalidHostHandler{
				StatusPage: statusPage,
			},
		)
	}

	return &frontend.Handler{
		ConditionalHandlers: conditionalHandlers,
		Resolver: &connection.Resolver{
			TrustedProxies: trustedProxies,
		},
		Processor:  p.Interceptor,
		StatusPage: statusPage,
		Logger:     logger,
	}, nil
}
