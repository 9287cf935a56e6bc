package health

import (
	"context"
	"time"

	"github.com/icecave/httpsredirect/redirect"
)

// Checker is an interface for querying the health of the server.
type Checker interface {
	// Check returns the health-check status.
	Check(ctx context.Context) Status
}

// DefaultReadinessTimeout is the amount of time a ReadinessChecker waits for
// the processor to become ready if no timeout is configured.
const DefaultReadinessTimeout = 500 * time.Millisecond

// ReadinessChecker is a Checker that reports whether a request processor is
// able to accept work.
type ReadinessChecker struct {
	Processor redirect.Processor
	Timeout   time.Duration
}

// Check returns a healthy status if the processor becomes ready within the
// timeout.
func (checker *ReadinessChecker) Check(ctx context.Context) Status {
	timeout := checker.Timeout
	if timeout == 0 {
		timeout = DefaultReadinessTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := checker.Processor.Ready(ctx); err != nil {
		return Status{false, "The server is not ready to accept requests: " + err.Error()}
	}

	return Status{true, "The server is accepting requests."}
}
