package health

import (
	"io"
	"log"
	"net/http"

	"github.com/icecave/httpsredirect/name"
)

const (
	requestHost = "localhost"
	requestPath = "/.httpsredirect/health-check"
)

// HTTPHandler is a frontend.ConditionalHandler that responds to health-check
// requests. It accepts health-checks on both secure and insecure connections,
// so that it is not redirected.
type HTTPHandler struct {
	Checker Checker
	Logger  *log.Logger
}

// CanHandle returns true if r is a health-check request.
func (handler *HTTPHandler) CanHandle(r *http.Request) bool {
	serverName, _ := name.FromHTTP(r)
	return serverName.Unicode == requestHost && r.URL.Path == requestPath
}

func (handler *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	status := Status{
		true,
		"The server is accepting requests, but no health-checker is configured.",
	}

	if handler.Checker != nil {
		status = handler.Checker.Check(r.Context())
	}

	if status.IsHealthy {
		w.WriteHeader(http.StatusOK)
	} else {
		if handler.Logger != nil {
			handler.Logger.Println(status)
		}

		w.WriteHeader(http.StatusServiceUnavailable)
	}

	io.WriteString(w, status.Message)
}
