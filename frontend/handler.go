package frontend

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/icecave/httpsredirect/connection"
	"github.com/icecave/httpsredirect/redirect"
	"github.com/icecave/httpsredirect/statuspage"
)

// Handler is the http.Handler that feeds requests from the HTTP server into a
// request processor.
type Handler struct {
	// ConditionalHandlers are consulted in order before the processor. The
	// first handler that can handle the request serves it.
	ConditionalHandlers []ConditionalHandler

	// Resolver determines the connection metadata of each request. If it is
	// nil, proxy headers are ignored.
	Resolver *connection.Resolver

	// Processor is the request pipeline, typically a redirect.Interceptor.
	Processor redirect.Processor

	// StatusPage renders errors returned by the processor.
	StatusPage *statuspage.Writer

	// Logger is the destination for request logs. If it is nil, requests are
	// not logged.
	Logger *log.Logger
}

func (handler *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	startedAt := time.Now()
	writer := &ResponseWriter{Inner: w}

	for _, c := range handler.ConditionalHandlers {
		if c.CanHandle(r) {
			c.ServeHTTP(writer, r)
			handler.logRequest(redirect.NewRequest(r), writer, startedAt, nil)
			return
		}
	}

	var request *redirect.Request
	if handler.Resolver == nil {
		request = redirect.NewRequest(r)
	} else {
		request = handler.Resolver.Request(r)
	}

	err := handler.Processor.Serve(writer, request)
	if err != nil && !writer.HasResponded() {
		handler.statusPage().WriteError(writer, r, err)
	}

	handler.logRequest(request, writer, startedAt, err)
}

func (handler *Handler) statusPage() *statuspage.Writer {
	if handler.StatusPage == nil {
		return &statuspage.Writer{}
	}

	return handler.StatusPage
}

// logRequest writes a single line describing the request. The fields are:
//
// - remote address
// - frontend scheme + host
// - http status code
// - response size
// - total time
// - request information (method, URI and protocol)
// - error (optional)
//
// If a field value is unknown, a hyphen is used in its place.
func (handler *Handler) logRequest(
	request *redirect.Request,
	writer *ResponseWriter,
	startedAt time.Time,
	err error,
) {
	if handler.Logger == nil {
		return
	}

	statusCode := "-"
	if writer.IsHijacked {
		statusCode = strconv.Itoa(http.StatusSwitchingProtocols)
	} else if writer.StatusCode != 0 {
		statusCode = strconv.Itoa(writer.StatusCode)
	}

	info := ""
	if err != nil {
		info = fmt.Sprintf(" (%s)", err)
	}

	handler.Logger.Printf(
		"http: %s %s://%s %s %s %s \"%s %s %s\"%s",
		request.RemoteAddr,
		request.Connection.Scheme,
		request.Connection.Host,
		statusCode,
		humanize.Bytes(uint64(writer.Size)),
		time.Since(startedAt),
		request.Method,
		request.Target(),
		request.Proto,
		info,
	)
}
