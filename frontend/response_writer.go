package frontend

import (
	"bufio"
	"errors"
	"net"
	"net/http"
)

// ResponseWriter wraps an http.ResponseWriter to record the status code and
// size of the response.
type ResponseWriter struct {
	Inner      http.ResponseWriter
	StatusCode int
	Size       int
	IsHijacked bool
}

// Header forwards to writer.Inner.Header().
func (writer *ResponseWriter) Header() http.Header {
	return writer.Inner.Header()
}

// Write forwards to writer.Inner.Write().
func (writer *ResponseWriter) Write(data []byte) (int, error) {
	if writer.StatusCode == 0 {
		writer.StatusCode = http.StatusOK
	}

	size, err := writer.Inner.Write(data)
	writer.Size += size

	return size, err
}

// WriteHeader forwards to writer.Inner.WriteHeader().
func (writer *ResponseWriter) WriteHeader(statusCode int) {
	if writer.StatusCode == 0 {
		writer.StatusCode = statusCode
	}

	writer.Inner.WriteHeader(statusCode)
}

// HasResponded returns true if the response headers have been written, or
// the connection has been hijacked.
func (writer *ResponseWriter) HasResponded() bool {
	return writer.StatusCode != 0 || writer.IsHijacked
}

// Flush forwards to writer.Inner.Flush() if it implements http.Flusher,
// otherwise it does nothing.
func (writer *ResponseWriter) Flush() {
	if flusher, ok := writer.Inner.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Hijack forwards to writer.Inner.Hijack() if it implements http.Hijacker,
// otherwise it returns an error.
func (writer *ResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := writer.Inner.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("the wrapped response does not implement http.Hijacker")
	}

	conn, rw, err := hijacker.Hijack()
	if err == nil {
		writer.IsHijacked = true
	}

	return conn, rw, err
}
