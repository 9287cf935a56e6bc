package frontend

import (
	"net/http"

	"github.com/icecave/httpsredirect/name"
	"github.com/icecave/httpsredirect/statuspage"
)

// InvalidHostHandler is a ConditionalHandler that rejects requests whose Host
// is not a valid server name, before they can be used to build a redirect.
type InvalidHostHandler struct {
	StatusPage *statuspage.Writer
}

// CanHandle returns true if the request's host is invalid.
func (handler *InvalidHostHandler) CanHandle(r *http.Request) bool {
	_, err := name.FromHTTP(r)
	return err != nil
}

func (handler *InvalidHostHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writer := handler.StatusPage
	if writer == nil {
		writer = &statuspage.Writer{}
	}

	writer.Write(w, r, http.StatusBadRequest)
}
