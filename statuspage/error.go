package statuspage

import "net/http"

// Error wraps another error to include the HTTP status code that should be
// sent as a result of it.
type Error struct {
	Inner      error
	StatusCode int
	Message    string
}

func (err Error) Error() string {
	if err.Inner != nil {
		return err.Inner.Error()
	}

	return http.StatusText(err.StatusCode)
}

// Unwrap returns the inner error.
func (err Error) Unwrap() error {
	return err.Inner
}
