package cert

import (
	"context"
	"crypto/tls"

	"github.com/icecave/httpsredirect/name"
)

// Provider fetches TLS certificates for incoming HTTPS connections.
type Provider interface {
	// GetCertificate returns the certificate to present for the given server
	// name. A non-nil error indicates an error with the provider itself;
	// otherwise, a nil certificate indicates that the provider has no
	// certificate for the server name.
	GetCertificate(context.Context, name.ServerName) (*tls.Certificate, error)
}
