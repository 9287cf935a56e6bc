package cert

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/icecave/httpsredirect/name"
)

// DefaultTimeout specifies the duration to allow for fetching a certificate if
// no other timeout is specified.
const DefaultTimeout = 5 * time.Second

// ProviderAdaptor wraps a Provider to present an interface suitable for use as
// the tls.Config "GetCertificate" callback.
//
// When the provider has no certificate for the requested server name (or the
// client did not send one) the adaptor returns nil, which causes the TLS
// server to present the first certificate in tls.Config.Certificates.
type ProviderAdaptor struct {
	Provider Provider

	// Timeout is the maximum time allowed for a certificate request to complete.
	// If the timeout is zero, the value of DefaultTimeout is used.
	Timeout time.Duration
}

// GetCertificate forwards certificate requests to the provider.
func (adaptor *ProviderAdaptor) GetCertificate(
	info *tls.ClientHelloInfo,
) (*tls.Certificate, error) {
	if info.ServerName == "" {
		return nil, nil
	}

	serverName, err := name.TryParse(info.ServerName)
	if err != nil {
		return nil, nil
	}

	timeout := adaptor.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return adaptor.Provider.GetCertificate(ctx, serverName)
}
