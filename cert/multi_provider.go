package cert

import (
	"context"
	"crypto/tls"

	"github.com/icecave/httpsredirect/name"
)

// MultiProvider is a provider that consults a list of providers in order.
type MultiProvider struct {
	Providers []Provider
}

// GetCertificate returns the certificate from the first provider that has
// one. An error from any provider stops the search.
func (m *MultiProvider) GetCertificate(ctx context.Context, n name.ServerName) (*tls.Certificate, error) {
	for _, p := range m.Providers {
		certificate, err := p.GetCertificate(ctx, n)
		if certificate != nil || err != nil {
			return certificate, err
		}
	}

	return nil, nil
}
