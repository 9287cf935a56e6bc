package cert

import (
	"crypto/tls"
	"crypto/x509"

	"github.com/icecave/httpsredirect/name"
)

// parseKeyPair parses a PEM encoded certificate chain and its private key,
// and checks that the leaf certificate is valid for n. A certificate for the
// wrong name produces an x509.HostnameError.
func parseKeyPair(n name.ServerName, certPEM, keyPEM []byte) (*tls.Certificate, error) {
	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, err
	}

	cert.Leaf, err = x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return nil, err
	}

	if err := cert.Leaf.VerifyHostname(n.Punycode); err != nil {
		return nil, err
	}

	return &cert, nil
}
