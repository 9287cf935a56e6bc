package cert

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path"
	"strings"
	"time"

	"github.com/icecave/httpsredirect/name"
)

// FileProvider is a certificate provider that reads PEM encoded certificate
// and key pairs named after the server name from a directory.
//
// For "www.example.com" the candidates are, in order, "www.example.com",
// "_.example.com", "example.com", "_.com" and "com", each with a ".crt" and
// ".key" file. The first candidate whose certificate is valid for the server
// name is used.
type FileProvider struct {
	BasePath string

	// CacheAge is how long a certificate is served from memory before the
	// files are read again. If it is zero, certificates are read once.
	CacheAge time.Duration

	Logger *log.Logger

	cache cache
}

// GetCertificate returns the certificate for the given server name, or nil if
// no candidate file holds one.
func (p *FileProvider) GetCertificate(_ context.Context, n name.ServerName) (*tls.Certificate, error) {
	if item, ok := p.cache.Get(n); ok && !item.Expired(p.CacheAge) {
		return item.Certificate, nil
	}

	for _, candidate := range candidateNames(n) {
		cert, err := p.load(n, candidate)
		if err != nil {
			return nil, err
		}

		if cert != nil {
			p.cache.Put(n, cert)
			return cert, nil
		}
	}

	return nil, nil
}

// load returns the certificate stored under candidate, or nil if there is no
// such file or it is for another name.
func (p *FileProvider) load(n name.ServerName, candidate string) (*tls.Certificate, error) {
	certFile := path.Join(p.BasePath, candidate+".crt")

	certPEM, err := ioutil.ReadFile(certFile)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	keyPEM, err := ioutil.ReadFile(path.Join(p.BasePath, candidate+".key"))
	if err != nil {
		return nil, err
	}

	cert, err := parseKeyPair(n, certPEM, keyPEM)

	var mismatch x509.HostnameError
	if errors.As(err, &mismatch) {
		p.logf("certificate %s ignored for %s: %s", certFile, n.Unicode, err)
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("%s: %w", certFile, err)
	}

	p.logf(
		"certificate %s loaded for %s, expires at %s",
		certFile,
		n.Unicode,
		cert.Leaf.NotAfter.Format(time.RFC3339),
	)

	return cert, nil
}

func (p *FileProvider) logf(format string, v ...interface{}) {
	if p.Logger != nil {
		p.Logger.Printf(format, v...)
	}
}

// candidateNames returns the file names that may hold a certificate for n,
// most specific first.
func candidateNames(n name.ServerName) []string {
	labels := strings.Split(n.Punycode, ".")
	names := []string{n.Punycode}

	for i := 1; i < len(labels); i++ {
		parent := strings.Join(labels[i:], ".")
		names = append(names, "_."+parent, parent)
	}

	return names
}
