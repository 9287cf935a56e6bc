package cert_test

import (
	"context"
	"crypto/tls"
	"errors"

	"github.com/icecave/httpsredirect/cert"
	"github.com/icecave/httpsredirect/name"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

var (
	primaryCertificate = &tls.Certificate{
		Certificate: [][]byte{[]byte("imacert")},
	}
	secondaryCertificate = &tls.Certificate{
		Certificate: [][]byte{[]byte("imanothercert")},
	}
	errCertError = errors.New("error certificate")
)

// fakeProvider has a certificate for "<prefix>.cert" and fails for
// "<prefix>.error".
type fakeProvider struct {
	prefix      string
	certificate *tls.Certificate
	calls       int
}

func (p *fakeProvider) GetCertificate(_ context.Context, n name.ServerName) (*tls.Certificate, error) {
	p.calls++

	switch n.Unicode {
	case p.prefix + ".cert":
		return p.certificate, nil
	case p.prefix + ".error":
		return nil, errCertError
	}

	return nil, nil
}

var _ = Describe("MultiProvider", func() {
	var (
		primary, secondary *fakeProvider
		subject            *cert.MultiProvider
	)

	BeforeEach(func() {
		primary = &fakeProvider{prefix: "primary", certificate: primaryCertificate}
		secondary = &fakeProvider{prefix: "secondary", certificate: secondaryCertificate}
		subject = &cert.MultiProvider{
			Providers: []cert.Provider{primary, secondary},
		}
	})

	DescribeTable(
		"GetCertificate",
		func(n string, expected *tls.Certificate, expectedErr error) {
			c, err := subject.GetCertificate(context.Background(), name.Parse(n))

			if expectedErr != nil {
				Expect(err).To(MatchError(expectedErr))
			} else {
				Expect(err).NotTo(HaveOccurred())
			}

			if expected != nil {
				Expect(c).To(BeIdenticalTo(expected))
			} else {
				Expect(c).To(BeNil())
			}
		},
		Entry("returns the primary provider certificate", "primary.cert", primaryCertificate, nil),
		Entry("returns the secondary provider certificate", "secondary.cert", secondaryCertificate, nil),
		Entry("returns an error from the primary provider", "primary.error", nil, errCertError),
		Entry("returns an error from the secondary provider", "secondary.error", nil, errCertError),
		Entry("returns no error or certificate", "somedomain.com", nil, nil),
	)

	It("does not consult later providers once one has a certificate", func() {
		_, err := subject.GetCertificate(context.Background(), name.Parse("primary.cert"))
		Expect(err).NotTo(HaveOccurred())
		Expect(secondary.calls).To(Equal(0))
	})
})

var _ = Describe("ProviderAdaptor", func() {
	var (
		provider *fakeProvider
		subject  *cert.ProviderAdaptor
	)

	BeforeEach(func() {
		provider = &fakeProvider{prefix: "primary", certificate: primaryCertificate}
		subject = &cert.ProviderAdaptor{Provider: provider}
	})

	It("returns the certificate from the provider", func() {
		c, err := subject.GetCertificate(&tls.ClientHelloInfo{ServerName: "PRIMARY.cert"})
		Expect(err).NotTo(HaveOccurred())
		Expect(c).To(BeIdenticalTo(primaryCertificate))
	})

	It("returns errors from the provider", func() {
		_, err := subject.GetCertificate(&tls.ClientHelloInfo{ServerName: "primary.error"})
		Expect(err).To(MatchError(errCertError))
	})

	DescribeTable(
		"falls back to the default certificate",
		func(serverName string) {
			c, err := subject.GetCertificate(&tls.ClientHelloInfo{ServerName: serverName})
			Expect(err).NotTo(HaveOccurred())
			Expect(c).To(BeNil())
		},
		Entry("no server name", ""),
		Entry("invalid server name", "not a name"),
		Entry("unknown server name", "unknown.com"),
	)
})
