package frontend_test

import (
	"bufio"
	"fmt"
	"net"
	"net/http"

	"github.com/icecave/httpsredirect/connection"
	"github.com/icecave/httpsredirect/frontend"
	"github.com/icecave/httpsredirect/proxyprotocol"
	"github.com/icecave/httpsredirect/redirect"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"go.uber.org/atomic"
)

var _ = Describe("Handler behind a PROXY protocol listener", func() {
	var (
		inner  net.Listener
		server *http.Server
		served *atomic.Int32
	)

	// serve starts a server whose listener accepts PROXY headers from the
	// given networks, and whose resolver trusts forwarding headers from
	// 10.0.0.0/8.
	serve := func(proxyNetworks ...string) {
		var err error
		inner, err = net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())

		proxies, err := connection.ParseNetworks(proxyNetworks)
		Expect(err).NotTo(HaveOccurred())

		trusted, err := connection.ParseNetworks([]string{"10.0.0.0/8"})
		Expect(err).NotTo(HaveOccurred())

		server = &http.Server{
			Handler: &frontend.Handler{
				Resolver: &connection.Resolver{TrustedProxies: trusted},
				Processor: redirect.New().Wrap(
					redirect.ProcessorFunc(func(w http.ResponseWriter, r *redirect.Request) error {
						served.Inc()
						return nil
					}),
				),
			},
		}

		go server.Serve(&proxyprotocol.Listener{
			Listener:       inner,
			TrustedProxies: proxies,
		})
	}

	// request sends a PROXY header claiming the given source address followed
	// by a request that claims to have been received over HTTPS.
	request := func(source string) *http.Response {
		c, err := net.Dial("tcp", inner.Addr().String())
		Expect(err).NotTo(HaveOccurred())
		defer c.Close()

		fmt.Fprintf(c, "PROXY TCP4 %s 127.0.0.1 5555 80\r\n", source)
		fmt.Fprint(c, "GET /admin HTTP/1.1\r\nHost: example.com\r\nX-Forwarded-Proto: https\r\nConnection: close\r\n\r\n")

		res, err := http.ReadResponse(bufio.NewReader(c), nil)
		Expect(err).NotTo(HaveOccurred())
		res.Body.Close()

		return res
	}

	BeforeEach(func() {
		served = atomic.NewInt32(0)
	})

	AfterEach(func() {
		server.Close()
	})

	It("does not let a direct client claim to be a trusted proxy", func() {
		serve("192.0.2.0/24")

		res := request("10.0.0.1")

		Expect(res.StatusCode).To(Equal(http.StatusBadRequest))
		Expect(served.Load()).To(BeZero())
	})

	It("redirects clients reported by a trusted load balancer", func() {
		serve("127.0.0.0/8")

		res := request("192.0.2.1")

		Expect(res.StatusCode).To(Equal(http.StatusMovedPermanently))
		Expect(res.Header.Get("Location")).To(Equal("https://example.com/admin"))
		Expect(served.Load()).To(BeZero())
	})

	It("forwards requests from a trusted proxy reported by a trusted load balancer", func() {
		serve("127.0.0.0/8")

		res := request("10.0.0.1")

		Expect(res.StatusCode).To(Equal(http.StatusOK))
		Expect(served.Load()).To(Equal(int32(1)))
	})
})
