package proxyprotocol_test

import (
	"fmt"
	"io/ioutil"
	"net"
	"time"

	"github.com/icecave/httpsredirect/connection"
	"github.com/icecave/httpsredirect/proxyprotocol"
	proxyproto "github.com/pires/go-proxyproto"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

var _ = Describe("Conn", func() {
	DescribeTable(
		"it reports the addresses from the PROXY header",
		func(version byte) {
			server, client := net.Pipe()

			go func() {
				defer GinkgoRecover()

				header := &proxyproto.Header{
					Command:            proxyproto.PROXY,
					DestinationAddress: net.ParseIP("127.0.0.1"),
					DestinationPort:    12345,
					SourceAddress:      net.ParseIP("127.127.127.127"),
					SourcePort:         31337,
					TransportProtocol:  proxyproto.TCPv4,
					Version:            version,
				}
				_, err := header.WriteTo(client)
				Expect(err).NotTo(HaveOccurred())
				fmt.Fprint(client, "GET / HTTP/1.1\r\n")
				client.Close()
			}()

			subject := proxyprotocol.NewConn(server)
			defer subject.Close()

			Expect(subject.RemoteAddr().String()).To(Equal("127.127.127.127:31337"))
			Expect(subject.LocalAddr().String()).To(Equal("127.0.0.1:12345"))

			rest, err := ioutil.ReadAll(subject)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(rest)).To(Equal("GET / HTTP/1.1\r\n"))
		},
		Entry("version 1", byte(1)),
		Entry("version 2", byte(2)),
	)

	It("passes non-PROXY streams through unchanged", func() {
		server, client := net.Pipe()

		go func() {
			fmt.Fprint(client, "test\n")
			client.Close()
		}()

		subject := proxyprotocol.NewConn(server)
		defer subject.Close()

		Expect(subject.RemoteAddr().String()).To(Equal("pipe"))
		Expect(subject.LocalAddr().String()).To(Equal("pipe"))

		header, err := subject.Header()
		Expect(err).NotTo(HaveOccurred())
		Expect(header).To(BeNil())

		rest, err := ioutil.ReadAll(subject)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(rest)).To(Equal("test\n"))
	})

	It("keeps the connection's own addresses for LOCAL commands", func() {
		server, client := net.Pipe()

		go func() {
			header := &proxyproto.Header{
				Command: proxyproto.LOCAL,
				Version: 2,
			}
			header.WriteTo(client)
			client.Close()
		}()

		subject := proxyprotocol.NewConn(server)
		defer subject.Close()

		Expect(subject.RemoteAddr().String()).To(Equal("pipe"))
	})

	It("stops waiting for the header after the header timeout", func() {
		server, client := net.Pipe()
		defer client.Close()

		subject := proxyprotocol.NewConn(server)
		subject.HeaderTimeout = 20 * time.Millisecond
		defer subject.Close()

		Expect(subject.RemoteAddr().String()).To(Equal("pipe"))

		go func() {
			fmt.Fprint(client, "late\n")
			client.Close()
		}()

		rest, err := ioutil.ReadAll(subject)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(rest)).To(Equal("late\n"))
	})
})

var _ = Describe("Listener", func() {
	var inner net.Listener

	BeforeEach(func() {
		var err error
		inner, err = net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		inner.Close()
	})

	// dial connects to the listener and sends a PROXY header claiming that the
	// connection came from 10.1.2.3, followed by payload.
	dial := func(payload string) {
		go func() {
			defer GinkgoRecover()

			c, err := net.Dial("tcp", inner.Addr().String())
			Expect(err).NotTo(HaveOccurred())
			defer c.Close()

			header := &proxyproto.Header{
				Command:            proxyproto.PROXY,
				DestinationAddress: net.ParseIP("10.0.0.1"),
				DestinationPort:    443,
				SourceAddress:      net.ParseIP("10.1.2.3"),
				SourcePort:         5555,
				TransportProtocol:  proxyproto.TCPv4,
				Version:            1,
			}
			header.WriteTo(c)
			fmt.Fprint(c, payload)
		}()
	}

	It("wraps accepted connections", func() {
		subject := &proxyprotocol.Listener{Listener: inner}

		dial("")

		c, err := subject.Accept()
		Expect(err).NotTo(HaveOccurred())
		defer c.Close()

		Expect(c).To(BeAssignableToTypeOf(&proxyprotocol.Conn{}))
		Expect(c.RemoteAddr().String()).To(Equal("10.1.2.3:5555"))
	})

	It("honours the header from a trusted peer", func() {
		networks, err := connection.ParseNetworks([]string{"127.0.0.0/8"})
		Expect(err).NotTo(HaveOccurred())

		subject := &proxyprotocol.Listener{
			Listener:       inner,
			TrustedProxies: networks,
		}

		dial("")

		c, err := subject.Accept()
		Expect(err).NotTo(HaveOccurred())
		defer c.Close()

		Expect(c.RemoteAddr().String()).To(Equal("10.1.2.3:5555"))
	})

	It("does not interpret the header from an untrusted peer", func() {
		networks, err := connection.ParseNetworks([]string{"10.0.0.0/8"})
		Expect(err).NotTo(HaveOccurred())

		subject := &proxyprotocol.Listener{
			Listener:       inner,
			TrustedProxies: networks,
		}

		dial("GET / HTTP/1.1\r\n")

		c, err := subject.Accept()
		Expect(err).NotTo(HaveOccurred())
		defer c.Close()

		host, _, err := net.SplitHostPort(c.RemoteAddr().String())
		Expect(err).NotTo(HaveOccurred())
		Expect(host).To(Equal("127.0.0.1"))

		rest, err := ioutil.ReadAll(c)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(rest)).To(Equal("PROXY TCP4 10.1.2.3 10.0.0.1 5555 443\r\nGET / HTTP/1.1\r\n"))
	})
})
