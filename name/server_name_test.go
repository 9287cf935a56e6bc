package name_test

import (
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/icecave/httpsredirect/name"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

var _ = Describe("ServerName", func() {
	Describe("TryParse", func() {
		It("accepts valid international domains", func() {
			result, err := name.TryParse("host.dømåin-name.tld")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(result).To(Equal(name.ServerName{
				Unicode:  "host.dømåin-name.tld",
				Punycode: "host.xn--dmin-name-62a1s.tld",
			}))
		})

		It("normalizes the name", func() {
			result, err := name.TryParse("HOST.DØMÅIN-NAME.TLD")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(result).To(Equal(name.ServerName{
				Unicode:  "host.dømåin-name.tld",
				Punycode: "host.xn--dmin-name-62a1s.tld",
			}))
		})

		DescribeTable(
			"it rejects invalid server names",
			func(serverName string) {
				_, err := name.TryParse(serverName)
				Expect(err).Should(HaveOccurred())
			},
			Entry("empty", ""),
			Entry("invalid character", "/"),
			Entry("dot before hyphen", "foo.-bar"),
			Entry("hyphen before dot", "foo-.bar"),
			Entry("dot before dot", "foo..bar"),
			Entry("leading hyphen", "-foo"),
			Entry("leading dot", ".foo"),
			Entry("trailing hyphen", "foo-"),
			Entry("trailing dot", "foo."),
			Entry("first atom too long", strings.Repeat("x", 64)+".bar"),
			Entry("last atom too long", "foo."+strings.Repeat("x", 64)),
			Entry("only atom too long", strings.Repeat("x", 64)),
			Entry("IP address", "192.0.2.1"),
		)
	})

	Describe("Parse", func() {
		It("panics on invalid names", func() {
			Expect(func() { name.Parse("foo..bar") }).To(Panic())
		})
	})

	Describe("FromHost", func() {
		DescribeTable(
			"it accepts hosts with and without ports",
			func(host string) {
				result, err := name.FromHost(host)
				Expect(err).ShouldNot(HaveOccurred())
				Expect(result.Unicode).To(Equal("example.com"))
			},
			Entry("no port", "example.com"),
			Entry("port", "example.com:8080"),
		)

		DescribeTable(
			"it rejects invalid hosts",
			func(host string) {
				_, err := name.FromHost(host)
				Expect(err).Should(HaveOccurred())
			},
			Entry("non-numeric port", "example.com:http"),
			Entry("path injection", "example.com/evil"),
			Entry("user info", "user@example.com"),
			Entry("IPv6 address", "[::1]:8080"),
		)
	})

	Describe("FromHTTP", func() {
		It("parses the request host", func() {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Host = "Example.COM:443"

			result, err := name.FromHTTP(r)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(result.Punycode).To(Equal("example.com"))
		})
	})
})
