package health

import (
	"context"
	"crypto/tls"
	"io/ioutil"
	"net"
	"net/http"
	"net/url"
	"time"

	proxyproto "github.com/pires/go-proxyproto"
)

// HTTPChecker is a Checker that connects to the server to check its status.
type HTTPChecker struct {
	// Address is the host and port of the server.
	Address string

	// Secure indicates whether the server at Address expects TLS.
	Secure bool

	// ProxyProtocol indicates whether the server at Address expects a PROXY
	// protocol header.
	ProxyProtocol bool

	// Timeout is the maximum duration of the check.
	Timeout time.Duration
}

// Check returns information about the health of the server.
func (checker *HTTPChecker) Check(ctx context.Context) Status {
	host, port, err := net.SplitHostPort(checker.Address)
	if err != nil {
		return Status{false, err.Error()}
	} else if host == "" {
		host = requestHost
	}

	u := url.URL{
		Scheme: "http",
		Host:   net.JoinHostPort(host, port),
		Path:   requestPath,
	}
	if checker.Secure {
		u.Scheme = "https"
	}

	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return Status{false, err.Error()}
	}

	response, err := checker.client().Do(req.WithContext(ctx))
	if err != nil {
		return Status{false, err.Error()}
	}
	defer response.Body.Close()

	content, err := ioutil.ReadAll(response.Body)
	if err != nil {
		return Status{false, err.Error()}
	}

	return Status{
		200 <= response.StatusCode && response.StatusCode <= 299,
		string(content),
	}
}

func (checker *HTTPChecker) client() *http.Client {
	dialer := &net.Dialer{}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true,
		},
		DialContext: dialer.DialContext,
	}

	if checker.ProxyProtocol {
		transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}

			header := proxyproto.Header{
				Command: proxyproto.LOCAL,
				Version: 2,
			}
			if _, err := header.WriteTo(conn); err != nil {
				conn.Close()
				return nil, err
			}

			return conn, nil
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   checker.Timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
