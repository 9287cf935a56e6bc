package name

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"golang.org/x/net/idna"
)

// ServerName is a normalized host name.
type ServerName struct {
	Unicode  string
	Punycode string
}

// Parse produces a ServerName value from a string, or panics if it is unable
// to do so.
func Parse(name string) ServerName {
	n, err := TryParse(name)
	if err != nil {
		panic(err)
	}

	return n
}

// TryParse attempts to produce a ServerName value from a string.
func TryParse(name string) (ServerName, error) {
	var (
		n   ServerName
		err error
	)

	lowercase := strings.ToLower(name)

	n.Punycode, err = idna.ToASCII(lowercase)
	if err != nil {
		return n, err
	} else if !isDomainName(n.Punycode) {
		return n, fmt.Errorf("invalid server name '%s'", name)
	}

	n.Unicode, err = idna.ToUnicode(lowercase)

	return n, err
}

// FromHost attempts to parse a server name from an HTTP host, which may
// include a port. IP addresses are not server names.
func FromHost(host string) (ServerName, error) {
	h, port, err := net.SplitHostPort(host)
	if err != nil {
		h = host
	} else if !isPort(port) {
		return ServerName{}, fmt.Errorf("invalid port in host '%s'", host)
	}

	return TryParse(h)
}

// FromHTTP attempts to parse a server name from an HTTP request.
func FromHTTP(r *http.Request) (ServerName, error) {
	return FromHost(r.Host)
}

func isPort(port string) bool {
	if port == "" || len(port) > 5 {
		return false
	}

	for i := 0; i < len(port); i++ {
		if port[i] < '0' || port[i] > '9' {
			return false
		}
	}

	return true
}

// isDomainName checks if the given domain name is valid.
func isDomainName(domainName string) bool {
	if len(domainName) == 0 || len(domainName) > 255 {
		return false
	}

	hasLetter := false
	atomLength := 0
	previousChar := byte('.')

	for index := 0; index < len(domainName); index++ {
		char := domainName[index]

		switch {
		case 'a' <= char && char <= 'z', char == '_':
			hasLetter = true
			atomLength++
		case '0' <= char && char <= '9':
			atomLength++
		case char == '-':
			// Byte before dash cannot be dot.
			if previousChar == '.' {
				return false
			}
			atomLength++
		case char == '.':
			// Byte before dot cannot be dot or dash.
			if previousChar == '.' || previousChar == '-' {
				return false
			}
			if atomLength > 63 || atomLength == 0 {
				return false
			}
			atomLength = 0
		default:
			return false
		}

		previousChar = char
	}

	if previousChar == '-' || previousChar == '.' || atomLength > 63 {
		return false
	}

	return hasLetter
}
