package connection

import (
	"net/http"
	"strings"

	"github.com/golang/gddo/httputil/header"
)

// forwarded extracts the protocol and host from the first element of an
// RFC 7239 Forwarded header. ok is false if the header is not present.
func forwarded(h http.Header) (proto, host string, ok bool) {
	elements := header.ParseList(h, "Forwarded")
	if len(elements) == 0 {
		return "", "", false
	}

	for _, pair := range strings.Split(elements[0], ";") {
		i := strings.IndexByte(pair, '=')
		if i == -1 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(pair[:i]))
		value := unquote(strings.TrimSpace(pair[i+1:]))

		switch key {
		case "proto":
			proto = value
		case "host":
			host = value
		}
	}

	return proto, host, true
}

func unquote(value string) string {
	if len(value) < 2 || value[0] != '"' || value[len(value)-1] != '"' {
		return value
	}

	value = value[1 : len(value)-1]

	var b strings.Builder
	escaped := false
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		b.WriteByte(c)
	}

	return b.String()
}
