package cmd

import (
	"crypto/tls"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/icecave/httpsredirect/connection"
	"github.com/icecave/httpsredirect/rules"
	"go.uber.org/multierr"
)

// Config holds configuration values for commands.
type Config struct {
	Port               string
	InsecurePort       string
	UpstreamURL        string
	Replacements       string
	Redis              redisConfig
	Certificates       certificateConfig
	TrustedProxies     []string
	ProxyProtocol      bool
	ProxyHeaderTimeout time.Duration
	ValidateHost       bool
	HSTSMaxAge         time.Duration
	RateLimit          float64
	RateBurst          int
	CheckTimeout       time.Duration
	MinTLSVersion      uint16
	MaxTLSVersion      uint16
	CipherSuite        []uint16

	parseErr error
}

type redisConfig struct {
	Address         string
	Password        string
	ReplacementsKey string
	CacheExpire     time.Duration
}

type certificateConfig struct {
	BasePath          string
	ServerCertificate string
	ServerKey         string
	CacheExpire       time.Duration
}

// GetConfigFromEnvironment creates Config object based on the shell environment.
// Values that can not be parsed are replaced by their defaults and reported
// by Validate.
func GetConfigFromEnvironment() *Config {
	e := &environment{}

	c := &Config{
		Port:         e.String("PORT", "8443"),
		InsecurePort: e.String("REDIRECT_PORT", "8080"),
		UpstreamURL:  e.String("UPSTREAM_URL", ""),
		Replacements: e.String("REPLACEMENTS", ""),
		Redis: redisConfig{
			Address:         e.String("REDIS_ADDR", ""),
			Password:        e.String("REDIS_PASSWORD", ""),
			ReplacementsKey: e.String("REDIS_REPLACEMENTS_KEY", rules.DefaultRedisKey),
			CacheExpire:     e.Duration("REDIS_CACHE_EXPIRY", time.Minute),
		},
		Certificates: certificateConfig{
			BasePath:          e.String("CERTIFICATE_PATH", "/run/secrets/"),
			ServerCertificate: e.String("SERVER_CERT", "httpsredirect-server.crt"),
			ServerKey:         e.String("SERVER_KEY", "httpsredirect-server.key"),
			CacheExpire:       e.Duration("CERTIFICATE_CACHE_EXPIRY", 0),
		},
		TrustedProxies:     e.List("TRUSTED_PROXIES"),
		ProxyProtocol:      e.Bool("PROXY_PROTOCOL", false),
		ProxyHeaderTimeout: e.Duration("PROXY_HEADER_TIMEOUT", 5*time.Second),
		ValidateHost:       e.Bool("VALIDATE_HOST", false),
		HSTSMaxAge:         e.Duration("HSTS_MAX_AGE", 0),
		RateLimit:          e.Float("RATE_LIMIT", 0),
		RateBurst:          int(e.Int("RATE_BURST", 1)),
		CheckTimeout:       e.Duration("CHECK_TIMEOUT", 500*time.Millisecond),
		MinTLSVersion:      e.TLSVersion("TLS_MIN_VERSION"),
		MaxTLSVersion:      e.TLSVersion("TLS_MAX_VERSION"),
		CipherSuite:        e.TLSCiphers("TLS_CIPHER_SUITE"),
	}

	c.parseErr = e.err

	return c
}

// Validate returns an error describing every problem with the configuration.
func (c *Config) Validate() error {
	err := c.parseErr

	if !isPort(c.Port) {
		err = multierr.Append(err, fmt.Errorf("PORT must be a port number, got '%s'", c.Port))
	}

	if !isPort(c.InsecurePort) {
		err = multierr.Append(err, fmt.Errorf("REDIRECT_PORT must be a port number, got '%s'", c.InsecurePort))
	}

	if c.UpstreamURL == "" {
		err = multierr.Append(err, fmt.Errorf("UPSTREAM_URL must be set"))
	} else if u, e := url.Parse(c.UpstreamURL); e != nil {
		err = multierr.Append(err, fmt.Errorf("UPSTREAM_URL is invalid: %w", e))
	} else if u.Scheme == "" || u.Host == "" {
		err = multierr.Append(err, fmt.Errorf("UPSTREAM_URL must be an absolute URL, got '%s'", c.UpstreamURL))
	}

	if _, e := rules.Parse(c.Replacements); e != nil {
		err = multierr.Append(err, fmt.Errorf("REPLACEMENTS is invalid: %w", e))
	}

	if _, e := connection.ParseNetworks(c.TrustedProxies); e != nil {
		err = multierr.Append(err, fmt.Errorf("TRUSTED_PROXIES is invalid: %w", e))
	}

	if c.RateLimit < 0 {
		err = multierr.Append(err, fmt.Errorf("RATE_LIMIT must not be negative"))
	} else if c.RateLimit > 0 && c.RateBurst < 1 {
		err = multierr.Append(err, fmt.Errorf("RATE_BURST must be at least 1 when RATE_LIMIT is set"))
	}

	if c.ProxyHeaderTimeout < 0 {
		err = multierr.Append(err, fmt.Errorf("PROXY_HEADER_TIMEOUT must not be negative"))
	}

	if c.HSTSMaxAge < 0 {
		err = multierr.Append(err, fmt.Errorf("HSTS_MAX_AGE must not be negative"))
	}

	if c.MinTLSVersion != 0 && c.MaxTLSVersion != 0 && c.MinTLSVersion > c.MaxTLSVersion {
		err = multierr.Append(err, fmt.Errorf("TLS_MIN_VERSION must not be greater than TLS_MAX_VERSION"))
	}

	return err
}

func isPort(value string) bool {
	p, err := strconv.ParseUint(value, 10, 16)
	return err == nil && p != 0
}

// environment reads typed values from environment variables, recording a
// parse error for every value that is set but invalid.
type environment struct {
	err error
}

func (e *environment) invalid(key, value, expected string) {
	e.err = multierr.Append(
		e.err,
		fmt.Errorf("%s must be %s, got '%s'", key, expected, value),
	)
}

func (e *environment) String(key string, def string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return def
}

func (e *environment) List(key string) []string {
	var values []string

	for _, v := range strings.Split(e.String(key, ""), ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}

	return values
}

func (e *environment) Int(key string, def int64) int64 {
	if value, ok := os.LookupEnv(key); ok {
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			e.invalid(key, value, "an integer")
			return def
		}
		return i
	}

	return def
}

func (e *environment) Float(key string, def float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			e.invalid(key, value, "a number")
			return def
		}
		return f
	}

	return def
}

func (e *environment) Bool(key string, def bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(value)
		if err != nil {
			e.invalid(key, value, "a boolean")
			return def
		}
		return b
	}

	return def
}

func (e *environment) Duration(key string, def time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(value)
		if err != nil {
			e.invalid(key, value, "a duration")
			return def
		}
		return d
	}

	return def
}

func (e *environment) TLSVersion(key string) uint16 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return 0
	}

	switch strings.ToLower(value) {
	case "tlsv1.0", "v1.0", "1.0", "1_0":
		return tls.VersionTLS10
	case "tlsv1.1", "v1.1", "1.1", "1_1":
		return tls.VersionTLS11
	case "tlsv1.2", "v1.2", "1.2", "1_2":
		return tls.VersionTLS12
	case "tlsv1.3", "v1.3", "1.3", "1_3":
		return tls.VersionTLS13
	}

	e.invalid(key, value, "a TLS version")
	return 0
}

func (e *environment) TLSCiphers(key string) []uint16 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}

	var o []uint16
	for _, name := range strings.Split(value, ":") {
		found := false
		for _, suite := range tls.CipherSuites() {
			if strings.EqualFold(name, suite.Name) {
				o = append(o, suite.ID)
				found = true
			}
		}
		if !found {
			e.invalid(key, name, "a cipher suite name")
		}
	}

	return o
}
