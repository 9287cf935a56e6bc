package cert

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/icecave/httpsredirect/name"
)

// RedisProvider is a certificate provider that reads certificates from Redis.
//
// The certificate for a server name is stored in a hash named "ssl:<name>"
// with "certificate" and "key" fields, both PEM encoded.
type RedisProvider struct {
	Logger *log.Logger
	Client *redis.Client

	// CacheAge is how long a certificate is served from memory before Redis
	// is consulted again. If it is zero, cached certificates never expire.
	CacheAge time.Duration

	cache cache
}

// GetCertificate returns the certificate for the given server name, or nil if
// there is no such certificate in Redis.
//
// If Redis can not be reached, an expired certificate from the cache is
// returned in preference to an error.
func (p *RedisProvider) GetCertificate(ctx context.Context, n name.ServerName) (*tls.Certificate, error) {
	item, cached := p.cache.Get(n)
	if cached && !item.Expired(p.CacheAge) {
		return item.Certificate, nil
	}

	m, err := p.Client.HGetAll(ctx, certificateRedisKey(n)).Result()
	if err != nil {
		if !cached {
			return nil, err
		}

		if p.Logger != nil {
			p.Logger.Printf("expired but falling through to cache for %s (%s)", n.Unicode, err)
		}

		return item.Certificate, nil
	}

	certPEM, hasCert := m["certificate"]
	keyPEM, hasKey := m["key"]
	if !hasCert || !hasKey {
		return nil, nil
	}

	cert, err := parseKeyPair(n, []byte(certPEM), []byte(keyPEM))
	if err != nil {
		return nil, fmt.Errorf("invalid certificate in %s: %w", certificateRedisKey(n), err)
	}

	p.cache.Put(n, cert)

	return cert, nil
}

func certificateRedisKey(n name.ServerName) string {
	return fmt.Sprintf("ssl:%s", n.Unicode)
}
