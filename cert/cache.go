package cert

import (
	"crypto/tls"
	"sync"
	"time"

	"github.com/icecave/httpsredirect/name"
)

// cache holds certificates by server name. The zero value is an empty cache.
type cache struct {
	mutex sync.RWMutex
	items map[string]cacheItem
}

type cacheItem struct {
	Certificate *tls.Certificate
	StoredAt    time.Time
}

// Expired returns true if the item is older than age. Items never expire if
// age is zero.
func (i cacheItem) Expired(age time.Duration) bool {
	return age > 0 && time.Since(i.StoredAt) > age
}

func (c *cache) Get(n name.ServerName) (cacheItem, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, ok := c.items[n.Unicode]

	return item, ok
}

func (c *cache) Put(n name.ServerName, cert *tls.Certificate) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.items == nil {
		c.items = map[string]cacheItem{}
	}

	c.items[n.Unicode] = cacheItem{
		Certificate: cert,
		StoredAt:    time.Now(),
	}
}
