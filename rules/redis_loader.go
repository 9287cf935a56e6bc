package rules

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/icecave/httpsredirect/redirect"
)

// DefaultRedisKey is the key of the Redis list that holds the rewrite rules.
const DefaultRedisKey = "redirect:replacements"

// RedisLoader reads rewrite rules from a Redis list of alternating match and
// replacement strings.
type RedisLoader struct {
	Client *redis.Client
	Key    string
}

// Load returns the rules stored in Redis, in list order. A missing key is
// treated as an empty list.
func (l *RedisLoader) Load(ctx context.Context) ([]redirect.Replacement, error) {
	key := l.Key
	if key == "" {
		key = DefaultRedisKey
	}

	values, err := l.Client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("unable to load rewrite rules from redis key '%s': %w", key, err)
	}

	if len(values)%2 != 0 {
		return nil, fmt.Errorf(
			"redis key '%s' contains %d values, expected match and replacement pairs",
			key,
			len(values),
		)
	}

	var result []redirect.Replacement
	for i := 0; i < len(values); i += 2 {
		result = append(result, redirect.Replacement{
			Match:   values[i],
			Replace: values[i+1],
		})
	}

	return result, nil
}
