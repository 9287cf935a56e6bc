package rules

import (
	"context"

	"github.com/icecave/httpsredirect/redirect"
)

// Load returns the rules parsed from rules, followed by the rules stored in
// Redis. Because rules apply in order, a Redis rule sees the output of every
// rule from rules. If loader is nil only rules is used.
func Load(
	ctx context.Context,
	rules string,
	loader *RedisLoader,
) ([]redirect.Replacement, error) {
	replacements, err := Parse(rules)
	if err != nil {
		return nil, err
	}

	if loader == nil {
		return replacements, nil
	}

	stored, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	return append(replacements, stored...), nil
}
