// Package rules loads redirect rewrite rules from configuration sources.
package rules

import (
	"fmt"
	"strings"

	"github.com/icecave/httpsredirect/redirect"
	"go.uber.org/multierr"
)

// Separator divides the match and replacement strings of a single rule.
const Separator = "=>"

// Parse parses rewrite rules of the form "match=>replace". Rules are separated
// by newlines or semicolons and are returned in the order they appear. Blank
// entries are ignored. Whitespace around each rule is trimmed, but whitespace
// within the match or replacement strings is preserved.
func Parse(s string) ([]redirect.Replacement, error) {
	var (
		result []redirect.Replacement
		err    error
	)

	entries := strings.FieldsFunc(s, func(r rune) bool {
		return r == '\n' || r == ';'
	})

	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		i := strings.Index(entry, Separator)
		if i == -1 {
			err = multierr.Append(
				err,
				fmt.Errorf("rewrite rule '%s' does not contain '%s'", entry, Separator),
			)
			continue
		} else if i == 0 {
			err = multierr.Append(
				err,
				fmt.Errorf("rewrite rule '%s' has an empty match string", entry),
			)
			continue
		}

		result = append(result, redirect.Replacement{
			Match:   entry[:i],
			Replace: entry[i+len(Separator):],
		})
	}

	return result, err
}
