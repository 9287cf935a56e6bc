package redirect

import "strings"

// Replacement is a single rewrite rule. Every occurrence of Match is replaced
// with Replace.
type Replacement struct {
	Match   string
	Replace string
}

// Policy is an ordered, immutable list of rewrite rules applied to redirect
// targets.
//
// The zero value is an empty policy, which rewrites nothing.
type Policy struct {
	replacements []Replacement
}

// NewPolicy returns a policy that applies the given replacements in order.
func NewPolicy(replacements ...Replacement) Policy {
	if len(replacements) == 0 {
		return Policy{}
	}

	return Policy{
		replacements: append([]Replacement(nil), replacements...),
	}
}

// Rewrite applies each replacement to input in order. Each rule operates on
// the output of the rule before it, so the result of one rule may be matched
// again by a later rule, but never by the same rule.
func (p Policy) Rewrite(input string) string {
	for _, r := range p.replacements {
		input = strings.ReplaceAll(input, r.Match, r.Replace)
	}

	return input
}

// Replacements returns a copy of the policy's rules, in order.
func (p Policy) Replacements() []Replacement {
	return append([]Replacement(nil), p.replacements...)
}

// Len returns the number of rules in the policy.
func (p Policy) Len() int {
	return len(p.replacements)
}
