package variables

import (
	"fmt"
	"regexp"
)

// KeyExclusion decides whether a key is left out of bulk resolution
type KeyExclusion interface {
	Match(key string) bool
}

var _ KeyExclusion = ExactKeyExclusion("")

// ExactKeyExclusion matches exactly one key
type ExactKeyExclusion string

// Match implements KeyExclusion.Match
func (exclusion ExactKeyExclusion) Match(key string) bool {
	return string(exclusion) == key
}

var _ KeyExclusion = (*RegexKeyExclusion)(nil)

// RegexKeyExclusion matches every key the pattern finds a match in.
// Matching is unanchored and case-sensitive.
type RegexKeyExclusion struct {
	re *regexp.Regexp
}

// NewRegexKeyExclusion compiles pattern into an exclusion
func NewRegexKeyExclusion(pattern string) (*RegexKeyExclusion, error) {
	re, err := CompilePattern(pattern)

	if err != nil {
		return nil, fmt.Errorf("invalid key exclusion pattern %q: %s", pattern, err.Error())
	}

	return &RegexKeyExclusion{re: re}, nil
}

// Match implements KeyExclusion.Match
func (exclusion *RegexKeyExclusion) Match(key string) bool {
	return exclusion.re.MatchString(key)
}

// KeyExclusions is an ordered set of exclusions. A key is omitted
// when any of them matches. The zero value omits nothing.
type KeyExclusions []KeyExclusion

// ToOmit reports whether key must be skipped
func (exclusions KeyExclusions) ToOmit(key string) bool {
	for _, exclusion := range exclusions {
		if exclusion.Match(key) {
			return true
		}
	}

	return false
}
