package variables

import (
	"regexp"

	lru "github.com/hashicorp/golang-lru"
)

// PatternCacheSize is how many compiled patterns CompilePattern keeps
const PatternCacheSize = 1024

var patterns = mustCache(PatternCacheSize)

func mustCache(size int) *lru.Cache {
	cache, err := lru.New(size)

	if err != nil {
		panic(err)
	}

	return cache
}

// CompilePattern compiles pattern, reusing an earlier compilation of
// the same pattern when it is still cached. Rule sets resolve the same
// handful of key patterns on every transaction; the least recently used
// pattern is evicted once PatternCacheSize patterns are cached.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	if re, ok := patterns.Get(pattern); ok {
		return re.(*regexp.Regexp), nil
	}

	re, err := regexp.Compile(pattern)

	if err != nil {
		return nil, err
	}

	patterns.Add(pattern, re)

	return re, nil
}
