package evaluator

import (
	"regexp"
	"sync"
)

// regexCache caches compiled regular expressions across evaluations. The
// test() builtin typically runs the same pattern against every record of a
// stream, so compilation cost is paid once per pattern.
var regexCache sync.Map // pattern string -> *regexp.Regexp

// getRegex returns a compiled regular expression for the pattern, compiling
// and caching it on first use.
func getRegex(pattern string) (*regexp.Regexp, error) {
	if cached, ok := regexCache.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	actual, _ := regexCache.LoadOrStore(pattern, re)
	return actual.(*regexp.Regexp), nil
}
