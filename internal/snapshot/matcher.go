package snapshot

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ignoreMatcher is the compiled form of Options.IgnorePatterns: a single
// predicate over root-relative slash paths. Patterns are validated once at
// construction so malformed globs surface before the walk starts; an empty
// pattern list matches nothing.
type ignoreMatcher struct {
	patterns []string
}

// newIgnoreMatcher validates every pattern and returns the compiled
// predicate. The first malformed pattern is reported as *InvalidPatternError.
func newIgnoreMatcher(patterns []string) (*ignoreMatcher, error) {
	for _, patternValue := range patterns {
		if !doublestar.ValidatePattern(patternValue) {
			return nil, &InvalidPatternError{Pattern: patternValue, Err: doublestar.ErrBadPattern}
		}
	}
	compiledPatterns := make([]string, len(patterns))
	copy(compiledPatterns, patterns)
	return &ignoreMatcher{patterns: compiledPatterns}, nil
}

// matches reports whether relativePath is excluded by any pattern. Patterns
// without a path separator are evaluated against the final path component,
// so "*.log" excludes a log file at any depth; patterns with a separator are
// evaluated against the whole root-relative path.
func (matcher *ignoreMatcher) matches(relativePath string) bool {
	lastComponent := relativePath
	if separatorIndex := strings.LastIndex(relativePath, "/"); separatorIndex >= 0 {
		lastComponent = relativePath[separatorIndex+1:]
	}
	for _, patternValue := range matcher.patterns {
		candidate := relativePath
		if !strings.Contains(patternValue, "/") {
			candidate = lastComponent
		}
		matched, matchError := doublestar.Match(patternValue, candidate)
		if matchError == nil && matched {
			return true
		}
	}
	return false
}
