package snapshot

import (
	"errors"
	"testing"
)

// malformedPattern is a glob with an unterminated character class.
const malformedPattern = "[unclosed"

// TestIgnoreMatcherMatches verifies pattern evaluation over root-relative paths.
func TestIgnoreMatcherMatches(testingInstance *testing.T) {
	testCases := []struct {
		testName     string
		patterns     []string
		relativePath string
		expected     bool
	}{
		{
			testName:     "empty pattern list",
			patterns:     nil,
			relativePath: "main.go",
			expected:     false,
		},
		{
			testName:     "basename pattern at root",
			patterns:     []string{"*.log"},
			relativePath: "debug.log",
			expected:     true,
		},
		{
			testName:     "basename pattern at depth",
			patterns:     []string{"*.log"},
			relativePath: "logs/nested/debug.log",
			expected:     true,
		},
		{
			testName:     "basename pattern misses other extension",
			patterns:     []string{"*.log"},
			relativePath: "logs/debug.txt",
			expected:     false,
		},
		{
			testName:     "directory name pattern",
			patterns:     []string{"target"},
			relativePath: "target",
			expected:     true,
		},
		{
			testName:     "path pattern anchored",
			patterns:     []string{"build/*.o"},
			relativePath: "build/main.o",
			expected:     true,
		},
		{
			testName:     "path pattern misses nested entry",
			patterns:     []string{"build/*.o"},
			relativePath: "build/debug/main.o",
			expected:     false,
		},
		{
			testName:     "doublestar spans directories",
			patterns:     []string{"**/node_modules"},
			relativePath: "web/app/node_modules",
			expected:     true,
		},
		{
			testName:     "second pattern matches",
			patterns:     []string{"*.tmp", "*.bak"},
			relativePath: "notes.bak",
			expected:     true,
		},
	}
	for index, testCase := range testCases {
		matcher, matcherError := newIgnoreMatcher(testCase.patterns)
		if matcherError != nil {
			testingInstance.Fatalf("case %d (%s): compiling matcher: %v", index, testCase.testName, matcherError)
		}
		actual := matcher.matches(testCase.relativePath)
		if actual != testCase.expected {
			testingInstance.Errorf("case %d (%s): expected %t, got %t", index, testCase.testName, testCase.expected, actual)
		}
	}
}

// TestNewIgnoreMatcherRejectsMalformedPattern verifies that compilation fails
// before any traversal could start and names the offending pattern.
func TestNewIgnoreMatcherRejectsMalformedPattern(testingInstance *testing.T) {
	matcher, matcherError := newIgnoreMatcher([]string{"*.log", malformedPattern})
	if matcherError == nil {
		testingInstance.Fatalf("expected error for pattern %q, got matcher %v", malformedPattern, matcher)
	}
	var patternError *InvalidPatternError
	if !errors.As(matcherError, &patternError) {
		testingInstance.Fatalf("expected *InvalidPatternError, got %T", matcherError)
	}
	if patternError.Pattern != malformedPattern {
		testingInstance.Errorf("expected offending pattern %q, got %q", malformedPattern, patternError.Pattern)
	}
}
