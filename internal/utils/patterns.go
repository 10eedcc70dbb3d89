package utils

// DeduplicatePatterns drops repeated patterns while keeping the original
// order. The first occurrence of each pattern wins. The returned slice is
// never nil.
func DeduplicatePatterns(patterns []string) []string {
	deduplicated := make([]string, 0, len(patterns))
	seenPatterns := make(map[string]struct{}, len(patterns))
	for _, pattern := range patterns {
		if _, alreadySeen := seenPatterns[pattern]; alreadySeen {
			continue
		}
		seenPatterns[pattern] = struct{}{}
		deduplicated = append(deduplicated, pattern)
	}
	return deduplicated
}
