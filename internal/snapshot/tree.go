package snapshot

import (
	"path"
	"sort"
	"strings"
)

const (
	// treeHeaderPrefix starts the root line of the tree.
	treeHeaderPrefix = ".  # "
	// treeBranchPrefix is repeated once per depth level below the first.
	treeBranchPrefix = "│   "
	// treeConnector precedes every entry name, the last sibling of a group
	// included.
	treeConnector = "├── "
)

// renderTree produces the ASCII tree for the visited entries. It is a pure
// function of the root label and the entry set: entries are re-sorted by
// their path-component sequence, so identical inputs render identically no
// matter what order the walk produced them in.
func renderTree(rootLabel string, entries []walkEntry) string {
	sortedEntries := make([]walkEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.relativePath == rootRelativePath {
			continue
		}
		sortedEntries = append(sortedEntries, entry)
	}
	sort.Slice(sortedEntries, func(firstIndex, secondIndex int) bool {
		return comparePathComponents(sortedEntries[firstIndex].relativePath, sortedEntries[secondIndex].relativePath) < 0
	})

	var treeBuilder strings.Builder
	treeBuilder.WriteString(treeHeaderPrefix)
	treeBuilder.WriteString(rootLabel)
	for _, entry := range sortedEntries {
		treeBuilder.WriteByte('\n')
		treeBuilder.WriteString(strings.Repeat(treeBranchPrefix, entry.depth-1))
		treeBuilder.WriteString(treeConnector)
		treeBuilder.WriteString(path.Base(entry.relativePath))
	}
	return treeBuilder.String()
}

// comparePathComponents orders two slash-separated relative paths by their
// component sequences rather than their raw strings, keeping a file and its
// ancestor directories adjacent.
func comparePathComponents(firstPath, secondPath string) int {
	firstComponents := strings.Split(firstPath, "/")
	secondComponents := strings.Split(secondPath, "/")
	commonLength := len(firstComponents)
	if len(secondComponents) < commonLength {
		commonLength = len(secondComponents)
	}
	for componentIndex := 0; componentIndex < commonLength; componentIndex++ {
		if firstComponents[componentIndex] != secondComponents[componentIndex] {
			if firstComponents[componentIndex] < secondComponents[componentIndex] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(firstComponents) == len(secondComponents):
		return 0
	case len(firstComponents) < len(secondComponents):
		return -1
	default:
		return 1
	}
}
