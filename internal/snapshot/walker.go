package snapshot

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/monochromegane/go-gitignore"
	"go.uber.org/zap"
)

const (
	// gitignoreFileName is the ignore file honored when Options.RespectGitignore is set.
	gitignoreFileName = ".gitignore"
	// hiddenNamePrefix marks entries excluded unless Options.IncludeHidden is set.
	hiddenNamePrefix = "."
	// rootRelativePath is the relative form of the root entry itself.
	rootRelativePath = "."
)

// errNotDirectory reports a root path that exists but is not a directory.
var errNotDirectory = errors.New("not a directory")

// walkEntry is one filesystem entry that survived every traversal filter.
type walkEntry struct {
	// path is the entry as discovered: the caller's root joined with the
	// relative path. Records and path listings report this form.
	path string
	// absolutePath locates the entry for I/O.
	absolutePath string
	// relativePath is the root-relative slash form; "." for the root itself.
	relativePath string
	// depth counts path segments below the root.
	depth int
	// isDirectory marks directories the walk descends into.
	isDirectory bool
	// isRegular marks regular files (through symlinks) eligible for capture.
	isRegular bool
}

// pendingItem is one queued traversal step: an entry to yield, or an in-band
// traversal error.
type pendingItem struct {
	entry       walkEntry
	ignoreChain []gitignore.IgnoreMatcher
	walkError   error
}

// walker is the traversal cursor. next returns filtered entries one at a
// time in depth-first order; directory read failures come back in-band as
// *TraversalError without ending the walk, and io.EOF marks exhaustion.
type walker struct {
	options Options
	matcher *ignoreMatcher
	pending []pendingItem
}

// newWalker validates the root and compiles the ignore patterns, positioning
// the cursor before the root entry. Beyond the root stat, nothing is read
// from disk until the first next call.
func newWalker(options Options) (*walker, error) {
	compiledMatcher, matcherError := newIgnoreMatcher(options.IgnorePatterns)
	if matcherError != nil {
		return nil, matcherError
	}
	absoluteRoot, absoluteError := filepath.Abs(options.Root)
	if absoluteError != nil {
		return nil, &InvalidPathError{Path: options.Root, Err: absoluteError}
	}
	rootInfo, statError := os.Stat(absoluteRoot)
	if statError != nil {
		return nil, &InvalidPathError{Path: options.Root, Err: statError}
	}
	if !rootInfo.IsDir() {
		return nil, &InvalidPathError{Path: options.Root, Err: errNotDirectory}
	}
	rootEntry := walkEntry{
		path:         filepath.Clean(options.Root),
		absolutePath: absoluteRoot,
		relativePath: rootRelativePath,
		isDirectory:  true,
	}
	return &walker{
		options: options,
		matcher: compiledMatcher,
		pending: []pendingItem{{entry: rootEntry}},
	}, nil
}

// next returns the next visited entry. A *TraversalError return reports an
// unreadable directory and leaves the cursor usable; io.EOF reports
// exhaustion.
func (directoryWalker *walker) next() (walkEntry, error) {
	if len(directoryWalker.pending) == 0 {
		return walkEntry{}, io.EOF
	}
	lastIndex := len(directoryWalker.pending) - 1
	item := directoryWalker.pending[lastIndex]
	directoryWalker.pending = directoryWalker.pending[:lastIndex]

	if item.walkError != nil {
		return walkEntry{}, item.walkError
	}
	if item.entry.isDirectory && directoryWalker.shouldDescend(item.entry.depth) {
		directoryWalker.expand(item)
	}
	return item.entry, nil
}

// collect drains the cursor into a slice, failing on the first in-band
// traversal error. The all-or-nothing strategies enumerate through it.
func (directoryWalker *walker) collect() ([]walkEntry, error) {
	var entries []walkEntry
	for {
		entry, nextError := directoryWalker.next()
		if nextError == io.EOF {
			return entries, nil
		}
		if nextError != nil {
			return nil, nextError
		}
		entries = append(entries, entry)
	}
}

// shouldDescend reports whether children at parentDepth+1 stay within the
// depth bound.
func (directoryWalker *walker) shouldDescend(parentDepth int) bool {
	if directoryWalker.options.MaxDepth < 0 {
		return true
	}
	return parentDepth < directoryWalker.options.MaxDepth
}

// expand reads item's directory and queues the children that pass every
// filter, first child on top. Read failures queue an in-band
// *TraversalError instead.
func (directoryWalker *walker) expand(item pendingItem) {
	directoryEntries, readError := os.ReadDir(item.entry.absolutePath)
	if readError != nil {
		directoryWalker.pending = append(directoryWalker.pending, pendingItem{
			walkError: &TraversalError{Path: item.entry.path, Err: readError},
		})
		return
	}

	ignoreChain := item.ignoreChain
	if directoryWalker.options.RespectGitignore {
		ignoreChain = appendGitignore(ignoreChain, item.entry.absolutePath)
	}

	children := make([]pendingItem, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		childItem, keep := directoryWalker.childItem(item.entry, directoryEntry, ignoreChain)
		if keep {
			children = append(children, childItem)
		}
	}
	for childIndex := len(children) - 1; childIndex >= 0; childIndex-- {
		directoryWalker.pending = append(directoryWalker.pending, children[childIndex])
	}
}

// childItem builds the pending item for one directory entry, reporting
// whether it survives the hidden, ignore-pattern, and gitignore filters.
func (directoryWalker *walker) childItem(parent walkEntry, directoryEntry os.DirEntry, ignoreChain []gitignore.IgnoreMatcher) (pendingItem, bool) {
	entryName := directoryEntry.Name()
	if !directoryWalker.options.IncludeHidden && strings.HasPrefix(entryName, hiddenNamePrefix) {
		return pendingItem{}, false
	}

	childRelative := entryName
	if parent.relativePath != rootRelativePath {
		childRelative = parent.relativePath + "/" + entryName
	}
	if directoryWalker.matcher.matches(childRelative) {
		return pendingItem{}, false
	}

	childAbsolute := filepath.Join(parent.absolutePath, entryName)
	childEntry := walkEntry{
		path:         filepath.Join(directoryWalker.options.Root, filepath.FromSlash(childRelative)),
		absolutePath: childAbsolute,
		relativePath: childRelative,
		depth:        parent.depth + 1,
	}
	directoryWalker.classifyEntry(&childEntry, directoryEntry)

	for _, ignoreFileMatcher := range ignoreChain {
		if ignoreFileMatcher.Match(childAbsolute, childEntry.isDirectory) {
			return pendingItem{}, false
		}
	}
	return pendingItem{entry: childEntry, ignoreChain: ignoreChain}, true
}

// classifyEntry resolves the entry's role: a directory to descend into, a
// capture-eligible regular file, or a tree-only leaf. Symlinks are resolved
// through; symlinked directories are descended only under FollowSymlinks,
// while symlinked regular files stay capture-eligible either way.
func (directoryWalker *walker) classifyEntry(childEntry *walkEntry, directoryEntry os.DirEntry) {
	entryType := directoryEntry.Type()
	switch {
	case entryType.IsDir():
		childEntry.isDirectory = true
	case entryType.IsRegular():
		childEntry.isRegular = true
	case entryType&os.ModeSymlink != 0:
		targetInfo, statError := os.Stat(childEntry.absolutePath)
		if statError != nil {
			return
		}
		if targetInfo.IsDir() {
			childEntry.isDirectory = directoryWalker.options.FollowSymlinks
			return
		}
		childEntry.isRegular = targetInfo.Mode().IsRegular()
	}
}

// appendGitignore extends the matcher chain with directoryPath's .gitignore
// when one is present and parseable. The chain is copied so sibling subtrees
// never observe each other's matchers.
func appendGitignore(ignoreChain []gitignore.IgnoreMatcher, directoryPath string) []gitignore.IgnoreMatcher {
	gitignorePath := filepath.Join(directoryPath, gitignoreFileName)
	if _, statError := os.Stat(gitignorePath); statError != nil {
		return ignoreChain
	}
	ignoreFileMatcher, parseError := gitignore.NewGitIgnore(gitignorePath)
	if parseError != nil {
		zap.L().Debug("unreadable gitignore", zap.String("path", gitignorePath), zap.Error(parseError))
		return ignoreChain
	}
	extendedChain := make([]gitignore.IgnoreMatcher, 0, len(ignoreChain)+1)
	extendedChain = append(extendedChain, ignoreChain...)
	return append(extendedChain, ignoreFileMatcher)
}
