package snapshot

import "fmt"

const (
	// invalidPathMessageFormat describes a root path that cannot be walked.
	invalidPathMessageFormat = "invalid root path %s: %v"
	// invalidPatternMessageFormat describes an ignore pattern that failed to compile.
	invalidPatternMessageFormat = "invalid ignore pattern %q: %v"
	// traversalMessageFormat describes a directory that could not be enumerated.
	traversalMessageFormat = "walking %s: %v"
	// fileMessageFormat describes a single-file capture failure.
	fileMessageFormat = "capturing %s: %v"
)

// InvalidPathError reports a root path that does not exist or is not a
// directory. It is returned before any traversal work starts.
type InvalidPathError struct {
	Path string
	Err  error
}

// Error describes the rejected root and the underlying cause.
func (invalidPath *InvalidPathError) Error() string {
	return fmt.Sprintf(invalidPathMessageFormat, invalidPath.Path, invalidPath.Err)
}

// Unwrap exposes the underlying cause.
func (invalidPath *InvalidPathError) Unwrap() error { return invalidPath.Err }

// InvalidPatternError reports an ignore pattern the matcher could not
// compile. It is returned before any traversal work starts.
type InvalidPatternError struct {
	Pattern string
	Err     error
}

// Error describes the offending pattern and the underlying syntax error.
func (invalidPattern *InvalidPatternError) Error() string {
	return fmt.Sprintf(invalidPatternMessageFormat, invalidPattern.Pattern, invalidPattern.Err)
}

// Unwrap exposes the underlying syntax error.
func (invalidPattern *InvalidPatternError) Unwrap() error { return invalidPattern.Err }

// TraversalError reports a directory whose entries could not be enumerated
// mid-walk. The walker yields it in-band and continues with the rest of the
// tree; the all-or-nothing strategies escalate it to a fatal result.
type TraversalError struct {
	Path string
	Err  error
}

// Error describes the unreadable directory and the underlying cause.
func (traversal *TraversalError) Error() string {
	return fmt.Sprintf(traversalMessageFormat, traversal.Path, traversal.Err)
}

// Unwrap exposes the underlying cause.
func (traversal *TraversalError) Unwrap() error { return traversal.Err }

// FileError reports an I/O failure while capturing a single file. It is
// scoped to that file: the streaming strategy yields it in-band, the
// all-or-nothing strategies abort with it.
type FileError struct {
	Path string
	Err  error
}

// Error describes the failed file and the underlying cause.
func (fileFailure *FileError) Error() string {
	return fmt.Sprintf(fileMessageFormat, fileFailure.Path, fileFailure.Err)
}

// Unwrap exposes the underlying cause.
func (fileFailure *FileError) Unwrap() error { return fileFailure.Err }
