package snapshot

const (
	// TooLargePlaceholder replaces the content of files above Options.FileSizeLimit.
	TooLargePlaceholder = "[File too large, content omitted]"
	// BinaryPlaceholder replaces the content of files classified as binary.
	BinaryPlaceholder = "[Binary file, content omitted]"
)

// FileRecord describes one regular file visited by the walk: its path, its
// content or a placeholder, and the binary/size metadata the capture decided
// on. Records are created once per file and never mutated afterwards.
type FileRecord struct {
	Path     string `json:"path"`
	Content  string `json:"content"`
	IsBinary bool   `json:"is_binary"`
	Size     *int64 `json:"size,omitempty"`
}

// Snapshot aggregates the rendered tree and the captured file records of one
// walk. Both are derived from the same enumeration; the engine never walks
// the root a second time.
type Snapshot struct {
	Tree  string       `json:"tree"`
	Files []FileRecord `json:"files"`
}
