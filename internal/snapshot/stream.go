package snapshot

// Stream is the pull cursor of the streaming strategy. Each Next call
// advances the walk and captures at most one file; nothing beyond the record
// in flight is ever buffered, and no Snapshot is materialized. Failures
// scoped to one entry come back in-band, so a caller can skip past them and
// keep pulling.
type Stream struct {
	directoryWalker *walker
	capture         *fileCapture
}

// NewStream validates options and prepares the lazy walk without visiting
// any entry. Configuration problems (bad root, malformed pattern, unknown
// detection mode) are reported here, before the first pull.
func NewStream(options Options) (*Stream, error) {
	if detectionError := options.validateDetection(); detectionError != nil {
		return nil, detectionError
	}
	directoryWalker, walkerError := newWalker(options)
	if walkerError != nil {
		return nil, walkerError
	}
	return &Stream{
		directoryWalker: directoryWalker,
		capture:         newFileCapture(options),
	}, nil
}

// Next returns the next captured record. *TraversalError and *FileError
// returns are in-band: they report one unreadable directory or file, and the
// following call resumes with the next entry. io.EOF reports an exhausted
// stream.
func (stream *Stream) Next() (*FileRecord, error) {
	for {
		entry, nextError := stream.directoryWalker.next()
		if nextError != nil {
			return nil, nextError
		}
		if !entry.isRegular {
			continue
		}
		record, captureError := stream.capture.capture(entry)
		if captureError != nil {
			return nil, captureError
		}
		return &record, nil
	}
}
