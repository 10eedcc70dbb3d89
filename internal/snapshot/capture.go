package snapshot

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

const (
	// probeWindowSize is the number of leading bytes inspected for binary
	// classification. Files at or below this size are fully read by the probe.
	probeWindowSize = 4096
	// replacementString substitutes invalid UTF-8 sequences during lossy decoding.
	replacementString = "�"
	// textMimeType is the ancestor MIME type that marks sniffed content as text.
	textMimeType = "text/plain"
)

// fileCapture performs the per-file content decision of one snapshot run:
// size-limit short-circuit, probe read, binary classification, then either a
// placeholder or the full lossily-decoded text.
type fileCapture struct {
	sizeLimit       int64
	detection       BinaryDetection
	includeFileSize bool
}

// newFileCapture derives the capture policy from the run options.
func newFileCapture(options Options) *fileCapture {
	return &fileCapture{
		sizeLimit:       options.FileSizeLimit,
		detection:       options.BinaryDetection,
		includeFileSize: options.IncludeFileSize,
	}
}

// capture produces the record for one regular file. Every I/O failure is
// scoped to this file and reported as *FileError.
func (capture *fileCapture) capture(entry walkEntry) (FileRecord, error) {
	record := FileRecord{Path: entry.path}

	if capture.includeFileSize {
		fileInfo, statError := os.Stat(entry.absolutePath)
		if statError != nil {
			return FileRecord{}, &FileError{Path: entry.path, Err: statError}
		}
		sizeValue := fileInfo.Size()
		record.Size = &sizeValue
	}

	if capture.sizeLimit > 0 {
		fileInfo, statError := os.Stat(entry.absolutePath)
		if statError != nil {
			return FileRecord{}, &FileError{Path: entry.path, Err: statError}
		}
		if fileInfo.Size() > capture.sizeLimit {
			zap.L().Debug("file too large",
				zap.String("path", entry.path),
				zap.Int64("size", fileInfo.Size()),
				zap.Int64("limit", capture.sizeLimit))
			record.Content = TooLargePlaceholder
			return record, nil
		}
	}

	fileHandle, openError := os.Open(entry.absolutePath)
	if openError != nil {
		return FileRecord{}, &FileError{Path: entry.path, Err: openError}
	}
	defer fileHandle.Close()

	probeBuffer := make([]byte, probeWindowSize)
	probeLength, probeError := io.ReadFull(fileHandle, probeBuffer)
	if probeError != nil && probeError != io.EOF && probeError != io.ErrUnexpectedEOF {
		return FileRecord{}, &FileError{Path: entry.path, Err: probeError}
	}
	probeWindow := probeBuffer[:probeLength]

	if capture.classify(probeWindow) {
		zap.L().Debug("binary file detected", zap.String("path", entry.path))
		record.Content = BinaryPlaceholder
		record.IsBinary = true
		return record, nil
	}

	remainder, readError := io.ReadAll(fileHandle)
	if readError != nil {
		return FileRecord{}, &FileError{Path: entry.path, Err: readError}
	}
	record.Content = decodeLossy(probeWindow, remainder)
	return record, nil
}

// classify reports whether the probe window marks the file as binary.
func (capture *fileCapture) classify(probeWindow []byte) bool {
	switch capture.detection {
	case DetectionNone:
		return false
	case DetectionAccurate:
		return !isTextContent(probeWindow)
	default:
		return bytes.IndexByte(probeWindow, 0) >= 0
	}
}

// isTextContent sniffs the probe window and walks the detected MIME type's
// ancestry looking for a text ancestor.
func isTextContent(probeWindow []byte) bool {
	if len(probeWindow) == 0 {
		return true
	}
	for candidate := mimetype.Detect(probeWindow); candidate != nil; candidate = candidate.Parent() {
		if candidate.Is(textMimeType) {
			return true
		}
	}
	return false
}

// decodeLossy joins the probe window with the remainder of the file and
// replaces invalid UTF-8 sequences instead of failing the capture. Joining
// before decoding keeps a multi-byte rune that straddles the probe boundary
// intact.
func decodeLossy(probeWindow, remainder []byte) string {
	if len(remainder) == 0 {
		return strings.ToValidUTF8(string(probeWindow), replacementString)
	}
	combined := make([]byte, 0, len(probeWindow)+len(remainder))
	combined = append(combined, probeWindow...)
	combined = append(combined, remainder...)
	return strings.ToValidUTF8(string(combined), replacementString)
}
