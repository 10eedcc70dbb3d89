package snapshot_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/dirsnap/dirsnap/internal/snapshot"
)

// pullAllRecords drains a stream, returning records and in-band failures in
// pull order.
func pullAllRecords(testingInstance *testing.T, recordStream *snapshot.Stream) ([]snapshot.FileRecord, []error) {
	testingInstance.Helper()
	var records []snapshot.FileRecord
	var failures []error
	for {
		record, nextError := recordStream.Next()
		if nextError == io.EOF {
			return records, failures
		}
		if nextError != nil {
			failures = append(failures, nextError)
			continue
		}
		records = append(records, *record)
	}
}

// TestStreamYieldsRecordsThenEOF verifies pull-order delivery and a sticky
// end-of-stream marker.
func TestStreamYieldsRecordsThenEOF(testingInstance *testing.T) {
	temporaryRoot := testingInstance.TempDir()
	writeFixtureFile(testingInstance, filepath.Join(temporaryRoot, "first.txt"), []byte("first"))
	writeFixtureFile(testingInstance, filepath.Join(temporaryRoot, "second.txt"), []byte("second"))

	recordStream, streamError := snapshot.NewStream(snapshot.DefaultOptions(temporaryRoot))
	if streamError != nil {
		testingInstance.Fatalf("constructing stream: %v", streamError)
	}

	firstRecord, firstError := recordStream.Next()
	if firstError != nil || firstRecord.Content != "first" {
		testingInstance.Fatalf("expected first.txt, got %v (%v)", firstRecord, firstError)
	}
	secondRecord, secondError := recordStream.Next()
	if secondError != nil || secondRecord.Content != "second" {
		testingInstance.Fatalf("expected second.txt, got %v (%v)", secondRecord, secondError)
	}
	if _, endError := recordStream.Next(); endError != io.EOF {
		testingInstance.Fatalf("expected io.EOF, got %v", endError)
	}
	if _, repeatedError := recordStream.Next(); repeatedError != io.EOF {
		testingInstance.Fatalf("expected io.EOF to repeat, got %v", repeatedError)
	}
}

// TestStreamContinuesPastFileError verifies partial-failure isolation: a
// capture failure is returned in-band and the next pull resumes the walk.
func TestStreamContinuesPastFileError(testingInstance *testing.T) {
	temporaryRoot := testingInstance.TempDir()
	writeFixtureFile(testingInstance, filepath.Join(temporaryRoot, "aaa.txt"), []byte("aaa"))
	writeFixtureFile(testingInstance, filepath.Join(temporaryRoot, "bbb.txt"), []byte("bbb"))
	writeFixtureFile(testingInstance, filepath.Join(temporaryRoot, "ccc.txt"), []byte("ccc"))

	recordStream, streamError := snapshot.NewStream(snapshot.DefaultOptions(temporaryRoot))
	if streamError != nil {
		testingInstance.Fatalf("constructing stream: %v", streamError)
	}

	firstRecord, firstError := recordStream.Next()
	if firstError != nil || firstRecord.Content != "aaa" {
		testingInstance.Fatalf("expected aaa.txt first, got %v (%v)", firstRecord, firstError)
	}

	removedPath := filepath.Join(temporaryRoot, "bbb.txt")
	if removeError := os.Remove(removedPath); removeError != nil {
		testingInstance.Fatalf("removing %s: %v", removedPath, removeError)
	}

	_, captureFailure := recordStream.Next()
	if captureFailure == nil {
		testingInstance.Fatalf("expected an in-band capture error")
	}
	var fileFailure *snapshot.FileError
	if !errors.As(captureFailure, &fileFailure) {
		testingInstance.Fatalf("expected *FileError, got %T", captureFailure)
	}
	if fileFailure.Path != removedPath {
		testingInstance.Errorf("expected failing path %s, got %s", removedPath, fileFailure.Path)
	}

	thirdRecord, thirdError := recordStream.Next()
	if thirdError != nil || thirdRecord.Content != "ccc" {
		testingInstance.Fatalf("expected ccc.txt after the error, got %v (%v)", thirdRecord, thirdError)
	}
	if _, endError := recordStream.Next(); endError != io.EOF {
		testingInstance.Fatalf("expected io.EOF, got %v", endError)
	}
}

// TestStreamReportsTraversalErrorInBand verifies that an unreadable
// directory surfaces as one in-band error while later siblings still stream.
func TestStreamReportsTraversalErrorInBand(testingInstance *testing.T) {
	temporaryRoot := testingInstance.TempDir()
	writeFixtureFile(testingInstance, filepath.Join(temporaryRoot, "aaa.txt"), []byte("aaa"))
	writeFixtureFile(testingInstance, filepath.Join(temporaryRoot, "sub", "inner.txt"), []byte("inner"))
	writeFixtureFile(testingInstance, filepath.Join(temporaryRoot, "zzz.txt"), []byte("zzz"))

	recordStream, streamError := snapshot.NewStream(snapshot.DefaultOptions(temporaryRoot))
	if streamError != nil {
		testingInstance.Fatalf("constructing stream: %v", streamError)
	}

	firstRecord, firstError := recordStream.Next()
	if firstError != nil || firstRecord.Content != "aaa" {
		testingInstance.Fatalf("expected aaa.txt first, got %v (%v)", firstRecord, firstError)
	}

	subdirectoryPath := filepath.Join(temporaryRoot, "sub")
	if removeError := os.RemoveAll(subdirectoryPath); removeError != nil {
		testingInstance.Fatalf("removing subdirectory: %v", removeError)
	}
	writeFixtureFile(testingInstance, subdirectoryPath, []byte("now a file"))

	_, walkFailure := recordStream.Next()
	var traversalError *snapshot.TraversalError
	if !errors.As(walkFailure, &traversalError) {
		testingInstance.Fatalf("expected *TraversalError, got %v", walkFailure)
	}

	lastRecord, lastError := recordStream.Next()
	if lastError != nil || lastRecord.Content != "zzz" {
		testingInstance.Fatalf("expected zzz.txt after the error, got %v (%v)", lastRecord, lastError)
	}
	if _, endError := recordStream.Next(); endError != io.EOF {
		testingInstance.Fatalf("expected io.EOF, got %v", endError)
	}
}

// TestStreamCollectsEverythingAfterErrors verifies that a caller looping
// past in-band failures still receives every healthy record.
func TestStreamCollectsEverythingAfterErrors(testingInstance *testing.T) {
	temporaryRoot := testingInstance.TempDir()
	writeFixtureFile(testingInstance, filepath.Join(temporaryRoot, "one.txt"), []byte("one"))
	writeFixtureFile(testingInstance, filepath.Join(temporaryRoot, "two.txt"), []byte("two"))
	writeFixtureFile(testingInstance, filepath.Join(temporaryRoot, "three.txt"), []byte("three"))

	recordStream, streamError := snapshot.NewStream(snapshot.DefaultOptions(temporaryRoot))
	if streamError != nil {
		testingInstance.Fatalf("constructing stream: %v", streamError)
	}
	firstRecord, firstError := recordStream.Next()
	if firstError != nil || firstRecord.Content != "one" {
		testingInstance.Fatalf("expected one.txt first, got %v (%v)", firstRecord, firstError)
	}
	if removeError := os.Remove(filepath.Join(temporaryRoot, "three.txt")); removeError != nil {
		testingInstance.Fatalf("removing three.txt: %v", removeError)
	}

	records, failures := pullAllRecords(testingInstance, recordStream)
	if len(records) != 1 || records[0].Content != "two" {
		testingInstance.Errorf("expected two.txt to survive, got %v", records)
	}
	if len(failures) != 1 {
		testingInstance.Errorf("expected a single in-band failure, got %v", failures)
	}
}

// TestNewStreamFailsFast verifies that configuration problems surface at
// construction, before the first pull.
func TestNewStreamFailsFast(testingInstance *testing.T) {
	temporaryRoot := testingInstance.TempDir()

	missingOptions := snapshot.DefaultOptions(filepath.Join(temporaryRoot, "missing"))
	if _, missingError := snapshot.NewStream(missingOptions); missingError == nil {
		testingInstance.Errorf("expected an error for a missing root")
	}

	patternOptions := snapshot.DefaultOptions(temporaryRoot)
	patternOptions.IgnorePatterns = []string{"[bad"}
	if _, patternError := snapshot.NewStream(patternOptions); patternError == nil {
		testingInstance.Errorf("expected an error for a malformed pattern")
	}

	detectionOptions := snapshot.DefaultOptions(temporaryRoot)
	detectionOptions.BinaryDetection = snapshot.BinaryDetection("magic")
	if _, detectionError := snapshot.NewStream(detectionOptions); detectionError == nil {
		testingInstance.Errorf("expected an error for an unknown detection mode")
	}
}
