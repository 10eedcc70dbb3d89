// Package snapshot implements the directory snapshot engine: a filtered walk
// of a root directory, per-file content capture with binary and size
// policies, a deterministic ASCII tree rendering, and the execution
// strategies that combine them.
package snapshot

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// captureStreamingMessage explains why Capture rejects the streaming strategy.
const captureStreamingMessage = "streaming capture never materializes a snapshot; use NewStream"

// Capture walks options.Root once and returns the rendered tree together
// with the captured file records, orchestrated by the sequential or parallel
// strategy from options. The run is all-or-nothing: the first traversal or
// capture failure aborts it. Configuration problems (bad root, malformed
// pattern, unknown mode) are reported before any traversal work starts.
func Capture(options Options) (*Snapshot, error) {
	if validationError := options.validate(); validationError != nil {
		return nil, validationError
	}
	if options.Strategy == StrategyStreaming {
		return nil, errors.New(captureStreamingMessage)
	}
	directoryWalker, walkerError := newWalker(options)
	if walkerError != nil {
		return nil, walkerError
	}
	entries, collectError := directoryWalker.collect()
	if collectError != nil {
		return nil, collectError
	}

	renderedTree := renderTree(options.Root, entries)
	capture := newFileCapture(options)
	capturable := fileEntries(entries)

	var records []FileRecord
	var captureError error
	if options.Strategy == StrategyParallel {
		records, captureError = captureParallel(capturable, capture, options.workerCount())
	} else {
		records, captureError = captureSequential(capturable, capture)
	}
	if captureError != nil {
		return nil, captureError
	}
	return &Snapshot{Tree: renderedTree, Files: records}, nil
}

// Tree walks options.Root and returns only the rendered tree; no file
// content is read.
func Tree(options Options) (string, error) {
	entries, walkError := walkAll(options)
	if walkError != nil {
		return "", walkError
	}
	return renderTree(options.Root, entries), nil
}

// Paths walks options.Root and returns the paths a capture would visit,
// in walk order, without reading any content.
func Paths(options Options) ([]string, error) {
	entries, walkError := walkAll(options)
	if walkError != nil {
		return nil, walkError
	}
	capturable := fileEntries(entries)
	filePaths := make([]string, 0, len(capturable))
	for _, entry := range capturable {
		filePaths = append(filePaths, entry.path)
	}
	return filePaths, nil
}

// walkAll enumerates the whole subtree, escalating in-band traversal errors.
func walkAll(options Options) ([]walkEntry, error) {
	directoryWalker, walkerError := newWalker(options)
	if walkerError != nil {
		return nil, walkerError
	}
	return directoryWalker.collect()
}

// fileEntries filters walk results down to capture-eligible regular files.
func fileEntries(entries []walkEntry) []walkEntry {
	capturable := make([]walkEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.isRegular {
			capturable = append(capturable, entry)
		}
	}
	return capturable
}

// captureSequential captures entries one at a time in walk order, aborting
// on the first failure.
func captureSequential(entries []walkEntry, capture *fileCapture) ([]FileRecord, error) {
	records := make([]FileRecord, 0, len(entries))
	for _, entry := range entries {
		record, captureError := capture.capture(entry)
		if captureError != nil {
			return nil, captureError
		}
		records = append(records, record)
	}
	return records, nil
}

// captureParallel fans capture out across a bounded worker pool. Every
// worker fills its own record slot, so assembly needs no lock held across an
// I/O operation; the first failure cancels the remaining work and aborts the
// batch.
func captureParallel(entries []walkEntry, capture *fileCapture, workerLimit int) ([]FileRecord, error) {
	records := make([]FileRecord, len(entries))
	workerGroup, groupContext := errgroup.WithContext(context.Background())
	workerGroup.SetLimit(workerLimit)
	for entryIndex, entry := range entries {
		// Per-iteration copies: required for correct capture by the worker
		// closure when building with a pre-1.22 toolchain.
		entryIndex, entry := entryIndex, entry
		workerGroup.Go(func() error {
			if contextError := groupContext.Err(); contextError != nil {
				return contextError
			}
			record, captureError := capture.capture(entry)
			if captureError != nil {
				return captureError
			}
			records[entryIndex] = record
			return nil
		})
	}
	if waitError := workerGroup.Wait(); waitError != nil {
		return nil, waitError
	}
	return records, nil
}
