package snapshot

import (
	"fmt"
	"runtime"
)

// BinaryDetection selects how captured files are classified as binary.
type BinaryDetection string

const (
	// DetectionNone disables classification; every file is treated as text.
	DetectionNone BinaryDetection = "none"
	// DetectionSimple classifies a file as binary when a zero byte appears in the probe window.
	DetectionSimple BinaryDetection = "simple"
	// DetectionAccurate delegates classification to content sniffing over the probe window.
	DetectionAccurate BinaryDetection = "accurate"
)

// Strategy selects how content capture is orchestrated over the walk results.
type Strategy string

const (
	// StrategySequential captures files one at a time in walk order.
	StrategySequential Strategy = "sequential"
	// StrategyParallel fans capture out across a bounded worker pool.
	StrategyParallel Strategy = "parallel"
	// StrategyStreaming hands records to the caller one pull at a time; see NewStream.
	StrategyStreaming Strategy = "streaming"
)

// UnlimitedDepth disables the traversal depth bound.
const UnlimitedDepth = -1

const (
	// unknownDetectionMessageFormat reports an unrecognized binary detection mode.
	unknownDetectionMessageFormat = "unknown binary detection mode %q"
	// unknownStrategyMessageFormat reports an unrecognized execution strategy.
	unknownStrategyMessageFormat = "unknown execution strategy %q"
)

// Options configures one snapshot run. Callers should start from
// DefaultOptions and override fields; the engine reads the struct and never
// mutates it.
type Options struct {
	// Root is the directory the walk starts from.
	Root string
	// RespectGitignore applies .gitignore rules found at and below Root.
	RespectGitignore bool
	// IncludeHidden keeps entries whose name starts with a dot.
	IncludeHidden bool
	// FollowSymlinks descends into symlinked directories instead of listing
	// them as leaves.
	FollowSymlinks bool
	// MaxDepth bounds traversal depth measured in path segments below Root;
	// Root itself is depth zero and entries beyond the bound are never
	// visited. Negative values leave the walk unbounded.
	MaxDepth int
	// IgnorePatterns lists glob patterns whose matches are excluded from the
	// walk. Patterns without a path separator match the final path
	// component; patterns with one match the whole root-relative path.
	IgnorePatterns []string
	// FileSizeLimit withholds content of files larger than this many bytes.
	// Zero or negative disables the limit.
	FileSizeLimit int64
	// BinaryDetection selects the binary classification mode.
	BinaryDetection BinaryDetection
	// IncludeFileSize attaches the size in bytes to every file record.
	IncludeFileSize bool
	// Strategy selects the execution strategy used by Capture.
	Strategy Strategy
	// Workers bounds the parallel strategy's pool; zero or negative selects
	// runtime.GOMAXPROCS(0).
	Workers int
}

// DefaultOptions returns the baseline configuration: gitignore rules
// respected, hidden entries excluded, symlinks listed as leaves, unbounded
// depth, no size limit, simple binary detection, sequential execution.
func DefaultOptions(rootPath string) Options {
	return Options{
		Root:             rootPath,
		RespectGitignore: true,
		MaxDepth:         UnlimitedDepth,
		BinaryDetection:  DetectionSimple,
		Strategy:         StrategySequential,
	}
}

// validate rejects option values the engine cannot honor.
func (options Options) validate() error {
	if detectionError := options.validateDetection(); detectionError != nil {
		return detectionError
	}
	switch options.Strategy {
	case StrategySequential, StrategyParallel, StrategyStreaming:
		return nil
	default:
		return fmt.Errorf(unknownStrategyMessageFormat, options.Strategy)
	}
}

// validateDetection rejects unrecognized binary detection modes.
func (options Options) validateDetection() error {
	switch options.BinaryDetection {
	case DetectionNone, DetectionSimple, DetectionAccurate:
		return nil
	default:
		return fmt.Errorf(unknownDetectionMessageFormat, options.BinaryDetection)
	}
}

// workerCount resolves the effective parallel pool size.
func (options Options) workerCount() int {
	if options.Workers > 0 {
		return options.Workers
	}
	return runtime.GOMAXPROCS(0)
}
