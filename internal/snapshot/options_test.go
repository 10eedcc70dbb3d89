package snapshot

import (
	"runtime"
	"testing"
)

// TestDefaultOptions verifies the baseline configuration.
func TestDefaultOptions(testingInstance *testing.T) {
	options := DefaultOptions("some/root")
	if options.Root != "some/root" {
		testingInstance.Errorf("expected root to be kept, got %s", options.Root)
	}
	if !options.RespectGitignore {
		testingInstance.Errorf("expected gitignore rules to be respected by default")
	}
	if options.IncludeHidden || options.FollowSymlinks || options.IncludeFileSize {
		testingInstance.Errorf("expected hidden, symlink, and size switches to default off")
	}
	if options.MaxDepth != UnlimitedDepth {
		testingInstance.Errorf("expected unbounded depth, got %d", options.MaxDepth)
	}
	if options.FileSizeLimit != 0 {
		testingInstance.Errorf("expected no size limit, got %d", options.FileSizeLimit)
	}
	if options.BinaryDetection != DetectionSimple {
		testingInstance.Errorf("expected simple detection, got %s", options.BinaryDetection)
	}
	if options.Strategy != StrategySequential {
		testingInstance.Errorf("expected sequential strategy, got %s", options.Strategy)
	}
}

// TestOptionsValidate verifies enum validation of detection and strategy.
func TestOptionsValidate(testingInstance *testing.T) {
	testCases := []struct {
		testName    string
		detection   BinaryDetection
		strategy    Strategy
		expectError bool
	}{
		{
			testName:    "valid combination",
			detection:   DetectionAccurate,
			strategy:    StrategyParallel,
			expectError: false,
		},
		{
			testName:    "streaming is a known strategy",
			detection:   DetectionSimple,
			strategy:    StrategyStreaming,
			expectError: false,
		},
		{
			testName:    "unknown detection",
			detection:   BinaryDetection("magic"),
			strategy:    StrategySequential,
			expectError: true,
		},
		{
			testName:    "unknown strategy",
			detection:   DetectionSimple,
			strategy:    Strategy("psychic"),
			expectError: true,
		},
		{
			testName:    "zero value detection",
			detection:   BinaryDetection(""),
			strategy:    StrategySequential,
			expectError: true,
		},
	}
	for index, testCase := range testCases {
		options := DefaultOptions(".")
		options.BinaryDetection = testCase.detection
		options.Strategy = testCase.strategy
		validationError := options.validate()
		if (validationError != nil) != testCase.expectError {
			testingInstance.Errorf("case %d (%s): expected error %t, got %v", index, testCase.testName, testCase.expectError, validationError)
		}
	}
}

// TestWorkerCount verifies pool-size resolution.
func TestWorkerCount(testingInstance *testing.T) {
	explicit := Options{Workers: 5}
	if explicit.workerCount() != 5 {
		testingInstance.Errorf("expected explicit worker count, got %d", explicit.workerCount())
	}
	automatic := Options{}
	if automatic.workerCount() != runtime.GOMAXPROCS(0) {
		testingInstance.Errorf("expected GOMAXPROCS fallback, got %d", automatic.workerCount())
	}
}
