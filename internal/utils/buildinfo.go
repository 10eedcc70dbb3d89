// Package utils provides shared helpers: logger construction, size
// formatting, pattern deduplication, and application version retrieval.
package utils

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime/debug"
	"strings"
)

const (
	// unknownVersion is reported when no version source is available.
	unknownVersion = "unknown"
	// developmentVersion is the placeholder the Go toolchain stamps on
	// builds that did not come from a tagged module version.
	developmentVersion = "(devel)"
	// gitDirectoryName marks a repository root during the upward search.
	gitDirectoryName = ".git"
)

// GetApplicationVersion resolves the version string to display. It prefers
// the module version stamped into the binary, falls back to describing the
// enclosing git repository, and reports "unknown" when neither works.
func GetApplicationVersion() string {
	if buildInfo, available := debug.ReadBuildInfo(); available {
		stampedVersion := buildInfo.Main.Version
		if stampedVersion != "" && stampedVersion != developmentVersion {
			return stampedVersion
		}
	}

	repositoryRoot, rootFound := findRepositoryRoot(".")
	if !rootFound {
		return unknownVersion
	}
	if describedVersion := describeRepository(repositoryRoot); describedVersion != "" {
		return describedVersion
	}
	return unknownVersion
}

// describeRepository asks git for the nearest tag, preferring an exact match
// over the long describe form. It returns an empty string when git cannot
// produce either.
func describeRepository(repositoryRoot string) string {
	describeArgumentSets := [][]string{
		{"describe", "--tags", "--exact-match"},
		{"describe", "--tags", "--long", "--dirty"},
	}
	for _, describeArguments := range describeArgumentSets {
		// #nosec G204
		describeCommand := exec.Command("git", describeArguments...)
		describeCommand.Dir = repositoryRoot
		describeOutput, describeError := describeCommand.Output()
		if describeError == nil && len(describeOutput) > 0 {
			return strings.TrimSpace(string(describeOutput))
		}
	}
	return ""
}

// findRepositoryRoot walks upward from startDirectory until it finds a
// directory containing a .git folder.
func findRepositoryRoot(startDirectory string) (string, bool) {
	currentDirectory, absoluteError := filepath.Abs(startDirectory)
	if absoluteError != nil {
		return "", false
	}
	for {
		gitInformation, statError := os.Stat(filepath.Join(currentDirectory, gitDirectoryName))
		if statError == nil && gitInformation.IsDir() {
			return currentDirectory, true
		}
		parentDirectory := filepath.Dir(currentDirectory)
		if parentDirectory == currentDirectory {
			return "", false
		}
		currentDirectory = parentDirectory
	}
}
