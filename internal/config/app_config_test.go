package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const globalConfigurationContent = `snapshot:
  format: text
  strategy: parallel
  workers: 2
  tokens:
    enabled: true
    model: gpt-4o
  paths:
    exclude:
      - "*.log"
    use_gitignore: false
`

const localConfigurationContent = `snapshot:
  format: json
  file_size_limit: 1024
  paths:
    exclude:
      - "*.tmp"
      - "*.tmp"
`

func writeGlobalConfiguration(t *testing.T, homeDirectory string, content string) {
	t.Helper()
	configurationDirectory := filepath.Join(homeDirectory, GlobalConfigDirectoryName)
	if err := os.MkdirAll(configurationDirectory, 0o755); err != nil {
		t.Fatalf("create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configurationDirectory, GlobalConfigFileName), []byte(content), 0o600); err != nil {
		t.Fatalf("write global config: %v", err)
	}
}

func TestLoadApplicationConfigurationMergesSources(t *testing.T) {
	homeDirectory := t.TempDir()
	workingDirectory := t.TempDir()
	t.Setenv("HOME", homeDirectory)
	t.Setenv("USERPROFILE", homeDirectory)

	writeGlobalConfiguration(t, homeDirectory, globalConfigurationContent)
	if err := os.WriteFile(filepath.Join(workingDirectory, LocalConfigFileName), []byte(localConfigurationContent), 0o600); err != nil {
		t.Fatalf("write local config: %v", err)
	}

	merged, loadErr := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: workingDirectory})
	if loadErr != nil {
		t.Fatalf("LoadApplicationConfiguration error: %v", loadErr)
	}

	if merged.Snapshot.Format != "json" {
		t.Errorf("expected local format json, got %q", merged.Snapshot.Format)
	}
	if merged.Snapshot.Strategy != "parallel" {
		t.Errorf("expected global strategy parallel, got %q", merged.Snapshot.Strategy)
	}
	if merged.Snapshot.Workers == nil || *merged.Snapshot.Workers != 2 {
		t.Errorf("expected global workers 2, got %v", merged.Snapshot.Workers)
	}
	if merged.Snapshot.FileSizeLimit == nil || *merged.Snapshot.FileSizeLimit != 1024 {
		t.Errorf("expected local file size limit 1024, got %v", merged.Snapshot.FileSizeLimit)
	}
	if merged.Snapshot.Tokens.Enabled == nil || !*merged.Snapshot.Tokens.Enabled {
		t.Errorf("expected global tokens enabled, got %v", merged.Snapshot.Tokens.Enabled)
	}
	if merged.Snapshot.Tokens.Model != "gpt-4o" {
		t.Errorf("expected global token model gpt-4o, got %q", merged.Snapshot.Tokens.Model)
	}
	if !reflect.DeepEqual(merged.Snapshot.Paths.Exclude, []string{"*.tmp"}) {
		t.Errorf("expected deduplicated local excludes, got %v", merged.Snapshot.Paths.Exclude)
	}
	if merged.Snapshot.Paths.UseGitignore == nil || *merged.Snapshot.Paths.UseGitignore {
		t.Errorf("expected global use_gitignore false, got %v", merged.Snapshot.Paths.UseGitignore)
	}
}

func TestLoadApplicationConfigurationExplicitPath(t *testing.T) {
	homeDirectory := t.TempDir()
	workingDirectory := t.TempDir()
	t.Setenv("HOME", homeDirectory)
	t.Setenv("USERPROFILE", homeDirectory)

	explicitPath := filepath.Join(workingDirectory, "custom.yaml")
	if err := os.WriteFile(explicitPath, []byte("snapshot:\n  format: text\n"), 0o600); err != nil {
		t.Fatalf("write explicit config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(workingDirectory, LocalConfigFileName), []byte("snapshot:\n  format: json\n"), 0o600); err != nil {
		t.Fatalf("write local config: %v", err)
	}

	merged, loadErr := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: workingDirectory, ExplicitFilePath: "custom.yaml"})
	if loadErr != nil {
		t.Fatalf("LoadApplicationConfiguration error: %v", loadErr)
	}
	if merged.Snapshot.Format != "text" {
		t.Errorf("expected explicit file to win, got format %q", merged.Snapshot.Format)
	}
}

func TestLoadApplicationConfigurationMissingFiles(t *testing.T) {
	homeDirectory := t.TempDir()
	workingDirectory := t.TempDir()
	t.Setenv("HOME", homeDirectory)
	t.Setenv("USERPROFILE", homeDirectory)

	merged, loadErr := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: workingDirectory})
	if loadErr != nil {
		t.Fatalf("LoadApplicationConfiguration error: %v", loadErr)
	}
	if !reflect.DeepEqual(merged, ApplicationConfiguration{Snapshot: SnapshotCommandConfiguration{Paths: PathConfiguration{Exclude: []string{}}}}) {
		t.Errorf("expected empty configuration, got %+v", merged)
	}
}

func TestLoadApplicationConfigurationRejectsMalformedFile(t *testing.T) {
	homeDirectory := t.TempDir()
	workingDirectory := t.TempDir()
	t.Setenv("HOME", homeDirectory)
	t.Setenv("USERPROFILE", homeDirectory)

	if err := os.WriteFile(filepath.Join(workingDirectory, LocalConfigFileName), []byte(":\n  not yaml"), 0o600); err != nil {
		t.Fatalf("write local config: %v", err)
	}
	if _, loadErr := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: workingDirectory}); loadErr == nil {
		t.Fatalf("expected error for malformed configuration")
	}
}
