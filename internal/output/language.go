package output

import (
	"path/filepath"
	"strings"
)

// languageByExtension maps file extensions to fenced code block language hints.
var languageByExtension = map[string]string{
	".c":    "c",
	".cpp":  "cpp",
	".css":  "css",
	".go":   "go",
	".h":    "c",
	".html": "html",
	".java": "java",
	".js":   "javascript",
	".json": "json",
	".md":   "markdown",
	".py":   "python",
	".rb":   "ruby",
	".rs":   "rust",
	".sh":   "bash",
	".sql":  "sql",
	".toml": "toml",
	".ts":   "typescript",
	".txt":  "text",
	".xml":  "xml",
	".yaml": "yaml",
	".yml":  "yaml",
}

// languageByFileName maps well-known extensionless files to language hints.
var languageByFileName = map[string]string{
	"Dockerfile": "dockerfile",
	"Makefile":   "make",
}

// languageForPath infers the fenced code block language hint for a file path.
// Unknown extensions produce an unhinted fence.
func languageForPath(path string) string {
	baseName := filepath.Base(path)
	if language, known := languageByFileName[baseName]; known {
		return language
	}
	extension := strings.ToLower(filepath.Ext(baseName))
	if language, known := languageByExtension[extension]; known {
		return language
	}
	return ""
}
