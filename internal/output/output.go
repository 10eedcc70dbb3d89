// Package output renders captured snapshots in the supported output formats.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dirsnap/dirsnap/internal/snapshot"
	"github.com/dirsnap/dirsnap/internal/tokenizer"
	"github.com/dirsnap/dirsnap/internal/utils"
)

const (
	// FormatMarkdown renders the snapshot as a Markdown document.
	FormatMarkdown = "markdown"
	// FormatText renders the snapshot as plain text sections.
	FormatText = "text"
	// FormatJSON renders the snapshot as a JSON document.
	FormatJSON = "json"

	indentPrefix = ""
	indentSpacer = "  "

	codeFence     = "```"
	markdownTitle = "# Directory Snapshot"

	markdownFileHeaderPrefix = "## "
	textTreeHeader           = "Directory Tree:"
	textFilesHeader          = "Files:"
	textFileSeparatorFormat  = "--- %s ---"
	tokenCountSuffixFormat   = " (%d tokens)"

	// unknownFormatMessageFormat reports a format name outside the supported set.
	unknownFormatMessageFormat = "unknown output format %q"
	// tokenCountFailureMessageFormat reports a token counting failure for one file.
	tokenCountFailureMessageFormat = "counting tokens for %s: %w"
	// outputFileMessageFormat reports a failure to persist rendered output.
	outputFileMessageFormat = "writing output file %s: %w"
)

// RenderOptions controls the optional rendering behavior shared by all formats.
type RenderOptions struct {
	// Pretty indents JSON output instead of emitting it compactly.
	Pretty bool
	// IncludeSummary appends aggregate file, size, and token totals.
	IncludeSummary bool
	// TokenCounter, when set, adds per-file token counts to the output.
	TokenCounter tokenizer.Counter
	// TokenModel names the model the counter resolved to.
	TokenModel string
}

// Summary captures aggregate information about rendered files.
type Summary struct {
	TotalFiles  int    `json:"totalFiles"`
	TotalSize   string `json:"totalSize"`
	TotalTokens int    `json:"totalTokens,omitempty"`
	Model       string `json:"model,omitempty"`
}

// fileAnnotation carries the token counting outcome for one record.
type fileAnnotation struct {
	tokens  int
	counted bool
}

// Render formats the snapshot using the named format.
func Render(result *snapshot.Snapshot, formatName string, renderOptions RenderOptions) (string, error) {
	switch formatName {
	case FormatMarkdown:
		return renderMarkdown(result, renderOptions)
	case FormatText:
		return renderText(result, renderOptions)
	case FormatJSON:
		return renderJSON(result, renderOptions)
	}
	return "", fmt.Errorf(unknownFormatMessageFormat, formatName)
}

// WriteToFile persists rendered output at the provided path.
func WriteToFile(path string, content string) error {
	if writeError := os.WriteFile(path, []byte(content), 0o644); writeError != nil {
		return fmt.Errorf(outputFileMessageFormat, path, writeError)
	}
	return nil
}

// renderMarkdown produces a Markdown document with the tree and each file in
// fenced code blocks.
func renderMarkdown(result *snapshot.Snapshot, renderOptions RenderOptions) (string, error) {
	annotations, annotationError := annotateRecords(result.Files, renderOptions.TokenCounter)
	if annotationError != nil {
		return "", annotationError
	}

	var builder strings.Builder
	builder.WriteString(markdownTitle + "\n\n")
	builder.WriteString(codeFence + "\n")
	builder.WriteString(result.Tree + "\n")
	builder.WriteString(codeFence + "\n")

	for recordIndex, record := range result.Files {
		builder.WriteString("\n" + markdownFileHeaderPrefix + record.Path)
		if annotations[recordIndex].counted {
			builder.WriteString(fmt.Sprintf(tokenCountSuffixFormat, annotations[recordIndex].tokens))
		}
		builder.WriteString("\n\n")
		builder.WriteString(codeFence + languageForPath(record.Path) + "\n")
		builder.WriteString(ensureTrailingNewline(record.Content))
		builder.WriteString(codeFence + "\n")
	}

	if summary := buildSummary(result.Files, annotations, renderOptions); summary != nil {
		builder.WriteString("\n" + FormatSummaryLine(summary) + "\n")
	}
	return builder.String(), nil
}

// renderText produces a plain text document with a tree section and a files
// section separated per file.
func renderText(result *snapshot.Snapshot, renderOptions RenderOptions) (string, error) {
	annotations, annotationError := annotateRecords(result.Files, renderOptions.TokenCounter)
	if annotationError != nil {
		return "", annotationError
	}

	var builder strings.Builder
	builder.WriteString(textTreeHeader + "\n")
	builder.WriteString(result.Tree + "\n")

	if len(result.Files) > 0 {
		builder.WriteString("\n" + textFilesHeader + "\n")
		for recordIndex, record := range result.Files {
			separator := fmt.Sprintf(textFileSeparatorFormat, record.Path)
			if annotations[recordIndex].counted {
				separator += fmt.Sprintf(tokenCountSuffixFormat, annotations[recordIndex].tokens)
			}
			builder.WriteString("\n" + separator + "\n")
			builder.WriteString(ensureTrailingNewline(record.Content))
		}
	}

	if summary := buildSummary(result.Files, annotations, renderOptions); summary != nil {
		builder.WriteString("\n" + FormatSummaryLine(summary) + "\n")
	}
	return builder.String(), nil
}

// renderJSON marshals the snapshot, optionally indented and with a summary object.
func renderJSON(result *snapshot.Snapshot, renderOptions RenderOptions) (string, error) {
	annotations, annotationError := annotateRecords(result.Files, renderOptions.TokenCounter)
	if annotationError != nil {
		return "", annotationError
	}

	document := struct {
		Tree    string                `json:"tree"`
		Files   []snapshot.FileRecord `json:"files"`
		Summary *Summary              `json:"summary,omitempty"`
	}{
		Tree:    result.Tree,
		Files:   result.Files,
		Summary: buildSummary(result.Files, annotations, renderOptions),
	}

	if renderOptions.Pretty {
		encoded, jsonEncodeError := json.MarshalIndent(document, indentPrefix, indentSpacer)
		return string(encoded), jsonEncodeError
	}
	encoded, jsonEncodeError := json.Marshal(document)
	return string(encoded), jsonEncodeError
}

// annotateRecords counts tokens for every text record when a counter is configured.
func annotateRecords(records []snapshot.FileRecord, counter tokenizer.Counter) ([]fileAnnotation, error) {
	annotations := make([]fileAnnotation, len(records))
	if counter == nil {
		return annotations, nil
	}
	for recordIndex, record := range records {
		if record.IsBinary {
			continue
		}
		countResult, countError := tokenizer.CountText(counter, record.Content)
		if countError != nil {
			return nil, fmt.Errorf(tokenCountFailureMessageFormat, record.Path, countError)
		}
		annotations[recordIndex] = fileAnnotation{tokens: countResult.Tokens, counted: countResult.Counted}
	}
	return annotations, nil
}

// buildSummary aggregates totals across records when a summary was requested.
func buildSummary(records []snapshot.FileRecord, annotations []fileAnnotation, renderOptions RenderOptions) *Summary {
	if !renderOptions.IncludeSummary {
		return nil
	}
	var totalBytes int64
	totalTokens := 0
	for recordIndex, record := range records {
		totalBytes += recordByteSize(record)
		if annotations[recordIndex].counted {
			totalTokens += annotations[recordIndex].tokens
		}
	}
	summary := &Summary{
		TotalFiles:  len(records),
		TotalSize:   utils.FormatFileSize(totalBytes),
		TotalTokens: totalTokens,
	}
	if totalTokens > 0 {
		summary.Model = renderOptions.TokenModel
	}
	return summary
}

// recordByteSize prefers the reported on-disk size and falls back to the
// rendered content length when sizes were not collected.
func recordByteSize(record snapshot.FileRecord) int64 {
	if record.Size != nil {
		return *record.Size
	}
	return int64(len(record.Content))
}

// FormatSummaryLine formats a Summary into the trailing summary line.
func FormatSummaryLine(summary *Summary) string {
	if summary == nil {
		summary = &Summary{}
	}
	label := "files"
	if summary.TotalFiles == 1 {
		label = "file"
	}
	tokenSuffix := ""
	if summary.TotalTokens > 0 {
		tokenSuffix = fmt.Sprintf(", %d tokens", summary.TotalTokens)
	}
	modelSuffix := ""
	if summary.Model != "" {
		modelSuffix = fmt.Sprintf(" (model: %s)", summary.Model)
	}
	return fmt.Sprintf("Summary: %d %s, %s%s%s", summary.TotalFiles, label, summary.TotalSize, tokenSuffix, modelSuffix)
}

// ensureTrailingNewline closes content with a newline so fences and separators
// start on their own line.
func ensureTrailingNewline(content string) string {
	if strings.HasSuffix(content, "\n") {
		return content
	}
	return content + "\n"
}
