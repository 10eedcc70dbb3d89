// Package tokenizer estimates token counts for captured text content.
package tokenizer

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Counter estimates token counts for text content.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

const (
	// DefaultModel is assumed when the caller does not name a model.
	DefaultModel = "gpt-4o"
	// fallbackEncodingName backs models tiktoken has no table for.
	fallbackEncodingName = "cl100k_base"
)

// NewCounter returns a Counter for the requested model together with the
// name the counter resolved to. Models without a tiktoken table fall back to
// the cl100k_base encoding.
func NewCounter(modelName string) (Counter, string, error) {
	resolvedModel := strings.TrimSpace(modelName)
	if resolvedModel == "" {
		resolvedModel = DefaultModel
	}
	lowerModel := strings.ToLower(resolvedModel)

	encoding, encodingError := tiktoken.EncodingForModel(lowerModel)
	if encodingError == nil && encoding != nil {
		return tiktokenCounter{encoding: encoding, name: lowerModel}, resolvedModel, nil
	}
	fallbackEncoding, fallbackError := tiktoken.GetEncoding(fallbackEncodingName)
	if fallbackError != nil {
		return nil, "", fmt.Errorf("initialize fallback tokenizer: %w", fallbackError)
	}
	return tiktokenCounter{encoding: fallbackEncoding, name: fallbackEncodingName}, fallbackEncodingName, nil
}
