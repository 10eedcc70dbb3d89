package tokenizer

import (
	"errors"
	"unicode/utf8"
)

// CountResult captures the outcome of counting one piece of content.
type CountResult struct {
	Tokens  int
	Counted bool
}

// CountText estimates tokens for already-decoded text. Content that is not
// valid UTF-8 is reported as uncounted instead of failing the caller.
func CountText(counter Counter, text string) (CountResult, error) {
	if counter == nil {
		return CountResult{}, errors.New("nil tokenizer counter")
	}
	if !utf8.ValidString(text) {
		return CountResult{Counted: false}, nil
	}
	tokens, countError := counter.CountString(text)
	if countError != nil {
		return CountResult{}, countError
	}
	return CountResult{Tokens: tokens, Counted: true}, nil
}
