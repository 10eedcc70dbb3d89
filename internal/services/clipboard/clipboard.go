// Package clipboard delivers rendered snapshot output to the system clipboard.
package clipboard

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// copyFailedMessageFormat reports a clipboard write failure with its cause.
const copyFailedMessageFormat = "copying output to clipboard: %w"

// Copier places text on the system clipboard. Commands depend on this
// interface so tests can record payloads instead of touching the real
// clipboard.
type Copier interface {
	Copy(text string) error
}

// Service is the production Copier backed by github.com/atotto/clipboard.
type Service struct{}

// NewService returns the production clipboard service.
func NewService() *Service {
	return &Service{}
}

// Copy places text on the system clipboard.
func (service *Service) Copy(text string) error {
	if writeError := clipboard.WriteAll(text); writeError != nil {
		return fmt.Errorf(copyFailedMessageFormat, writeError)
	}
	return nil
}

var _ Copier = (*Service)(nil)
