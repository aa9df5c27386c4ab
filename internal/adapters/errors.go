package adapters

import (
	"fmt"

	"github.com/ppiankov/wastewise/internal/common"
	"github.com/ppiankov/wastewise/internal/model"
)

// SourceError reports a classifier source that failed to load or infer.
// It matches common.ErrSourceUnavailable with errors.Is.
type SourceError struct {
	Source model.SourceTag
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Source, common.ErrSourceUnavailable, e.Err)
}

func (e *SourceError) Unwrap() []error {
	return []error{common.ErrSourceUnavailable, e.Err}
}

func unavailable(source model.SourceTag, err error) error {
	return &SourceError{Source: source, Err: err}
}
