package ops

import (
	"context"

	"github.com/hpungsan/sift/internal/analysis"
	"github.com/hpungsan/sift/internal/errors"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	Value string // any spelling of the canonical text
}

// Fetch retrieves a record by its text.
func Fetch(ctx context.Context, store Store, input FetchInput) (*View, error) {
	value := analysis.Normalize(input.Value)
	if value == "" {
		return nil, errors.NewInvalidRequest("value must not be empty")
	}

	r, err := store.GetByText(ctx, value)
	if err != nil {
		return nil, err
	}

	view := NewView(r)
	return &view, nil
}
