package ops

import (
	"context"

	"github.com/hpungsan/sift/internal/analysis"
	"github.com/hpungsan/sift/internal/errors"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	Value string
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	Value   string `json:"value"`
}

// Delete removes a record by its text. Deletion is permanent.
func Delete(ctx context.Context, store Store, input DeleteInput) (*DeleteOutput, error) {
	value := analysis.Normalize(input.Value)
	if value == "" {
		return nil, errors.NewInvalidRequest("value must not be empty")
	}

	if err := store.DeleteByText(ctx, value); err != nil {
		return nil, err
	}

	return &DeleteOutput{Deleted: true, Value: value}, nil
}
