package ops

import (
	"context"
	"fmt"

	"github.com/hpungsan/sift/internal/analysis"
	"github.com/hpungsan/sift/internal/config"
	"github.com/hpungsan/sift/internal/errors"
)

// CreateInput contains parameters for the Create operation.
type CreateInput struct {
	Value string // required, normalized before analysis
}

// Create analyzes a text and stores the result.
// Any spelling that normalizes to an already stored text is ALREADY_EXISTS.
func Create(ctx context.Context, store Store, cfg *config.Config, input CreateInput) (*View, error) {
	r := analysis.Analyze(input.Value)
	if r.Value == "" {
		return nil, errors.NewInvalidRequest("value must not be empty")
	}

	if cfg != nil && cfg.MaxTextChars > 0 && r.Length > cfg.MaxTextChars {
		return nil, errors.NewInvalidRequest(
			fmt.Sprintf("value exceeds maximum length of %d characters (got %d)", cfg.MaxTextChars, r.Length))
	}

	exists, err := store.Exists(ctx, r.Fingerprint)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.NewAlreadyExists(r.Fingerprint)
	}

	// Put still reports ALREADY_EXISTS if a concurrent caller won the race
	if err := store.Put(ctx, r); err != nil {
		return nil, err
	}

	view := NewView(r)
	return &view, nil
}
