package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/sift/internal/errors"
	"github.com/hpungsan/sift/internal/filter"
)

// QueryInput contains parameters for the Query operation.
type QueryInput struct {
	Query string // natural-language filter description
}

// QueryOutput contains the result of the Query operation.
type QueryOutput struct {
	Data             []View                `json:"data"`
	Count            int                   `json:"count"`
	InterpretedQuery filter.Interpretation `json:"interpreted_query"`
}

// Query translates a natural-language description into filters and
// returns the matching records, newest first.
//
// A query that yields no recognized phrase matches every record.
// Translated filters that contradict each other are CONFLICTING_FILTERS.
func Query(ctx context.Context, store Store, input QueryInput) (*QueryOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, errors.NewInvalidRequest("query must not be empty")
	}

	interp := filter.Interpret(input.Query)

	pred, err := filter.Compile(interp.ParsedFilters)
	if err != nil {
		return nil, err
	}

	records, err := store.Find(ctx, pred)
	if err != nil {
		return nil, err
	}

	data := newViews(records)
	return &QueryOutput{
		Data:             data,
		Count:            len(data),
		InterpretedQuery: interp,
	}, nil
}
