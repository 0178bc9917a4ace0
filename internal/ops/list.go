package ops

import (
	"context"

	"github.com/hpungsan/sift/internal/filter"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Filters filter.Spec // empty means every record
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Data           []View      `json:"data"`
	Count          int         `json:"count"`
	FiltersApplied filter.Spec `json:"filters_applied"`
}

// List returns the records matching a structured filter, newest first.
// Conflicting bounds are reported before negative ones.
func List(ctx context.Context, store Store, input ListInput) (*ListOutput, error) {
	pred, err := filter.Compile(input.Filters)
	if err != nil {
		return nil, err
	}
	if err := filter.CheckBounds(input.Filters); err != nil {
		return nil, err
	}

	records, err := store.Find(ctx, pred)
	if err != nil {
		return nil, err
	}

	data := newViews(records)
	return &ListOutput{
		Data:           data,
		Count:          len(data),
		FiltersApplied: filter.Normalized(input.Filters),
	}, nil
}
