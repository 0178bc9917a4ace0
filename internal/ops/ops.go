package ops

import (
	"context"
	"time"

	"github.com/hpungsan/sift/internal/analysis"
	"github.com/hpungsan/sift/internal/filter"
)

// Store is the persistence contract the operations depend on.
// db.Store implements it over SQLite.
type Store interface {
	Exists(ctx context.Context, fingerprint string) (bool, error)
	Put(ctx context.Context, r *analysis.Record) error
	GetByText(ctx context.Context, value string) (*analysis.Record, error)
	DeleteByText(ctx context.Context, value string) error
	Find(ctx context.Context, pred filter.Predicate) ([]*analysis.Record, error)
}

// Properties is the computed part of a record view.
type Properties struct {
	Length                int            `json:"length"`
	IsPalindrome          bool           `json:"is_palindrome"`
	UniqueCharacterCount  int            `json:"unique_character_count"`
	WordCount             int            `json:"word_count"`
	SHA256Hash            string         `json:"sha256_hash"`
	CharacterFrequencyMap map[string]int `json:"character_frequency_map"`
}

// View is the external JSON shape of a record.
type View struct {
	ID         string     `json:"id"`
	Value      string     `json:"value"`
	Properties Properties `json:"properties"`
	CreatedAt  string     `json:"created_at"`
}

// NewView converts a record to its external shape.
func NewView(r *analysis.Record) View {
	freq := r.CharacterFrequency
	if freq == nil {
		freq = map[string]int{}
	}
	return View{
		ID:    r.Fingerprint,
		Value: r.Value,
		Properties: Properties{
			Length:                r.Length,
			IsPalindrome:          r.IsPalindrome,
			UniqueCharacterCount:  r.UniqueCharacterCount,
			WordCount:             r.WordCount,
			SHA256Hash:            r.Fingerprint,
			CharacterFrequencyMap: freq,
		},
		CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// newViews converts records, always returning a non-nil slice.
func newViews(records []*analysis.Record) []View {
	views := make([]View, 0, len(records))
	for _, r := range records {
		views = append(views, NewView(r))
	}
	return views
}
