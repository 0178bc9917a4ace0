package filter

import (
	"strings"
	"unicode/utf8"

	"github.com/hpungsan/sift/internal/analysis"
	"github.com/hpungsan/sift/internal/errors"
)

// Predicate reports whether a record satisfies a compiled Spec.
type Predicate func(r *analysis.Record) bool

// MatchAll is the predicate of the empty Spec.
func MatchAll(*analysis.Record) bool { return true }

// Compile validates spec and returns the conjunction of its present fields.
//
// Errors:
//   - CONFLICTING_FILTERS when min_length > max_length
//   - INVALID_CHARACTER_FILTER when contains_character is not exactly one character
//
// Negative bounds compile; a negative max_length or word_count matches
// nothing. Structured callers reject them with CheckBounds.
func Compile(spec Spec) (Predicate, error) {
	if err := Validate(spec); err != nil {
		return nil, err
	}

	checks := make([]Predicate, 0, 5)

	if spec.IsPalindrome != nil {
		want := *spec.IsPalindrome
		checks = append(checks, func(r *analysis.Record) bool { return r.IsPalindrome == want })
	}
	if spec.MinLength != nil {
		lo := *spec.MinLength
		checks = append(checks, func(r *analysis.Record) bool { return r.Length >= lo })
	}
	if spec.MaxLength != nil {
		hi := *spec.MaxLength
		checks = append(checks, func(r *analysis.Record) bool { return r.Length <= hi })
	}
	if spec.WordCount != nil {
		wc := *spec.WordCount
		checks = append(checks, func(r *analysis.Record) bool { return r.WordCount == wc })
	}
	if spec.ContainsCharacter != nil {
		ch := strings.ToLower(*spec.ContainsCharacter)
		checks = append(checks, func(r *analysis.Record) bool { return r.HasCharacter(ch) })
	}

	if len(checks) == 0 {
		return MatchAll, nil
	}

	return func(r *analysis.Record) bool {
		for _, check := range checks {
			if !check(r) {
				return false
			}
		}
		return true
	}, nil
}

// Validate checks spec for internal consistency without compiling it.
func Validate(spec Spec) error {
	if spec.MinLength != nil && spec.MaxLength != nil && *spec.MinLength > *spec.MaxLength {
		return errors.NewConflictingFilters(*spec.MinLength, *spec.MaxLength)
	}

	if spec.ContainsCharacter != nil && utf8.RuneCountInString(*spec.ContainsCharacter) != 1 {
		return errors.NewInvalidCharacterFilter(*spec.ContainsCharacter)
	}

	return nil
}

// CheckBounds rejects negative length and word count bounds with
// INVALID_REQUEST. It applies to filters supplied directly by a caller;
// translated filters may carry a negative max_length ("shorter than 0").
func CheckBounds(spec Spec) error {
	for _, bound := range []struct {
		name string
		v    *int
	}{
		{"min_length", spec.MinLength},
		{"max_length", spec.MaxLength},
		{"word_count", spec.WordCount},
	} {
		if bound.v != nil && *bound.v < 0 {
			return errors.NewInvalidRequest(bound.name + " must be a non-negative integer")
		}
	}
	return nil
}

// Normalized returns a copy of spec with contains_character lower-cased,
// the form in which it is matched and reported.
func Normalized(spec Spec) Spec {
	if spec.ContainsCharacter != nil {
		spec.ContainsCharacter = String(strings.ToLower(*spec.ContainsCharacter))
	}
	return spec
}
