package filter

import (
	"net/url"
	"strconv"

	"github.com/hpungsan/sift/internal/errors"
)

// ParseQueryParams builds a Spec from structured query parameters
// (is_palindrome, min_length, max_length, word_count, contains_character).
// Parameters that are absent or empty stay unset. Malformed values return
// INVALID_REQUEST; the resulting Spec is not yet validated.
func ParseQueryParams(v url.Values) (Spec, error) {
	var spec Spec

	if s := v.Get("is_palindrome"); s != "" {
		switch s {
		case "true":
			spec.IsPalindrome = Bool(true)
		case "false":
			spec.IsPalindrome = Bool(false)
		default:
			return Spec{}, errors.NewInvalidRequest("is_palindrome must be true or false")
		}
	}

	for _, p := range []struct {
		name string
		dst  **int
	}{
		{"min_length", &spec.MinLength},
		{"max_length", &spec.MaxLength},
		{"word_count", &spec.WordCount},
	} {
		s := v.Get(p.name)
		if s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return Spec{}, errors.NewInvalidRequest("invalid " + p.name + " parameter")
		}
		*p.dst = Int(n)
	}

	if v.Has("contains_character") {
		spec.ContainsCharacter = String(v.Get("contains_character"))
	}

	return spec, nil
}
