package analysis

import "time"

// Record is the analysis of one canonical text.
// Fields correspond to the analyzed_strings table in internal/db.
type Record struct {
	// Fingerprint is the hex SHA-256 of Value and the record's identity
	Fingerprint string

	// Value is the canonical (whitespace-normalized) text
	Value string

	// Length is the character count of Value (runes, not bytes)
	Length int

	// IsPalindrome is true if the alphanumeric, case-folded view of Value
	// reads the same in both directions
	IsPalindrome bool

	// UniqueCharacterCount is the number of distinct runes in Value (case-sensitive)
	UniqueCharacterCount int

	// WordCount is the number of whitespace-delimited tokens in Value
	WordCount int

	// CharacterFrequency maps each lower-cased rune to its occurrence count
	CharacterFrequency map[string]int

	// CreatedAt is when the text was analyzed (UTC)
	CreatedAt time.Time
}

// HasCharacter reports whether the lower-cased character occurs in the record.
func (r *Record) HasCharacter(ch string) bool {
	_, ok := r.CharacterFrequency[ch]
	return ok
}
