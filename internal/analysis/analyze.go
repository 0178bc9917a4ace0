package analysis

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
	"unicode/utf8"
)

// Analyze computes the analysis record for raw text, stamped with the current time.
// It never fails: every string, including the empty one, has an analysis.
func Analyze(raw string) *Record {
	return AnalyzeAt(raw, time.Now())
}

// AnalyzeAt is Analyze with an explicit creation time.
func AnalyzeAt(raw string, at time.Time) *Record {
	value := Normalize(raw)
	return &Record{
		Fingerprint:          Fingerprint(value),
		Value:                value,
		Length:               CountChars(value),
		IsPalindrome:         IsPalindrome(value),
		UniqueCharacterCount: CountUniqueChars(value),
		WordCount:            CountWords(value),
		CharacterFrequency:   CharacterFrequency(value),
		CreatedAt:            at.UTC(),
	}
}

// Normalize trims leading/trailing whitespace and collapses every
// internal whitespace run to a single ASCII space.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Fingerprint returns the hex-encoded SHA-256 digest of the UTF-8 text.
// Callers pass canonical text; Fingerprint does not normalize.
func Fingerprint(canonical string) string {
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// CountChars returns the character count as runes (not bytes).
func CountChars(s string) int {
	return utf8.RuneCountInString(s)
}

// IsPalindrome lower-cases s, drops everything outside [a-z0-9] and
// compares the result with its reversal. The empty string is a palindrome.
func IsPalindrome(s string) bool {
	lower := strings.ToLower(s)
	clean := make([]byte, 0, len(lower))
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			clean = append(clean, c)
		}
	}
	for i, j := 0, len(clean)-1; i < j; i, j = i+1, j-1 {
		if clean[i] != clean[j] {
			return false
		}
	}
	return true
}

// CountWords returns the number of whitespace-delimited tokens.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// CountUniqueChars returns the number of distinct runes, case-sensitive.
func CountUniqueChars(s string) int {
	seen := make(map[rune]struct{})
	for _, r := range s {
		seen[r] = struct{}{}
	}
	return len(seen)
}

// CharacterFrequency counts each rune of the lower-cased text.
func CharacterFrequency(s string) map[string]int {
	freq := make(map[string]int)
	for _, r := range strings.ToLower(s) {
		freq[string(r)]++
	}
	return freq
}
