package filter

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Translate maps a natural-language query onto a Spec using a fixed
// vocabulary. Matching is case-insensitive and unrecognized text is ignored,
// so the result may be the empty Spec. Translate never fails; the result
// still has to pass Compile.
//
// Recognized phrases:
//   - "single word" / "one word", "two words" / "2 words", "three words" / "3 words"
//   - "palindrome"
//   - "longer|greater|more than N characters"   → min_length = N+1
//   - "shorter|less|fewer than N characters"    → max_length = N-1
//   - "contains|containing|with|having [the] [letter] X"
//   - "vowel X", "X vowel", "first vowel" (→ a); overrides the letter phrase
func Translate(query string) Spec {
	q := strings.ToLower(query)
	var spec Spec

	for _, rule := range wordCountRules {
		if containsAny(q, rule.phrases...) {
			spec.WordCount = Int(rule.count)
			break
		}
	}

	if strings.Contains(q, "palindrome") {
		spec.IsPalindrome = Bool(true)
	}

	if n, ok := captureInt(longerThanRe, q); ok && n < math.MaxInt {
		spec.MinLength = Int(n + 1)
	}
	if n, ok := captureInt(shorterThanRe, q); ok {
		spec.MaxLength = Int(n - 1)
	}

	if m := containsLetterRe.FindStringSubmatch(q); m != nil {
		spec.ContainsCharacter = String(m[1])
	}
	if v, ok := matchVowel(q); ok {
		spec.ContainsCharacter = String(v)
	}

	return spec
}

// Interpretation echoes a natural-language query with the filters derived from it.
type Interpretation struct {
	Original      string `json:"original"`
	ParsedFilters Spec   `json:"parsed_filters"`
}

// Interpret translates query and pairs the result with the original text.
func Interpret(query string) Interpretation {
	return Interpretation{
		Original:      query,
		ParsedFilters: Translate(query),
	}
}

// wordCountRules are checked in order; the first hit wins.
var wordCountRules = []struct {
	phrases []string
	count   int
}{
	{[]string{"single word", "one word"}, 1},
	{[]string{"two words", "2 words"}, 2},
	{[]string{"three words", "3 words"}, 3},
}

var (
	longerThanRe     = regexp.MustCompile(`(?:longer than|greater than|more than)\s+(\d+)\s+characters?`)
	shorterThanRe    = regexp.MustCompile(`(?:shorter than|less than|fewer than)\s+(\d+)\s+characters?`)
	containsLetterRe = regexp.MustCompile(`(?:contain(?:s|ing)?|with|having)\s+(?:the\s+)?(?:letter\s+)?([a-z])`)
)

var vowels = []string{"a", "e", "i", "o", "u"}

// matchVowel scans a, e, i, o, u in order and returns the first vowel named
// by the query. "first vowel" always means a.
func matchVowel(q string) (string, bool) {
	if strings.Contains(q, "first vowel") {
		return "a", true
	}
	for _, v := range vowels {
		if strings.Contains(q, "vowel "+v) || strings.Contains(q, v+" vowel") {
			return v, true
		}
	}
	return "", false
}

// captureInt returns the first submatch of re parsed as an int.
// Numbers that overflow int are treated as no match.
func captureInt(re *regexp.Regexp, q string) (int, bool) {
	m := re.FindStringSubmatch(q)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
