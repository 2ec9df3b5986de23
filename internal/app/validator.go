package app

import (
	"strings"
	"unicode"

	"scramble-game-service/internal/domain"
)

// DiagInvalidCharacters is reported when a sentence submission contains a
// rune outside the allowed CJK/punctuation/whitespace set.
const DiagInvalidCharacters = "INVALID_CHARACTERS"

// Grammar deductions per issue kind.
const (
	extraTokenPenalty   = 5
	missingTokenPenalty = 10
	wordOrderPenalty    = 20
	perfectGrammarScore = 100
)

// ValidationResult is the outcome of checking one submission.
type ValidationResult struct {
	Correct      bool
	Accuracy     float64
	GrammarScore int
	Diagnostics  []string
}

// AnswerValidator scores a submission against the round's target. Idiom
// rounds require exact equality; sentence rounds require an exact
// token-order and token-set match, with partial grammar scores reported
// for feedback only.
type AnswerValidator struct{}

// Validate dispatches on mode. Accuracy is always the normalized
// Levenshtein similarity of the full strings.
func (AnswerValidator) Validate(mode domain.Mode, target string, targetTokens []string, answer string) ValidationResult {
	if mode == domain.ModeSentence {
		return validateSentence(target, targetTokens, answer)
	}
	return validateIdiom(target, answer)
}

func validateIdiom(target, answer string) ValidationResult {
	return ValidationResult{
		Correct:  answer == target,
		Accuracy: LevenshteinSimilarity(answer, target),
	}
}

func validateSentence(target string, targetTokens []string, answer string) ValidationResult {
	if !sentenceCharsetOK(answer) {
		return ValidationResult{
			GrammarScore: 0,
			Diagnostics:  []string{DiagInvalidCharacters},
		}
	}

	submitted := SplitTokens(answer)
	grammar := perfectGrammarScore
	var diags []string

	targetSet := tokenCounts(targetTokens)
	submittedSet := tokenCounts(submitted)

	for token, n := range submittedSet {
		if extra := n - targetSet[token]; extra > 0 {
			grammar -= extra * extraTokenPenalty
			diags = append(diags, "EXTRA_TOKEN:"+token)
		}
	}
	for token, n := range targetSet {
		if missing := n - submittedSet[token]; missing > 0 {
			grammar -= missing * missingTokenPenalty
			diags = append(diags, "MISSING_TOKEN:"+token)
		}
	}

	// Positional check runs index-by-index up to the shorter length; no
	// alignment is attempted.
	limit := len(submitted)
	if len(targetTokens) < limit {
		limit = len(targetTokens)
	}
	for i := 0; i < limit; i++ {
		if submitted[i] != targetTokens[i] {
			grammar -= wordOrderPenalty
			diags = append(diags, "WORD_ORDER:"+submitted[i])
		}
	}
	if grammar < 0 {
		grammar = 0
	}

	return ValidationResult{
		Correct:      grammar == perfectGrammarScore && len(diags) == 0,
		Accuracy:     LevenshteinSimilarity(answer, target),
		GrammarScore: grammar,
		Diagnostics:  diags,
	}
}

func tokenCounts(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	return counts
}

// sentenceCharsetOK admits CJK ideographs (incl. extension A), CJK symbols
// and punctuation, halfwidth/fullwidth forms, and whitespace. Anything
// else, notably ASCII digits and Latin letters, is rejected.
func sentenceCharsetOK(s string) bool {
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
		case r >= 0x4E00 && r <= 0x9FFF:
		case r >= 0x3400 && r <= 0x4DBF:
		case r >= 0x3000 && r <= 0x303F:
		case r >= 0xFF00 && r <= 0xFFEF:
		default:
			return false
		}
	}
	return true
}

// SplitTokens segments a submission on whitespace and CJK/fullwidth
// punctuation.
func SplitTokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		if unicode.IsSpace(r) {
			return true
		}
		if r >= 0x3000 && r <= 0x303F {
			return true
		}
		return r >= 0xFF00 && r <= 0xFFEF && unicode.IsPunct(r)
	})
}

// LevenshteinSimilarity is 1 - distance/max(len), computed over runes.
// Symmetric, in [0,1], and 1.0 when both strings are identical or empty.
func LevenshteinSimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein(ra, rb))/float64(longest)
}

// levenshtein is the standard two-row dynamic program.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
