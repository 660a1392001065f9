package content

import (
	"math/big"
	"strconv"
	"strings"
	"unicode"
)

// CheckAnswer compares a student's answer against the canonical answer.
//
// Normalization rules:
//   - Comparison is case-insensitive
//   - Whitespace is ignored
//   - Punctuation is ignored except "-", "/", "%" and a "." followed by a digit
//   - Numbers compare by value: "3.50" matches "3.5", "2/4" matches "1/2"
//
// The sign is significant: "-5" never matches "5".
func CheckAnswer(given, expected string) bool {
	g := NormalizeAnswer(given)
	if g == "" {
		return false
	}
	e := NormalizeAnswer(expected)
	if g == e {
		return true
	}

	gr, ok := parseNumber(g)
	if !ok {
		return false
	}
	er, ok := parseNumber(e)
	if !ok {
		return false
	}
	return gr.Cmp(er) == 0
}

// CheckQuestion checks an answer against a question, accepting a 1-based
// choice index for multiple-choice questions.
func CheckQuestion(given string, q *Question) bool {
	if q.Type == TypeMultipleChoice && len(q.Choices) > 0 {
		if idx, err := strconv.Atoi(strings.TrimSpace(given)); err == nil && idx >= 1 && idx <= len(q.Choices) {
			if !isNumericChoices(q.Choices) {
				given = q.Choices[idx-1]
			}
		}
	}
	return CheckAnswer(given, q.CorrectAnswer)
}

// NormalizeAnswer lowercases s and strips whitespace and punctuation.
func NormalizeAnswer(s string) string {
	runes := []rune(strings.ToLower(s))
	var b strings.Builder
	for i, r := range runes {
		switch {
		case unicode.IsSpace(r):
			continue
		case r == '-' || r == '/' || r == '%':
			b.WriteRune(r)
		case r == '.':
			if i+1 < len(runes) && unicode.IsDigit(runes[i+1]) {
				b.WriteRune(r)
			}
		case r == ',':
			// thousands separators and list commas are dropped
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// parseNumber parses a normalized integer, decimal, fraction or percent.
func parseNumber(s string) (*big.Rat, bool) {
	if s == "" {
		return nil, false
	}
	pct := strings.HasSuffix(s, "%")
	s = strings.TrimSuffix(s, "%")
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '-' && r != '.' && r != '/' {
			return nil, false
		}
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, false
	}
	if pct {
		r.Quo(r, big.NewRat(100, 1))
	}
	return r, true
}

func isNumericChoices(choices []string) bool {
	for _, c := range choices {
		if _, ok := parseNumber(NormalizeAnswer(c)); !ok {
			return false
		}
	}
	return true
}
