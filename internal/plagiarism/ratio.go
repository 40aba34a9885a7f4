package plagiarism

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// charTokens splits text into one element per character so the line-based
// sequence matcher can align characters.
func charTokens(text string) []string {
	tokens := make([]string, 0, len(text))
	for _, r := range text {
		tokens = append(tokens, string(r))
	}
	return tokens
}

// sequenceRatio returns the Ratcliff/Obershelp ratio 2*M/(len(a)+len(b)).
// The matcher is asymmetric in the junk heuristic, so arguments are put in
// a canonical order first.
func sequenceRatio(a, b string, autoJunk bool) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	if b < a {
		a, b = b, a
	}
	matcher := difflib.NewMatcherWithJunk(charTokens(a), charTokens(b), autoJunk, nil)
	return matcher.Ratio()
}

// editRatio returns 1 - levenshtein(a, b) / max(len(a), len(b)).
func editRatio(a, b string) float64 {
	lenA := utf8.RuneCountInString(a)
	lenB := utf8.RuneCountInString(b)
	maxLen := max(lenA, lenB)
	if maxLen == 0 {
		return 1.0
	}

	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(maxLen)
}

// guardedEditRatio computes editRatio when both texts are shorter than
// guard characters and falls back to the sequence ratio otherwise.
func guardedEditRatio(a, b string, guard int, autoJunk bool) float64 {
	if utf8.RuneCountInString(a) < guard && utf8.RuneCountInString(b) < guard {
		return editRatio(a, b)
	}
	return sequenceRatio(a, b, autoJunk)
}

// sortedTokens normalises text (NFC, case folding, punctuation to spaces),
// splits it on whitespace and joins the tokens back in byte order.
func sortedTokens(text string) string {
	folded := cases.Fold().String(norm.NFC.String(text))
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return r
		}
		return ' '
	}, folded)

	tokens := strings.Fields(cleaned)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// tokenSortRatio compares the sorted token forms of both texts with the
// edit-distance ratio, so reordered phrasing still scores high.
//
// A text without letters or digits has no tokens. Against a text with
// tokens it scores 0; when neither has tokens the raw sequence ratio is
// used, so identical punctuation still scores 1 and different punctuation
// does not.
func tokenSortRatio(a, b string, guard int, autoJunk bool) float64 {
	sortedA, sortedB := sortedTokens(a), sortedTokens(b)
	switch {
	case sortedA == "" && sortedB == "":
		return sequenceRatio(a, b, autoJunk)
	case sortedA == "" || sortedB == "":
		return 0
	}
	return guardedEditRatio(sortedA, sortedB, guard, autoJunk)
}
