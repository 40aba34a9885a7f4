package plagiarism

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

// PatternAnalyzer looks for duplication signals that the numeric score does
// not capture: long shared phrasings and matching document structure.
type PatternAnalyzer struct {
	minPhrase        int
	alertCount       int
	phraseFinding    string
	structuralRatio  float64
	structureFinding string
	autoJunk         bool
}

func NewPatternAnalyzer(opts Options) *PatternAnalyzer {
	return &PatternAnalyzer{
		minPhrase:        opts.CommonPhraseMinLength,
		alertCount:       opts.CommonPhraseAlertCount,
		phraseFinding:    opts.CommonPhraseFinding,
		structuralRatio:  opts.StructuralRatio,
		structureFinding: opts.StructureFinding,
		autoJunk:         opts.AutoJunk,
	}
}

// Analyze returns the findings for two merged texts, common phrases first.
func (p *PatternAnalyzer) Analyze(textA, textB string) []string {
	findings := []string{}

	if phrases := p.CommonPhrases(textA, textB); len(phrases) > p.alertCount {
		findings = append(findings, fmt.Sprintf(p.phraseFinding, len(phrases)))
	}
	if p.SimilarStructure(textA, textB) {
		findings = append(findings, p.structureFinding)
	}

	return findings
}

// CommonPhrases returns the substrings of textA that the sequence matcher
// aligns with textB and that are at least the minimum phrase length.
func (p *PatternAnalyzer) CommonPhrases(textA, textB string) []string {
	if textA == "" || textB == "" {
		return nil
	}

	runesA := []rune(textA)
	matcher := difflib.NewMatcherWithJunk(charTokens(textA), charTokens(textB), p.autoJunk, nil)

	var phrases []string
	for _, m := range matcher.GetMatchingBlocks() {
		if m.Size > 0 && m.Size >= p.minPhrase {
			phrases = append(phrases, string(runesA[m.A:m.A+m.Size]))
		}
	}
	return phrases
}

// SimilarStructure reports whether both texts have a non-zero and nearly
// equal number of paragraphs.
func (p *PatternAnalyzer) SimilarStructure(textA, textB string) bool {
	countA := countParagraphs(textA)
	countB := countParagraphs(textB)
	if countA == 0 || countB == 0 {
		return false
	}

	ratio := float64(min(countA, countB)) / float64(max(countA, countB))
	return ratio > p.structuralRatio
}
