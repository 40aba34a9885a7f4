package plagiarism

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exhaustiveOptions() Options {
	opts := DefaultOptions()
	opts.AutoJunk = false
	return opts
}

func TestCommonPhrases(t *testing.T) {
	p := NewPatternAnalyzer(exhaustiveOptions())

	phrases := p.CommonPhrases(sharedParagraph, joinParagraphs(investigatorParagraphs[0], sharedParagraph))

	require.Len(t, phrases, 1)
	assert.Equal(t, sharedParagraph, phrases[0])
}

func TestCommonPhrasesIgnoresShortMatches(t *testing.T) {
	p := NewPatternAnalyzer(exhaustiveOptions())

	assert.Empty(t, p.CommonPhrases("the same words", "the same words"))
	assert.Empty(t, p.CommonPhrases("", sharedParagraph))
}

func TestAnalyzeCommonPhraseAlert(t *testing.T) {
	opts := exhaustiveOptions()
	opts.CommonPhraseAlertCount = 0
	p := NewPatternAnalyzer(opts)

	findings := p.Analyze(sharedParagraph, joinParagraphs(investigatorParagraphs[0], sharedParagraph))

	assert.Equal(t, []string{"Found 1 repeated phrasings shared between the documents"}, findings)
}

func TestAnalyzeBelowAlertCount(t *testing.T) {
	p := NewPatternAnalyzer(exhaustiveOptions())

	findings := p.Analyze(sharedParagraph, joinParagraphs(investigatorParagraphs[0], sharedParagraph))

	assert.Empty(t, findings)
	assert.NotNil(t, findings)
}

func TestAnalyzeStructure(t *testing.T) {
	p := NewPatternAnalyzer(DefaultOptions())

	findings := p.Analyze(joinParagraphs(prosecutorParagraphs...), joinParagraphs(investigatorParagraphs...))

	assert.Equal(t, []string{"Identical document structure"}, findings)
}

func TestSimilarStructure(t *testing.T) {
	p := NewPatternAnalyzer(DefaultOptions())

	paragraphs := func(n int) string {
		return strings.TrimSuffix(strings.Repeat("paragraph\n\n", n), "\n\n")
	}

	assert.True(t, p.SimilarStructure(paragraphs(3), paragraphs(3)))
	assert.True(t, p.SimilarStructure(paragraphs(20), paragraphs(19)))
	assert.False(t, p.SimilarStructure(paragraphs(10), paragraphs(9)))
	assert.False(t, p.SimilarStructure(paragraphs(1), paragraphs(3)))
	assert.False(t, p.SimilarStructure("", paragraphs(3)))
	assert.False(t, p.SimilarStructure("", ""))
}

func TestSimilarStructureIgnoresBlankParagraphs(t *testing.T) {
	p := NewPatternAnalyzer(DefaultOptions())

	assert.Equal(t, 2, countParagraphs("a\n\n\n\n\n\nb"))
	assert.Equal(t, 0, countParagraphs("\n\n  \n\n"))
	assert.True(t, p.SimilarStructure("a\n\n\n\n\n\nb", "a\n\nb"))
	assert.False(t, p.SimilarStructure("\n\n\n\n", "\n\n\n\n"))
}
