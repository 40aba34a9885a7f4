package plagiarism

import (
	"strings"
	"unicode/utf8"

	"github.com/braindler/braindler-multimodal/internal/models"
)

// Segmenter splits merged text into paragraph-aligned blocks of roughly
// BlockSize characters.
type Segmenter struct {
	blockSize int
}

func NewSegmenter(blockSize int) *Segmenter {
	return &Segmenter{blockSize: blockSize}
}

// Segment accumulates paragraphs while the running block plus the next
// paragraph stays below the block size. A paragraph is never split, so a
// paragraph longer than the block size becomes a block of its own.
func (s *Segmenter) Segment(text string) []models.TextBlock {
	if text == "" {
		return nil
	}

	var blocks []models.TextBlock
	var current strings.Builder
	currentLen := 0

	emit := func() {
		block := strings.TrimSpace(current.String())
		if block != "" {
			blocks = append(blocks, models.TextBlock{Index: len(blocks), Text: block})
		}
		current.Reset()
		currentLen = 0
	}

	sepLen := utf8.RuneCountInString(models.ParagraphSeparator)
	for _, para := range strings.Split(text, models.ParagraphSeparator) {
		paraLen := utf8.RuneCountInString(para)
		if currentLen+paraLen >= s.blockSize {
			emit()
		}
		current.WriteString(para)
		current.WriteString(models.ParagraphSeparator)
		currentLen += paraLen + sepLen
	}
	emit()

	return blocks
}

// countParagraphs returns the number of non-blank paragraphs in text.
// Empty parts left by runs of blank lines are not paragraphs, so two empty
// texts have no structure to compare rather than an identical one.
func countParagraphs(text string) int {
	count := 0
	for _, para := range strings.Split(text, models.ParagraphSeparator) {
		if strings.TrimSpace(para) != "" {
			count++
		}
	}
	return count
}
