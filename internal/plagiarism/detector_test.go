package plagiarism

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/braindler/braindler-multimodal/internal/models"
)

func group(name string, pages ...string) models.DocumentGroup {
	doc := models.Document{ID: name + "-1", Pages: map[int]string{}}
	for i, page := range pages {
		doc.Pages[i+1] = page
	}
	return models.DocumentGroup{Name: name, Documents: []models.Document{doc}}
}

func newTestDetector(t *testing.T, pool *WorkerPool) *Detector {
	t.Helper()
	d, err := NewDetector(DefaultOptions(), pool)
	require.NoError(t, err)
	return d
}

func TestNewDetectorRejectsInvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.BlockSize = -1

	_, err := NewDetector(opts, nil)
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestDetectIdenticalDocuments(t *testing.T) {
	d := newTestDetector(t, nil)
	text := []string{sharedParagraph, prosecutorParagraphs[0], prosecutorParagraphs[1]}
	require.GreaterOrEqual(t, len(joinParagraphs(text...)), 600)

	result, err := d.Detect(context.Background(), group("prosecutor", text...), group("investigator", text...))
	require.NoError(t, err)

	assert.Equal(t, 100.0, result.OverallSimilarity)
	assert.Equal(t, models.CategoryCritical, result.Verdict.Category)
	assert.NotEmpty(t, result.IdenticalBlocks)
	assert.Contains(t, result.StructuralPatterns, "Identical document structure")
	assert.Contains(t, result.Verdict.Explanation, "fully identical blocks")
}

func TestDetectSharedParagraph(t *testing.T) {
	d := newTestDetector(t, nil)
	for _, p := range append(append([]string{sharedParagraph}, prosecutorParagraphs...), investigatorParagraphs...) {
		require.GreaterOrEqual(t, len(p), 250, "every paragraph must form its own block")
		require.Less(t, len(p), 500)
	}

	a := group("prosecutor", prosecutorParagraphs[0], sharedParagraph, prosecutorParagraphs[1])
	b := group("investigator", investigatorParagraphs[0], investigatorParagraphs[1], sharedParagraph)

	result, err := d.Detect(context.Background(), a, b)
	require.NoError(t, err)

	assert.Equal(t, 3, result.BlocksA)
	assert.Equal(t, 3, result.BlocksB)
	assert.Equal(t, 1, result.IdenticalPairs)
	assert.Equal(t, []string{sharedParagraph}, result.IdenticalBlocks)
	assert.Greater(t, result.OverallSimilarity, 0.0)
	assert.Less(t, result.OverallSimilarity, 100.0)
}

func TestDetectDisjointDocuments(t *testing.T) {
	d := newTestDetector(t, nil)

	result, err := d.Detect(context.Background(),
		group("prosecutor", prosecutorParagraphs...),
		group("investigator", russianParagraphs...))
	require.NoError(t, err)

	assert.Less(t, result.OverallSimilarity, 40.0)
	assert.Equal(t, models.CategoryIndependent, result.Verdict.Category)
	assert.Empty(t, result.IdenticalBlocks)
	assert.Empty(t, result.SuspiciousPairs)
}

func TestDetectEmptyGroups(t *testing.T) {
	d := newTestDetector(t, nil)

	result, err := d.Detect(context.Background(), models.DocumentGroup{}, models.DocumentGroup{})
	require.NoError(t, err)
	assert.Equal(t, 100.0, result.OverallSimilarity)
	assert.Zero(t, result.BlocksA)

	result, err = d.Detect(context.Background(), models.DocumentGroup{}, group("investigator", sharedParagraph))
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.OverallSimilarity)
	assert.Equal(t, models.CategoryIndependent, result.Verdict.Category)
}

func TestDetectIsDeterministic(t *testing.T) {
	ctx := context.Background()
	pool := NewWorkerPool(ctx, 3)
	defer pool.Close()

	a := group("prosecutor", prosecutorParagraphs[0], sharedParagraph, reworded)
	b := group("investigator", investigatorParagraphs[0], sharedParagraph, prosecutorParagraphs[1])

	first, err := newTestDetector(t, nil).Detect(ctx, a, b)
	require.NoError(t, err)
	second, err := newTestDetector(t, pool).Detect(ctx, a, b)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDetectTextReportsSuspiciousPairs(t *testing.T) {
	d := newTestDetector(t, nil)

	result, err := d.DetectText(context.Background(), sharedParagraph, reworded)
	require.NoError(t, err)

	require.Len(t, result.SuspiciousPairs, 1)
	assert.Equal(t, models.ClassSuspicious, result.SuspiciousPairs[0].Classification)
	assert.True(t, strings.Contains(result.Verdict.Explanation, "Found 1 suspiciously similar blocks."))
}
