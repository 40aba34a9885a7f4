package plagiarism

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/braindler/braindler-multimodal/internal/models"
)

// Detector composes the segmenter, scorer, block matcher, pattern analyzer
// and verdict generator into one comparison of two document groups.
type Detector struct {
	opts      Options
	segmenter *Segmenter
	scorer    *Scorer
	matcher   *BlockMatcher
	patterns  *PatternAnalyzer
	verdicts  *VerdictGenerator
}

// NewDetector validates opts and builds a detector. pool may be nil.
func NewDetector(opts Options, pool *WorkerPool) (*Detector, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Detector{
		opts:      opts,
		segmenter: NewSegmenter(opts.BlockSize),
		scorer:    NewScorer(opts),
		matcher:   NewBlockMatcher(opts, pool),
		patterns:  NewPatternAnalyzer(opts),
		verdicts:  NewVerdictGenerator(opts),
	}, nil
}

func (d *Detector) Options() Options {
	return d.opts
}

// Detect merges both groups and compares the merged texts.
func (d *Detector) Detect(ctx context.Context, groupA, groupB models.DocumentGroup) (*models.DuplicationResult, error) {
	return d.DetectText(ctx, groupA.Merge(), groupB.Merge())
}

// DetectText compares two already merged texts.
func (d *Detector) DetectText(ctx context.Context, textA, textB string) (*models.DuplicationResult, error) {
	start := time.Now()

	similarity := d.scorer.Score(textA, textB)

	blocksA := d.segmenter.Segment(textA)
	blocksB := d.segmenter.Segment(textB)

	pairs, err := d.matcher.Match(ctx, blocksA, blocksB)
	if err != nil {
		return nil, fmt.Errorf("failed to match blocks: %w", err)
	}
	identical, suspicious, identicalPairs := Summarize(pairs)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	findings := d.patterns.Analyze(textA, textB)
	verdict := d.verdicts.Verdict(similarity, len(identical), len(suspicious), findings)

	log.Debug().
		Float64("similarity", similarity).
		Int("blocksA", len(blocksA)).
		Int("blocksB", len(blocksB)).
		Int("identical", len(identical)).
		Int("suspicious", len(suspicious)).
		Str("verdict", string(verdict.Category)).
		Dur("took", time.Since(start)).
		Msg("Comparison finished")

	return &models.DuplicationResult{
		OverallSimilarity:  similarity,
		IdenticalBlocks:    identical,
		SuspiciousPairs:    suspicious,
		StructuralPatterns: findings,
		Verdict:            verdict,
		BlocksA:            len(blocksA),
		BlocksB:            len(blocksB),
		IdenticalPairs:     identicalPairs,
	}, nil
}
