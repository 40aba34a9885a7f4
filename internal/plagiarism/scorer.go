package plagiarism

import (
	"strings"
	"unicode/utf8"
)

// Breakdown holds the individual metrics behind a composite score.
// Metrics are in [0, 1]; Score is in [0, 100].
type Breakdown struct {
	Sequence     float64 `json:"sequence"`
	EditDistance float64 `json:"edit_distance"`
	TokenSort    float64 `json:"token_sort"`
	Score        float64 `json:"score"`
}

// Scorer computes the weighted three-metric similarity of two text spans.
type Scorer struct {
	weights  Weights
	guard    int
	autoJunk bool
}

func NewScorer(opts Options) *Scorer {
	return &Scorer{
		weights:  opts.Weights,
		guard:    opts.LevenshteinGuard,
		autoJunk: opts.AutoJunk,
	}
}

// Score returns the composite similarity of a and b in [0, 100].
func (s *Scorer) Score(a, b string) float64 {
	return s.Breakdown(a, b).Score
}

// Breakdown returns the composite similarity together with its metrics.
//
// Two blank spans score 100; exactly one blank span scores 0.
func (s *Scorer) Breakdown(a, b string) Breakdown {
	blankA := strings.TrimSpace(a) == ""
	blankB := strings.TrimSpace(b) == ""
	switch {
	case blankA && blankB:
		return Breakdown{Sequence: 1, EditDistance: 1, TokenSort: 1, Score: 100}
	case blankA || blankB:
		return Breakdown{}
	}

	seq := sequenceRatio(a, b, s.autoJunk)
	lev := seq
	if utf8.RuneCountInString(a) < s.guard && utf8.RuneCountInString(b) < s.guard {
		lev = editRatio(a, b)
	}
	tok := tokenSortRatio(a, b, s.guard, s.autoJunk)

	return Breakdown{
		Sequence:     seq,
		EditDistance: lev,
		TokenSort:    tok,
		Score:        s.combine(seq, lev, tok),
	}
}

// combine weights the metrics, normalised by the weight sum so custom
// weights keep the score within [0, 100].
func (s *Scorer) combine(seq, lev, tok float64) float64 {
	w := s.weights
	weighted := w.Sequence*seq + w.EditDistance*lev + w.TokenSort*tok
	score := 100 * weighted / w.sum()
	return clampPercent(score)
}

// BlockRatio is the fast pairwise ratio used for block matching: the
// sequence ratio alone, scaled to [0, 100]. Blocks are short, so the
// popular-element heuristic is never applied here.
func (s *Scorer) BlockRatio(a, b string) float64 {
	return clampPercent(100 * sequenceRatio(a, b, false))
}

func clampPercent(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
