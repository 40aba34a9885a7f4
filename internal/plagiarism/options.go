package plagiarism

import (
	"fmt"
	"math"
	"strings"

	"github.com/braindler/braindler-multimodal/internal/models"
)

// Weights holds the weight of each metric in the composite score
type Weights struct {
	Sequence     float64 `yaml:"sequence"`
	EditDistance float64 `yaml:"edit_distance"`
	TokenSort    float64 `yaml:"token_sort"`
}

func (w Weights) sum() float64 {
	return w.Sequence + w.EditDistance + w.TokenSort
}

// VerdictThresholds are the lower bounds of each verdict category,
// checked from critical down.
type VerdictThresholds struct {
	Critical float64 `yaml:"critical"`
	Serious  float64 `yaml:"serious"`
	Moderate float64 `yaml:"moderate"`
}

// Options configures every stage of the duplicate-detection pipeline.
// The defaults are empirically chosen and meant to be tuned.
type Options struct {
	BlockSize           int     `yaml:"block_size"`
	IdenticalThreshold  float64 `yaml:"identical_threshold"`
	SuspiciousThreshold float64 `yaml:"suspicious_threshold"`
	Weights             Weights `yaml:"weights"`

	// LevenshteinGuard is the length (in characters) at or above which the
	// edit-distance ratio falls back to the sequence ratio.
	LevenshteinGuard int `yaml:"levenshtein_guard"`
	// AutoJunk enables the popular-element heuristic of the sequence matcher
	// for whole-text comparisons of 200+ characters. Disabling it makes
	// common-phrase detection exhaustive at quadratic cost.
	AutoJunk bool `yaml:"auto_junk"`

	CommonPhraseMinLength  int     `yaml:"common_phrase_min_length"`
	CommonPhraseAlertCount int     `yaml:"common_phrase_alert_count"`
	CommonPhraseFinding    string  `yaml:"common_phrase_finding"` // one %d verb: phrase count
	StructuralRatio        float64 `yaml:"structural_ratio"`
	StructureFinding       string  `yaml:"structure_finding"`

	Verdict VerdictThresholds `yaml:"verdict"`

	// MaxBlockPairs bounds the block cross-product; 0 disables the bound.
	MaxBlockPairs int `yaml:"max_block_pairs"`
}

// DefaultOptions returns the stock configuration.
func DefaultOptions() Options {
	return Options{
		BlockSize:           500,
		IdenticalThreshold:  95.0,
		SuspiciousThreshold: 70.0,
		Weights: Weights{
			Sequence:     0.4,
			EditDistance: 0.3,
			TokenSort:    0.3,
		},
		LevenshteinGuard:       10000,
		AutoJunk:               true,
		CommonPhraseMinLength:  30,
		CommonPhraseAlertCount: 50,
		CommonPhraseFinding:    "Found %d repeated phrasings shared between the documents",
		StructuralRatio:        0.9,
		StructureFinding:       "Identical document structure",
		Verdict: VerdictThresholds{
			Critical: 80.0,
			Serious:  60.0,
			Moderate: 40.0,
		},
		MaxBlockPairs: 4000000,
	}
}

func (o Options) Validate() error {
	if o.BlockSize <= 0 {
		return fmt.Errorf("%w: block_size must be greater than 0", ErrInvalidOptions)
	}
	if !inPercentRange(o.IdenticalThreshold) || !inPercentRange(o.SuspiciousThreshold) {
		return fmt.Errorf("%w: block thresholds must be within [0, 100]", ErrInvalidOptions)
	}
	if o.SuspiciousThreshold > o.IdenticalThreshold {
		return fmt.Errorf("%w: suspicious_threshold (%.2f) exceeds identical_threshold (%.2f)",
			ErrInvalidOptions, o.SuspiciousThreshold, o.IdenticalThreshold)
	}
	if o.Weights.Sequence < 0 || o.Weights.EditDistance < 0 || o.Weights.TokenSort < 0 {
		return fmt.Errorf("%w: weights must not be negative", ErrInvalidOptions)
	}
	if o.Weights.sum() <= 0 {
		return fmt.Errorf("%w: at least one weight must be positive", ErrInvalidOptions)
	}
	if o.LevenshteinGuard <= 0 {
		return fmt.Errorf("%w: levenshtein_guard must be greater than 0", ErrInvalidOptions)
	}
	if o.CommonPhraseMinLength <= 0 {
		return fmt.Errorf("%w: common_phrase_min_length must be greater than 0", ErrInvalidOptions)
	}
	if !singleCountVerb(o.CommonPhraseFinding) {
		return fmt.Errorf("%w: common_phrase_finding must contain exactly one %%d verb", ErrInvalidOptions)
	}
	if o.CommonPhraseAlertCount < 0 {
		return fmt.Errorf("%w: common_phrase_alert_count must not be negative", ErrInvalidOptions)
	}
	if o.StructuralRatio < 0 || o.StructuralRatio > 1 {
		return fmt.Errorf("%w: structural_ratio must be within [0, 1]", ErrInvalidOptions)
	}
	v := o.Verdict
	if !inPercentRange(v.Critical) || !inPercentRange(v.Serious) || !inPercentRange(v.Moderate) {
		return fmt.Errorf("%w: verdict thresholds must be within [0, 100]", ErrInvalidOptions)
	}
	if v.Moderate > v.Serious || v.Serious > v.Critical {
		return fmt.Errorf("%w: verdict thresholds must satisfy moderate <= serious <= critical", ErrInvalidOptions)
	}
	if o.MaxBlockPairs < 0 {
		return fmt.Errorf("%w: max_block_pairs must not be negative", ErrInvalidOptions)
	}
	return nil
}

// singleCountVerb reports whether format has exactly one verb and it is %d.
func singleCountVerb(format string) bool {
	stripped := strings.ReplaceAll(format, "%%", "")
	return strings.Count(stripped, "%") == 1 && strings.Count(stripped, "%d") == 1
}

// Classify maps a block-pair score onto identical/suspicious/unrelated.
func (o Options) Classify(score float64) models.Classification {
	switch {
	case score >= o.IdenticalThreshold:
		return models.ClassIdentical
	case score >= o.SuspiciousThreshold:
		return models.ClassSuspicious
	default:
		return models.ClassUnrelated
	}
}

func inPercentRange(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 100
}
