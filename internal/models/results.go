package models

import (
	"time"
)

type Step string

const (
	StepIdle      Step = "idle"
	StepQueued    Step = "queued"
	StepFetching  Step = "fetching"
	StepMerging   Step = "merging"
	StepMatching  Step = "matching"
	StepVerdict   Step = "verdict"
	StepNarrating Step = "narrating"
	StepCompleted Step = "completed"
	StepFailed    Step = "failed"
)

// Classification of a single block pair.
type Classification string

const (
	ClassIdentical  Classification = "identical"
	ClassSuspicious Classification = "suspicious"
	ClassUnrelated  Classification = "unrelated"
)

// Category is the overall verdict of a comparison.
type Category string

const (
	CategoryIndependent Category = "independent"
	CategoryModerate    Category = "moderate"
	CategorySerious     Category = "serious"
	CategoryCritical    Category = "critical"
)

// Severity orders categories: independent < moderate < serious < critical.
func (c Category) Severity() int {
	switch c {
	case CategoryModerate:
		return 1
	case CategorySerious:
		return 2
	case CategoryCritical:
		return 3
	default:
		return 0
	}
}

// BlockPair is one cell of the block-by-block similarity matrix.
type BlockPair struct {
	BlockA         TextBlock      `bson:"blockA" json:"blockA" yaml:"block_a"`
	BlockB         TextBlock      `bson:"blockB" json:"blockB" yaml:"block_b"`
	Score          float64        `bson:"score" json:"score" yaml:"score"`
	Classification Classification `bson:"classification" json:"classification" yaml:"classification"`
}

// Verdict is the categorised outcome with its explanation.
type Verdict struct {
	Category    Category `bson:"category" json:"category" yaml:"category"`
	Explanation string   `bson:"explanation" json:"explanation" yaml:"explanation"`
}

// DuplicationResult is the outcome of comparing two document groups.
type DuplicationResult struct {
	OverallSimilarity  float64     `bson:"overall_similarity" json:"overall_similarity" yaml:"overall_similarity"`
	IdenticalBlocks    []string    `bson:"identical_blocks" json:"identical_blocks" yaml:"identical_blocks"`
	SuspiciousPairs    []BlockPair `bson:"suspicious_pairs" json:"suspicious_pairs" yaml:"suspicious_pairs"`
	StructuralPatterns []string    `bson:"structural_patterns" json:"structural_patterns" yaml:"structural_patterns"`
	Verdict            Verdict     `bson:"verdict" json:"verdict" yaml:"verdict"`
	BlocksA            int         `bson:"blocks_a" json:"blocks_a" yaml:"blocks_a"`
	BlocksB            int         `bson:"blocks_b" json:"blocks_b" yaml:"blocks_b"`
	IdenticalPairs     int         `bson:"identical_pairs" json:"identical_pairs" yaml:"identical_pairs"`
}

// LegalCase holds the filings of both parties of one case.
type LegalCase struct {
	ID           string            `bson:"caseId" json:"caseId"`
	Name         string            `bson:"name" json:"name"`
	Prosecutor   DocumentGroup     `bson:"prosecutor" json:"prosecutor"`
	Investigator DocumentGroup     `bson:"investigator" json:"investigator"`
	Sources      *CaseSources      `bson:"sources,omitempty" json:"sources,omitempty"`
	Metadata     map[string]string `bson:"metadata" json:"metadata"`
	Status       Step              `bson:"status" json:"status"`
	CreatedAt    time.Time         `bson:"createdAt" json:"createdAt"`
}

// CaseSources references documents held by the text-extraction service,
// fetched at analysis time instead of being stored inline.
type CaseSources struct {
	Prosecutor   []string `bson:"prosecutor" json:"prosecutor"`
	Investigator []string `bson:"investigator" json:"investigator"`
}

// CaseReport is the stored outcome of analysing a case.
type CaseReport struct {
	CaseID     string             `bson:"caseId" json:"caseId"`
	CaseName   string             `bson:"caseName" json:"caseName"`
	Status     string             `bson:"status" json:"status"` // completed, failed
	Result     *DuplicationResult `bson:"result,omitempty" json:"result,omitempty"`
	Conclusion string             `bson:"conclusion,omitempty" json:"conclusion,omitempty"`
	Error      string             `bson:"error,omitempty" json:"error,omitempty"`
	Duration   time.Duration      `bson:"duration" json:"duration"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// AnalyzeRequest is the body of a synchronous comparison.
type AnalyzeRequest struct {
	GroupA  DocumentGroup `json:"groupA"`
	GroupB  DocumentGroup `json:"groupB"`
	Narrate bool          `json:"narrate"`
}

// AnalyzeResponse is returned by a synchronous comparison.
type AnalyzeResponse struct {
	Result     *DuplicationResult `json:"result"`
	Conclusion string             `json:"conclusion,omitempty"`
}

// CreateCaseRequest registers a case for asynchronous analysis.
type CreateCaseRequest struct {
	Name         string            `json:"name" binding:"required"`
	Prosecutor   DocumentGroup     `json:"prosecutor"`
	Investigator DocumentGroup     `json:"investigator"`
	Sources      *CaseSources      `json:"sources"`
	Metadata     map[string]string `json:"metadata"`
}

// CaseResponse is returned when a case is accepted or queried.
type CaseResponse struct {
	Step   Step   `json:"step"`
	CaseID string `json:"caseId"`
}
