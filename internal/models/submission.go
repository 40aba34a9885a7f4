package models

import "time"

// AnalysisJob represents a case analysis request read from the Redis stream
type AnalysisJob struct {
	CaseID      string    `json:"caseId"`
	Narrate     bool      `json:"narrate"`
	RequestedAt time.Time `json:"requestedAt"`
}
