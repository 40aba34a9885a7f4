package stream

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/braindler/braindler-multimodal/internal/models"
)

const (
	fieldCaseID      = "caseId"
	fieldNarrate     = "narrate"
	fieldRequestedAt = "requestedAt"
)

// StreamMessage is a stream entry with its string fields.
type StreamMessage struct {
	ID     string
	Fields map[string]string
}

// ParseJob reads an analysis job from a stream message. Only caseId is
// required.
func ParseJob(msg *StreamMessage) (*models.AnalysisJob, error) {
	caseID := strings.TrimSpace(msg.Fields[fieldCaseID])
	if caseID == "" {
		return nil, fmt.Errorf("message %s: missing %s", msg.ID, fieldCaseID)
	}

	job := &models.AnalysisJob{CaseID: caseID}

	if raw := msg.Fields[fieldNarrate]; raw != "" {
		narrate, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("message %s: invalid %s %q: %w", msg.ID, fieldNarrate, raw, err)
		}
		job.Narrate = narrate
	}

	if raw := msg.Fields[fieldRequestedAt]; raw != "" {
		requestedAt, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("message %s: invalid %s %q: %w", msg.ID, fieldRequestedAt, raw, err)
		}
		job.RequestedAt = requestedAt
	}

	return job, nil
}

func jobValues(job models.AnalysisJob) map[string]interface{} {
	values := map[string]interface{}{
		fieldCaseID:  job.CaseID,
		fieldNarrate: strconv.FormatBool(job.Narrate),
	}
	if !job.RequestedAt.IsZero() {
		values[fieldRequestedAt] = job.RequestedAt.UTC().Format(time.RFC3339Nano)
	}
	return values
}
