package analysis

import (
	"context"
	"errors"
	"sync"

	"github.com/braindler/braindler-multimodal/internal/models"
	"github.com/braindler/braindler-multimodal/internal/narrator"
)

type memoryCases struct {
	mu    sync.Mutex
	cases map[string]*models.LegalCase
	err   error
}

func newMemoryCases() *memoryCases {
	return &memoryCases{cases: map[string]*models.LegalCase{}}
}

func (m *memoryCases) InsertCase(_ context.Context, c *models.LegalCase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	copied := *c
	m.cases[c.ID] = &copied
	return nil
}

func (m *memoryCases) GetCase(_ context.Context, caseID string) (*models.LegalCase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.cases[caseID]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (m *memoryCases) UpdateStatus(_ context.Context, caseID string, step models.Step) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cases[caseID]
	if !ok {
		return errors.New("not found")
	}
	c.Status = step
	return nil
}

type memoryReports struct {
	mu      sync.Mutex
	reports []*models.CaseReport
}

func (m *memoryReports) InsertReport(_ context.Context, r *models.CaseReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, r)
	return nil
}

func (m *memoryReports) GetLatestReport(_ context.Context, caseID string) (*models.CaseReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.reports) - 1; i >= 0; i-- {
		if m.reports[i].CaseID == caseID {
			return m.reports[i], nil
		}
	}
	return nil, nil
}

type memoryStatus struct {
	mu      sync.Mutex
	steps   map[string]models.Step
	history map[string][]models.Step
}

func newMemoryStatus() *memoryStatus {
	return &memoryStatus{steps: map[string]models.Step{}, history: map[string][]models.Step{}}
}

func (m *memoryStatus) SetStatus(_ context.Context, caseID string, step models.Step) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps[caseID] = step
	m.history[caseID] = append(m.history[caseID], step)
	return nil
}

func (m *memoryStatus) GetStatus(_ context.Context, caseID string) (models.Step, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if step, ok := m.steps[caseID]; ok {
		return step, nil
	}
	return models.StepIdle, nil
}

type memoryQueue struct {
	jobs []models.AnalysisJob
	err  error
}

func (m *memoryQueue) Enqueue(_ context.Context, job models.AnalysisJob) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.jobs = append(m.jobs, job)
	return "1-0", nil
}

type stubFetcher struct {
	groups map[string]models.DocumentGroup
	err    error
}

func (f *stubFetcher) FetchGroup(_ context.Context, name string, _ []string) (models.DocumentGroup, error) {
	if f.err != nil {
		return models.DocumentGroup{}, f.err
	}
	return f.groups[name], nil
}

type mockNarrator struct {
	text string
	err  error
	got  []narrator.Findings
}

func (m *mockNarrator) Narrate(_ context.Context, _ models.Category, _ string, f narrator.Findings) (string, error) {
	m.got = append(m.got, f)
	return m.text, m.err
}
