package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/braindler/braindler-multimodal/internal/models"
	"github.com/braindler/braindler-multimodal/internal/narrator"
	"github.com/braindler/braindler-multimodal/internal/plagiarism"
)

const filing = "The accused entered the warehouse through the unlocked service door at the rear of the building shortly before midnight.\n\n" +
	"Two witnesses confirmed his presence near the loading bay and described the vehicle he used in consistent detail.\n\n" +
	"Security footage recovered from the neighbouring property corroborates both statements."

type fixture struct {
	svc      *Service
	cases    *memoryCases
	reports  *memoryReports
	status   *memoryStatus
	queue    *memoryQueue
	narrator *mockNarrator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	detector, err := plagiarism.NewDetector(plagiarism.DefaultOptions(), nil)
	require.NoError(t, err)

	f := &fixture{
		cases:    newMemoryCases(),
		reports:  &memoryReports{},
		status:   newMemoryStatus(),
		queue:    &memoryQueue{},
		narrator: &mockNarrator{text: "The review was a formality."},
	}
	f.svc = NewService(Deps{
		Detector: detector,
		Narrator: f.narrator,
		Cases:    f.cases,
		Reports:  f.reports,
		Status:   f.status,
		Queue:    f.queue,
	})
	return f
}

func singleDoc(name, text string) models.DocumentGroup {
	return models.DocumentGroup{Name: name, Documents: []models.Document{{ID: name + "-1", Pages: map[int]string{1: text}}}}
}

func TestAnalyzeGroups(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.AnalyzeGroups(context.Background(), models.AnalyzeRequest{
		GroupA:  singleDoc("prosecutor", filing),
		GroupB:  singleDoc("investigator", filing),
		Narrate: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 100.0, resp.Result.OverallSimilarity)
	assert.Equal(t, models.CategoryCritical, resp.Result.Verdict.Category)
	assert.Equal(t, "The review was a formality.", resp.Conclusion)
	require.Len(t, f.narrator.got, 1)
	assert.Equal(t, "prosecutor vs investigator", f.narrator.got[0].CaseName)
}

func TestAnalyzeGroupsNarrationFallsBack(t *testing.T) {
	f := newFixture(t)
	f.narrator.err = errors.New("model offline")

	resp, err := f.svc.AnalyzeGroups(context.Background(), models.AnalyzeRequest{
		GroupA:  singleDoc("a", filing),
		GroupB:  singleDoc("b", "Something else entirely."),
		Narrate: true,
	})
	require.NoError(t, err)
	assert.Equal(t, resp.Result.Verdict.Explanation, resp.Conclusion)
}

func TestAnalyzeGroupsWithoutNarration(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.AnalyzeGroups(context.Background(), models.AnalyzeRequest{
		GroupA: singleDoc("a", filing),
		GroupB: singleDoc("b", filing),
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Conclusion)
	assert.Empty(t, f.narrator.got)
}

func TestCreateCaseQueuesJob(t *testing.T) {
	f := newFixture(t)

	legalCase, err := f.svc.CreateCase(context.Background(), models.CreateCaseRequest{
		Name:         "State v. Doe",
		Prosecutor:   singleDoc("", filing),
		Investigator: singleDoc("", filing),
	}, true)
	require.NoError(t, err)

	assert.NotEmpty(t, legalCase.ID)
	assert.Equal(t, "prosecutor", legalCase.Prosecutor.Name)
	assert.Equal(t, models.StepQueued, legalCase.Status)
	require.Len(t, f.queue.jobs, 1)
	assert.Equal(t, legalCase.ID, f.queue.jobs[0].CaseID)
	assert.True(t, f.queue.jobs[0].Narrate)
	assert.Equal(t, models.StepQueued, f.status.steps[legalCase.ID])
}

func TestCreateCaseValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateCase(context.Background(), models.CreateCaseRequest{Name: "  "}, false)
	assert.ErrorIs(t, err, ErrInvalidCase)

	_, err = f.svc.CreateCase(context.Background(), models.CreateCaseRequest{
		Name:    "sources without fetcher",
		Sources: &models.CaseSources{Prosecutor: []string{"doc-1"}},
	}, false)
	assert.ErrorIs(t, err, ErrInvalidCase)
}

func TestCreateCaseEnqueueFailure(t *testing.T) {
	f := newFixture(t)
	f.queue.err = errors.New("redis down")

	_, err := f.svc.CreateCase(context.Background(), models.CreateCaseRequest{Name: "State v. Doe"}, false)
	require.Error(t, err)

	for _, step := range f.status.steps {
		assert.Equal(t, models.StepFailed, step)
	}
}

func TestAnalyzeStoredCase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	legalCase, err := f.svc.CreateCase(ctx, models.CreateCaseRequest{
		Name:         "State v. Doe",
		Prosecutor:   singleDoc("prosecutor", filing),
		Investigator: singleDoc("investigator", filing),
	}, true)
	require.NoError(t, err)

	require.NoError(t, f.svc.Analyze(ctx, &f.queue.jobs[0]))

	report, err := f.svc.Report(ctx, legalCase.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", report.Status)
	assert.Equal(t, "State v. Doe", report.CaseName)
	assert.Equal(t, models.CategoryCritical, report.Result.Verdict.Category)
	assert.Equal(t, "The review was a formality.", report.Conclusion)

	step, err := f.svc.Status(ctx, legalCase.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StepCompleted, step)

	assert.Equal(t, []models.Step{
		models.StepQueued,
		models.StepMerging,
		models.StepMatching,
		models.StepVerdict,
		models.StepNarrating,
		models.StepCompleted,
	}, f.status.history[legalCase.ID])

	stored, _ := f.cases.GetCase(ctx, legalCase.ID)
	assert.Equal(t, models.StepCompleted, stored.Status)
}

func TestAnalyzeFetchesSources(t *testing.T) {
	f := newFixture(t)
	f.svc.fetcher = &stubFetcher{groups: map[string]models.DocumentGroup{
		"prosecutor":   singleDoc("prosecutor", filing),
		"investigator": singleDoc("investigator", filing),
	}}
	ctx := context.Background()

	legalCase, err := f.svc.CreateCase(ctx, models.CreateCaseRequest{
		Name:    "Fetched",
		Sources: &models.CaseSources{Prosecutor: []string{"p-1"}, Investigator: []string{"i-1"}},
	}, false)
	require.NoError(t, err)
	require.NoError(t, f.svc.Analyze(ctx, &f.queue.jobs[0]))

	report, err := f.svc.Report(ctx, legalCase.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, report.Result.OverallSimilarity)
	assert.Empty(t, report.Conclusion)
	assert.Contains(t, f.status.history[legalCase.ID], models.StepFetching)
}

func TestAnalyzeFetchFailureIsRetryable(t *testing.T) {
	f := newFixture(t)
	fetcher := &stubFetcher{}
	f.svc.fetcher = fetcher
	ctx := context.Background()

	_, err := f.svc.CreateCase(ctx, models.CreateCaseRequest{
		Name:    "Fetched",
		Sources: &models.CaseSources{Prosecutor: []string{"p-1"}},
	}, false)
	require.NoError(t, err)

	fetcher.err = errors.New("text source unavailable")
	err = f.svc.Analyze(ctx, &f.queue.jobs[0])
	require.Error(t, err)
	assert.False(t, IsPermanent(err))
}

func TestAnalyzeUnknownCase(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Analyze(context.Background(), &models.AnalysisJob{CaseID: "missing"})
	assert.ErrorIs(t, err, ErrCaseNotFound)
	assert.True(t, IsPermanent(err))
}

func TestFailStoresReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	legalCase, err := f.svc.CreateCase(ctx, models.CreateCaseRequest{Name: "Too big"}, false)
	require.NoError(t, err)

	f.svc.Fail(ctx, &f.queue.jobs[0], plagiarism.ErrResourceExhausted)

	report, err := f.svc.Report(ctx, legalCase.ID)
	require.NoError(t, err)
	assert.Equal(t, "failed", report.Status)
	assert.True(t, strings.Contains(report.Error, "resource exhausted"))

	step, err := f.svc.Status(ctx, legalCase.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StepFailed, step)
}

func TestReportNotReady(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	legalCase, err := f.svc.CreateCase(ctx, models.CreateCaseRequest{Name: "Pending"}, false)
	require.NoError(t, err)

	_, err = f.svc.Report(ctx, legalCase.ID)
	assert.ErrorIs(t, err, ErrReportNotReady)

	_, err = f.svc.Report(ctx, "missing")
	assert.ErrorIs(t, err, ErrCaseNotFound)

	_, err = f.svc.Status(ctx, "missing")
	assert.ErrorIs(t, err, ErrCaseNotFound)
}

func TestStatusFallsBackToStoredCase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.cases.InsertCase(ctx, &models.LegalCase{ID: "c-1", Name: "Old", Status: models.StepCompleted}))

	step, err := f.svc.Status(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, models.StepCompleted, step)
}

func TestIsPermanent(t *testing.T) {
	assert.True(t, IsPermanent(ErrInvalidCase))
	assert.True(t, IsPermanent(plagiarism.ErrInvalidOptions))
	assert.True(t, IsPermanent(errors.Join(errors.New("wrapped"), plagiarism.ErrResourceExhausted)))
	assert.False(t, IsPermanent(context.DeadlineExceeded))
	assert.False(t, IsPermanent(errors.New("network")))
}

var _ narrator.Narrator = (*mockNarrator)(nil)
