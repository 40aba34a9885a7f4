package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/braindler/braindler-multimodal/internal/metrics"
	"github.com/braindler/braindler-multimodal/internal/models"
	"github.com/braindler/braindler-multimodal/internal/narrator"
	"github.com/braindler/braindler-multimodal/internal/plagiarism"
)

type CaseStore interface {
	InsertCase(ctx context.Context, legalCase *models.LegalCase) error
	GetCase(ctx context.Context, caseID string) (*models.LegalCase, error)
	UpdateStatus(ctx context.Context, caseID string, step models.Step) error
}

type ReportStore interface {
	InsertReport(ctx context.Context, report *models.CaseReport) error
	GetLatestReport(ctx context.Context, caseID string) (*models.CaseReport, error)
}

// DocumentFetcher loads document text from the text-extraction service.
type DocumentFetcher interface {
	FetchGroup(ctx context.Context, name string, documentIDs []string) (models.DocumentGroup, error)
}

type Enqueuer interface {
	Enqueue(ctx context.Context, job models.AnalysisJob) (string, error)
}

type Deps struct {
	Detector *plagiarism.Detector
	Narrator narrator.Narrator // nil disables narration
	Cases    CaseStore
	Reports  ReportStore
	Status   StatusStore
	Fetcher  DocumentFetcher // nil when cases carry their text inline
	Queue    Enqueuer

	Timeout         time.Duration
	NarratorTimeout time.Duration
}

// Service runs comparisons of legal cases, either synchronously on
// submitted groups or asynchronously on stored cases.
type Service struct {
	detector        *plagiarism.Detector
	narrator        narrator.Narrator
	cases           CaseStore
	reports         ReportStore
	status          StatusStore
	fetcher         DocumentFetcher
	queue           Enqueuer
	timeout         time.Duration
	narratorTimeout time.Duration
}

func NewService(deps Deps) *Service {
	return &Service{
		detector:        deps.Detector,
		narrator:        deps.Narrator,
		cases:           deps.Cases,
		reports:         deps.Reports,
		status:          deps.Status,
		fetcher:         deps.Fetcher,
		queue:           deps.Queue,
		timeout:         deps.Timeout,
		narratorTimeout: deps.NarratorTimeout,
	}
}

// AnalyzeGroups compares two groups without storing anything.
func (s *Service) AnalyzeGroups(ctx context.Context, req models.AnalyzeRequest) (*models.AnalyzeResponse, error) {
	ctx, cancel := s.withTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	result, err := s.detector.Detect(ctx, req.GroupA, req.GroupB)
	if err != nil {
		metrics.ObserveAnalysis("failed", "", 0, time.Since(start))
		return nil, err
	}
	metrics.ObserveAnalysis("completed", string(result.Verdict.Category), result.BlocksA*result.BlocksB, time.Since(start))

	resp := &models.AnalyzeResponse{Result: result}
	if req.Narrate {
		resp.Conclusion = s.narrate(ctx, comparisonName(req.GroupA, req.GroupB), result)
	}
	return resp, nil
}

// CreateCase stores a new case and queues it for analysis.
func (s *Service) CreateCase(ctx context.Context, req models.CreateCaseRequest, narrate bool) (*models.LegalCase, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidCase)
	}
	if req.Sources != nil && s.fetcher == nil {
		return nil, fmt.Errorf("%w: document sources given but no text source is configured", ErrInvalidCase)
	}

	legalCase := &models.LegalCase{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Prosecutor:   req.Prosecutor,
		Investigator: req.Investigator,
		Sources:      req.Sources,
		Metadata:     req.Metadata,
		Status:       models.StepQueued,
	}
	if legalCase.Prosecutor.Name == "" {
		legalCase.Prosecutor.Name = "prosecutor"
	}
	if legalCase.Investigator.Name == "" {
		legalCase.Investigator.Name = "investigator"
	}

	if err := s.cases.InsertCase(ctx, legalCase); err != nil {
		return nil, err
	}
	s.setStatus(ctx, legalCase.ID, models.StepQueued)

	job := models.AnalysisJob{CaseID: legalCase.ID, Narrate: narrate, RequestedAt: time.Now()}
	if _, err := s.queue.Enqueue(ctx, job); err != nil {
		s.setStatus(ctx, legalCase.ID, models.StepFailed)
		return nil, fmt.Errorf("failed to enqueue case %s: %w", legalCase.ID, err)
	}

	log.Info().Str("caseId", legalCase.ID).Str("name", legalCase.Name).Msg("Case queued for analysis")
	return legalCase, nil
}

// Analyze runs the full pipeline for a stored case and persists its report.
func (s *Service) Analyze(ctx context.Context, job *models.AnalysisJob) error {
	ctx, cancel := s.withTimeout(ctx, s.timeout)
	defer cancel()

	legalCase, err := s.cases.GetCase(ctx, job.CaseID)
	if err != nil {
		return err
	}
	if legalCase == nil {
		return fmt.Errorf("%w: %s", ErrCaseNotFound, job.CaseID)
	}

	start := time.Now()
	logger := log.With().Str("caseId", legalCase.ID).Logger()
	logger.Info().Msg("Starting case analysis")

	prosecutor, investigator, err := s.resolveGroups(ctx, legalCase)
	if err != nil {
		return err
	}

	s.setStatus(ctx, legalCase.ID, models.StepMerging)
	textA := prosecutor.Merge()
	textB := investigator.Merge()

	s.setStatus(ctx, legalCase.ID, models.StepMatching)
	result, err := s.detector.DetectText(ctx, textA, textB)
	if err != nil {
		metrics.ObserveAnalysis("failed", "", 0, time.Since(start))
		return err
	}

	s.setStatus(ctx, legalCase.ID, models.StepVerdict)
	logger.Info().
		Float64("similarity", result.OverallSimilarity).
		Str("verdict", string(result.Verdict.Category)).
		Int("identical", len(result.IdenticalBlocks)).
		Int("suspicious", len(result.SuspiciousPairs)).
		Msg("Verdict reached")

	report := &models.CaseReport{
		CaseID:   legalCase.ID,
		CaseName: legalCase.Name,
		Status:   string(models.StepCompleted),
		Result:   result,
	}
	if job.Narrate {
		s.setStatus(ctx, legalCase.ID, models.StepNarrating)
		report.Conclusion = s.narrate(ctx, legalCase.Name, result)
	}
	report.Duration = time.Since(start)

	if err := s.reports.InsertReport(ctx, report); err != nil {
		return err
	}
	if err := s.cases.UpdateStatus(ctx, legalCase.ID, models.StepCompleted); err != nil {
		logger.Warn().Err(err).Msg("Failed to update case status")
	}
	s.setStatus(ctx, legalCase.ID, models.StepCompleted)
	metrics.ObserveAnalysis("completed", string(result.Verdict.Category), result.BlocksA*result.BlocksB, report.Duration)

	logger.Info().Dur("took", report.Duration).Msg("Case analysis completed")
	return nil
}

// Fail records a case whose analysis will not be retried.
func (s *Service) Fail(ctx context.Context, job *models.AnalysisJob, cause error) {
	logger := log.With().Str("caseId", job.CaseID).Logger()
	logger.Error().Err(cause).Msg("Case analysis failed")

	s.setStatus(ctx, job.CaseID, models.StepFailed)
	if errors.Is(cause, ErrCaseNotFound) {
		return
	}

	if err := s.cases.UpdateStatus(ctx, job.CaseID, models.StepFailed); err != nil {
		logger.Warn().Err(err).Msg("Failed to update case status")
	}
	report := &models.CaseReport{
		CaseID: job.CaseID,
		Status: string(models.StepFailed),
		Error:  cause.Error(),
	}
	if err := s.reports.InsertReport(ctx, report); err != nil {
		logger.Error().Err(err).Msg("Failed to store failure report")
	}
}

// Status returns the current step of a case.
func (s *Service) Status(ctx context.Context, caseID string) (models.Step, error) {
	step, err := s.status.GetStatus(ctx, caseID)
	if err != nil {
		log.Warn().Err(err).Str("caseId", caseID).Msg("Falling back to stored case status")
	}
	if err == nil && step != models.StepIdle {
		return step, nil
	}

	legalCase, err := s.cases.GetCase(ctx, caseID)
	if err != nil {
		return "", err
	}
	if legalCase == nil {
		return "", fmt.Errorf("%w: %s", ErrCaseNotFound, caseID)
	}
	return legalCase.Status, nil
}

// Report returns the latest report of a case.
func (s *Service) Report(ctx context.Context, caseID string) (*models.CaseReport, error) {
	report, err := s.reports.GetLatestReport(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if report != nil {
		return report, nil
	}

	legalCase, err := s.cases.GetCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if legalCase == nil {
		return nil, fmt.Errorf("%w: %s", ErrCaseNotFound, caseID)
	}
	return nil, fmt.Errorf("%w: case %s is %s", ErrReportNotReady, caseID, legalCase.Status)
}

// resolveGroups appends the documents fetched from the text source to the
// documents stored inline with the case.
func (s *Service) resolveGroups(ctx context.Context, legalCase *models.LegalCase) (models.DocumentGroup, models.DocumentGroup, error) {
	prosecutor := legalCase.Prosecutor
	investigator := legalCase.Investigator
	if legalCase.Sources == nil {
		return prosecutor, investigator, nil
	}
	if s.fetcher == nil {
		return prosecutor, investigator, fmt.Errorf("%w: no text source is configured", ErrInvalidCase)
	}

	s.setStatus(ctx, legalCase.ID, models.StepFetching)
	fetched, err := s.fetcher.FetchGroup(ctx, prosecutor.Name, legalCase.Sources.Prosecutor)
	if err != nil {
		return prosecutor, investigator, fmt.Errorf("failed to fetch prosecutor documents: %w", err)
	}
	prosecutor.Documents = append(prosecutor.Documents, fetched.Documents...)

	fetched, err = s.fetcher.FetchGroup(ctx, investigator.Name, legalCase.Sources.Investigator)
	if err != nil {
		return prosecutor, investigator, fmt.Errorf("failed to fetch investigator documents: %w", err)
	}
	investigator.Documents = append(investigator.Documents, fetched.Documents...)

	return prosecutor, investigator, nil
}

// narrate falls back to the deterministic explanation when the narrator fails.
func (s *Service) narrate(ctx context.Context, caseName string, result *models.DuplicationResult) string {
	if s.narrator == nil {
		return result.Verdict.Explanation
	}

	ctx, cancel := s.withTimeout(ctx, s.narratorTimeout)
	defer cancel()

	text, err := s.narrator.Narrate(ctx, result.Verdict.Category, result.Verdict.Explanation,
		narrator.Findings{CaseName: caseName, Result: result})
	if err != nil {
		log.Warn().Err(err).Str("case", caseName).Msg("Narration failed, using verdict explanation")
		return result.Verdict.Explanation
	}
	return text
}

func comparisonName(a, b models.DocumentGroup) string {
	var names []string
	for _, name := range []string{a.Name, b.Name} {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, " vs ")
}

func (s *Service) setStatus(ctx context.Context, caseID string, step models.Step) {
	if s.status == nil {
		return
	}
	if err := s.status.SetStatus(ctx, caseID, step); err != nil {
		log.Warn().Err(err).Str("caseId", caseID).Str("step", string(step)).Msg("Failed to record status")
	}
}

func (s *Service) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
