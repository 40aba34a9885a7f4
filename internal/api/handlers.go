package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/braindler/braindler-multimodal/internal/analysis"
	"github.com/braindler/braindler-multimodal/internal/models"
	"github.com/braindler/braindler-multimodal/internal/plagiarism"
)

// CaseService is the part of the analysis service the handlers use.
type CaseService interface {
	AnalyzeGroups(ctx context.Context, req models.AnalyzeRequest) (*models.AnalyzeResponse, error)
	CreateCase(ctx context.Context, req models.CreateCaseRequest, narrate bool) (*models.LegalCase, error)
	Status(ctx context.Context, caseID string) (models.Step, error)
	Report(ctx context.Context, caseID string) (*models.CaseReport, error)
}

// Handler holds dependencies for handlers
type Handler struct {
	service    CaseService
	computeSem chan struct{} // bounds concurrent synchronous comparisons
}

func NewHandler(service CaseService, maxConcurrent int) *Handler {
	return &Handler{
		service:    service,
		computeSem: make(chan struct{}, max(1, maxConcurrent)),
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}

// Analyze compares the two submitted groups and answers with the result.
func (h *Handler) Analyze(c *gin.Context) {
	var req models.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	ctx := c.Request.Context()
	select {
	case h.computeSem <- struct{}{}:
		defer func() { <-h.computeSem }()
	case <-ctx.Done():
		c.JSON(http.StatusRequestTimeout, ErrorResponse{
			Error: "Request cancelled",
			Code:  "REQUEST_TIMEOUT",
		})
		return
	}

	resp, err := h.service.AnalyzeGroups(ctx, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CreateCase stores a case and queues it; narrate=true asks for a written
// conclusion.
func (h *Handler) CreateCase(c *gin.Context) {
	var req models.CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	narrate, err := strconv.ParseBool(c.DefaultQuery("narrate", "false"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "narrate must be a boolean",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	legalCase, err := h.service.CreateCase(c.Request.Context(), req, narrate)
	if err != nil {
		writeError(c, err)
		return
	}

	// Return 202 Accepted, the analysis runs from the stream
	c.JSON(http.StatusAccepted, models.CaseResponse{
		Step:   legalCase.Status,
		CaseID: legalCase.ID,
	})
}

func (h *Handler) CaseStatus(c *gin.Context) {
	caseID := strings.TrimSpace(c.Param("id"))
	step, err := h.service.Status(c.Request.Context(), caseID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.CaseResponse{Step: step, CaseID: caseID})
}

func (h *Handler) CaseReport(c *gin.Context) {
	report, err := h.service.Report(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// writeError maps service errors onto status codes.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, analysis.ErrInvalidCase), errors.Is(err, plagiarism.ErrInvalidOptions):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
	case errors.Is(err, analysis.ErrCaseNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "CASE_NOT_FOUND"})
	case errors.Is(err, analysis.ErrReportNotReady):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "REPORT_NOT_READY"})
	case errors.Is(err, plagiarism.ErrResourceExhausted):
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: err.Error(), Code: "RESOURCE_EXHAUSTED"})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, ErrorResponse{Error: "Analysis timed out", Code: "REQUEST_TIMEOUT"})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Internal server error",
			Code:  "INTERNAL_ERROR",
		})
	}
}
