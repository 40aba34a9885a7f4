package textsource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/braindler/braindler-multimodal/internal/models"
	"github.com/rs/zerolog/log"
)

// Client fetches extracted page text from the text-extraction service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type textRequest struct {
	DocumentIDs []string `json:"documentIds"`
}

// TextResponse is the {document_id: {page_number: text}} payload.
type TextResponse struct {
	Documents map[string]map[int]string `json:"documents"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// FetchPages returns the page texts of the requested documents.
func (c *Client) FetchPages(ctx context.Context, documentIDs []string) (map[string]map[int]string, error) {
	url := fmt.Sprintf("%s/api/v1/documents/text", c.baseURL)

	reqBody, err := json.Marshal(textRequest{DocumentIDs: documentIDs})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusBadRequest ||
		resp.StatusCode == http.StatusNotFound ||
		resp.StatusCode == http.StatusUnprocessableEntity {
		var errResp errorResponse
		if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == "" {
			return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("API error: %s - %s", errResp.Error, errResp.Message)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	var textResp TextResponse
	if err := json.Unmarshal(body, &textResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	log.Debug().
		Int("requested", len(documentIDs)).
		Int("received", len(textResp.Documents)).
		Msg("Fetched document text")

	return textResp.Documents, nil
}

// FetchGroup fetches the documents and builds a named group from them.
// Documents the service does not return are skipped.
func (c *Client) FetchGroup(ctx context.Context, name string, documentIDs []string) (models.DocumentGroup, error) {
	if len(documentIDs) == 0 {
		return models.DocumentGroup{Name: name}, nil
	}
	pages, err := c.FetchPages(ctx, documentIDs)
	if err != nil {
		return models.DocumentGroup{}, err
	}
	return models.GroupFromPageMap(name, pages), nil
}
