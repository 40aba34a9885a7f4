package narrator

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/braindler/braindler-multimodal/internal/models"
)

// Findings is the raw comparison data handed to a narrator.
type Findings struct {
	CaseName string
	Result   *models.DuplicationResult
}

// Narrator turns a categorical verdict into a written conclusion.
type Narrator interface {
	Narrate(ctx context.Context, category models.Category, explanation string, findings Findings) (string, error)
}

// Generator is a single-prompt text completion backend.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Static returns the deterministic explanation unchanged.
type Static struct{}

func (Static) Narrate(_ context.Context, _ models.Category, explanation string, _ Findings) (string, error) {
	return explanation, nil
}

// LLM narrates through a language model.
type LLM struct {
	gen Generator
}

func NewLLM(gen Generator) *LLM {
	return &LLM{gen: gen}
}

func (n *LLM) Narrate(ctx context.Context, category models.Category, explanation string, findings Findings) (string, error) {
	prompt := BuildPrompt(findings.CaseName, category, explanation, findings.Result)

	text, err := n.gen.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate conclusion: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("model returned an empty conclusion")
	}
	return text, nil
}

// Close releases the generator when it holds a connection.
func (n *LLM) Close() error {
	if closer, ok := n.gen.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// BuildPrompt asks the model for a prosecutor's conclusion on the
// comparison of the prosecutor's and the investigator's filings.
func BuildPrompt(caseName string, category models.Category, explanation string, result *models.DuplicationResult) string {
	var similarity float64
	var identical, suspicious int
	if result != nil {
		similarity = result.OverallSimilarity
		identical = len(result.IdenticalBlocks)
		suspicious = len(result.SuspiciousPairs)
	}
	if caseName == "" {
		caseName = "unnamed case"
	}

	var sb strings.Builder
	sb.WriteString("You are the supervising PROSECUTOR. Your duty is to oversee the lawfulness of the investigation.\n\n")
	fmt.Fprintf(&sb, "CASE: %s\n\n", caseName)
	sb.WriteString("COPY-PASTE ANALYSIS RESULTS:\n")
	fmt.Fprintf(&sb, "- Text similarity: %.2f%%\n", similarity)
	fmt.Fprintf(&sb, "- Identical blocks: %d\n", identical)
	fmt.Fprintf(&sb, "- Suspicious blocks: %d\n", suspicious)
	fmt.Fprintf(&sb, "- Verdict category: %s\n\n", category)
	sb.WriteString("VERDICT:\n")
	sb.WriteString(explanation)
	sb.WriteString("\n\nAs the prosecutor, give your conclusion:\n")
	sb.WriteString("1. Was the independence of the review respected?\n")
	sb.WriteString("2. Are there signs of a formal, rubber-stamp approach?\n")
	sb.WriteString("3. What measures must be taken?\n")
	sb.WriteString("4. Does the case serve truth and justice?\n\n")
	sb.WriteString("PROSECUTOR'S CONCLUSION:\n")
	return sb.String()
}
