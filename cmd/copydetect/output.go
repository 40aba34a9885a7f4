package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/braindler/braindler-multimodal/internal/models"
)

// Report is what the CLI prints for one comparison.
type Report struct {
	GroupA string                    `json:"group_a" yaml:"group_a"`
	GroupB string                    `json:"group_b" yaml:"group_b"`
	Result *models.DuplicationResult `json:"result" yaml:"result"`
}

// Theme defines the color scheme for console output
type Theme struct {
	Title    lipgloss.Style
	Score    lipgloss.Style
	Critical lipgloss.Style
	Serious  lipgloss.Style
	Moderate lipgloss.Style
	Clean    lipgloss.Style
	Dim      lipgloss.Style
}

var DefaultTheme = Theme{
	Title:    lipgloss.NewStyle().Bold(true),
	Score:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
	Critical: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
	Serious:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208")),
	Moderate: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("221")),
	Clean:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82")),
	Dim:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

var theme = DefaultTheme

// previewLength caps block excerpts in text output.
const previewLength = 120

func writeReport(w io.Writer, format string, report Report) error {
	switch strings.ToLower(format) {
	case "", "text":
		writeText(w, report)
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeText(w io.Writer, report Report) {
	r := report.Result

	fmt.Fprintf(w, "%s %s vs %s\n", theme.Title.Render("Comparison:"), report.GroupA, report.GroupB)
	fmt.Fprintf(w, "Overall similarity: %s\n", theme.Score.Render(fmt.Sprintf("%.2f%%", r.OverallSimilarity)))
	fmt.Fprintf(w, "Verdict: %s\n", categoryStyle(r.Verdict.Category).Render(strings.ToUpper(string(r.Verdict.Category))))
	fmt.Fprintf(w, "%s\n", theme.Dim.Render(fmt.Sprintf("%d x %d blocks compared", r.BlocksA, r.BlocksB)))

	if len(r.IdenticalBlocks) > 0 {
		fmt.Fprintf(w, "\n%s\n", theme.Title.Render(fmt.Sprintf("Identical blocks (%d)", len(r.IdenticalBlocks))))
		for _, text := range r.IdenticalBlocks {
			fmt.Fprintf(w, "  - %s\n", preview(text))
		}
	}

	if len(r.SuspiciousPairs) > 0 {
		fmt.Fprintf(w, "\n%s\n", theme.Title.Render(fmt.Sprintf("Suspicious pairs (%d)", len(r.SuspiciousPairs))))
		for _, pair := range r.SuspiciousPairs {
			fmt.Fprintf(w, "  %s A#%d ~ B#%d\n", theme.Score.Render(fmt.Sprintf("%.1f", pair.Score)),
				pair.BlockA.Index, pair.BlockB.Index)
			fmt.Fprintf(w, "    %s\n", theme.Dim.Render(preview(pair.BlockA.Text)))
		}
	}

	fmt.Fprintf(w, "\n%s\n", r.Verdict.Explanation)
}

func categoryStyle(category models.Category) lipgloss.Style {
	switch category {
	case models.CategoryCritical:
		return theme.Critical
	case models.CategorySerious:
		return theme.Serious
	case models.CategoryModerate:
		return theme.Moderate
	default:
		return theme.Clean
	}
}

// preview flattens whitespace and shortens text to previewLength runes.
func preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= previewLength {
		return text
	}
	return string(runes[:previewLength]) + "..."
}
