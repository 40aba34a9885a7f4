package plagiarism

import (
	"fmt"
	"math"
	"strings"

	"github.com/braindler/braindler-multimodal/internal/models"
)

var categoryProse = map[models.Category]string{
	models.CategoryCritical: "CRITICAL: massive copy-paste detected. The texts are near-verbatim " +
		"duplicates, a strong signal that no independent verification took place " +
		"and the case needs heightened oversight.",
	models.CategorySerious: "SERIOUS: a high level of overlap points to a formal, rubber-stamp " +
		"approach. The documents need careful review for missing independent analysis.",
	models.CategoryModerate: "MODERATE: overlaps were found that standard legal wording may " +
		"explain, but they warrant attention.",
	models.CategoryIndependent: "INDEPENDENT: the documents differ substantially, which indicates " +
		"independent work by both parties.",
}

// VerdictGenerator maps the aggregate similarity and findings of a
// comparison onto a risk category with an explanation.
type VerdictGenerator struct {
	thresholds VerdictThresholds
}

func NewVerdictGenerator(opts Options) *VerdictGenerator {
	return &VerdictGenerator{thresholds: opts.Verdict}
}

// Category returns the risk category for an overall similarity in [0, 100].
// NaN maps to independent.
func (g *VerdictGenerator) Category(similarity float64) models.Category {
	t := g.thresholds
	switch {
	case math.IsNaN(similarity):
		return models.CategoryIndependent
	case similarity >= t.Critical:
		return models.CategoryCritical
	case similarity >= t.Serious:
		return models.CategorySerious
	case similarity >= t.Moderate:
		return models.CategoryModerate
	default:
		return models.CategoryIndependent
	}
}

// Verdict returns the category and its explanation: the category prose,
// then the identical and suspicious block counts (when non-zero), then the
// findings as a bulleted list.
func (g *VerdictGenerator) Verdict(similarity float64, identical, suspicious int, findings []string) models.Verdict {
	category := g.Category(similarity)

	var sb strings.Builder
	sb.WriteString(categoryProse[category])

	if identical > 0 {
		fmt.Fprintf(&sb, "\n\nFound %d fully identical blocks.", identical)
	}
	if suspicious > 0 {
		fmt.Fprintf(&sb, "\nFound %d suspiciously similar blocks.", suspicious)
	}
	if len(findings) > 0 {
		sb.WriteString("\n\nSuspicious patterns:")
		for _, f := range findings {
			sb.WriteString("\n• ")
			sb.WriteString(f)
		}
	}

	return models.Verdict{Category: category, Explanation: sb.String()}
}
