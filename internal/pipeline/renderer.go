package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/vitalscan/internal/model"
	"github.com/ppiankov/vitalscan/internal/score"
)

// Renderer writes normalized documents as JSON, Markdown, or a console summary
type Renderer struct {
	includeFooter bool
	out           io.Writer
}

// NewRenderer creates a renderer writing summaries to stdout
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter, out: os.Stdout}
}

// WithOutput redirects console summaries
func (r *Renderer) WithOutput(w io.Writer) *Renderer {
	r.out = w
	return r
}

// MarshalJSON encodes a document as indented JSON
func (r *Renderer) MarshalJSON(doc *model.Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return append(data, '\n'), nil
}

// RenderJSON writes the document as JSON to path
func (r *Renderer) RenderJSON(doc *model.Document, path string) error {
	data, err := r.MarshalJSON(doc)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// RenderMarkdown writes the document as Markdown to path
func (r *Renderer) RenderMarkdown(doc *model.Document, path string) error {
	return writeFile(path, []byte(r.Markdown(doc)))
}

// RenderLLMMarkdown writes a separately rendered narrative to path
func (r *Renderer) RenderLLMMarkdown(markdown string, path string) error {
	return writeFile(path, []byte(markdown))
}

// Markdown renders the document as a Markdown report
func (r *Renderer) Markdown(doc *model.Document) string {
	var b strings.Builder
	rep := doc.Report

	b.WriteString("# Health Report\n\n")
	fmt.Fprintf(&b, "- **Source:** %s\n", doc.Source)
	fmt.Fprintf(&b, "- **Normalized:** %s\n", doc.NormalizedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "- **Parse path:** %s\n\n", doc.Path)

	b.WriteString("## Overall\n\n")
	fmt.Fprintf(&b, "| Overall score | Grade | Composite risk | Risk level |\n")
	fmt.Fprintf(&b, "|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %.1f/100 | %s | %.1f%% | %s |\n\n", rep.OverallScore, rep.Grade, rep.CompositeRisk, rep.RiskLevel)

	b.WriteString("## Condition Risks\n\n")
	b.WriteString("| Condition | Risk | Level |\n")
	b.WriteString("|---|---|---|\n")
	for _, c := range model.Conditions {
		risk := rep.Risks.Get(c)
		fmt.Fprintf(&b, "| %s | %.1f%% | %s |\n", c.Label(), risk, score.ConditionLevel(risk))
	}
	b.WriteString("\n")

	if len(rep.Recommendations) > 0 {
		b.WriteString("## Recommendations\n\n")
		for _, rec := range rep.Recommendations {
			fmt.Fprintf(&b, "### %s\n\n", rec.Title)
			if rec.Content != "" {
				fmt.Fprintf(&b, "%s\n\n", rec.Content)
			}
			for _, p := range rec.Points {
				fmt.Fprintf(&b, "- %s\n", p)
			}
			b.WriteString("\n")
		}
	}

	if len(doc.Signals) > 0 {
		b.WriteString("## Signals\n\n")
		for _, s := range doc.Signals {
			fmt.Fprintf(&b, "- **%s** (%s): %s\n", s.Type, s.Severity, s.Description)
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("---\n\n")
		b.WriteString("*Generated by vitalscan. Risk figures are model estimates, not a diagnosis. Consult a healthcare professional.*\n")
	}

	return b.String()
}

// RenderSummary prints a short console summary of the document
func (r *Renderer) RenderSummary(doc *model.Document) {
	rep := doc.Report

	fmt.Fprintf(r.out, "\nSource:           %s\n", doc.Source)
	fmt.Fprintf(r.out, "Overall score:    %.1f/100 (Grade: %s)\n", rep.OverallScore, rep.Grade)
	fmt.Fprintf(r.out, "Composite risk:   %.1f%% (%s)\n", rep.CompositeRisk, rep.RiskLevel)
	for _, c := range model.Conditions {
		risk := rep.Risks.Get(c)
		fmt.Fprintf(r.out, "  %-14s  %5.1f%%  [%s]\n", c.Label(), risk, strings.ToUpper(score.ConditionLevel(risk)))
	}
	fmt.Fprintf(r.out, "Recommendations:  %d\n", len(rep.Recommendations))

	for _, s := range doc.Signals {
		fmt.Fprintf(r.out, "  ! %s: %s\n", s.Type, s.Description)
	}
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
