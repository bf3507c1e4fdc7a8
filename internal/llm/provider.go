package llm

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/vitalscan/internal/model"
	"github.com/ppiankov/vitalscan/internal/score"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize generates a plain-language narrative of the report
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest contains the input for LLM summarization
type SummarizeRequest struct {
	// Report is the normalized report to narrate
	Report model.CanonicalReport

	// AllowedNumbers are the only figures the narrative may quote
	AllowedNumbers []string

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// SummarizeResponse contains the LLM's narrative
type SummarizeResponse struct {
	Summary      string
	CitedNumbers []string // Figures the narrative quoted (all verified when strict)
	Model        string
	TokensUsed   int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	Model   string
	APIKey  string
	BaseURL string

	// Timeout for API requests in seconds
	Timeout int

	// StrictNumbers rejects narratives quoting figures absent from the report
	StrictNumbers bool

	MaxTokens int

	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns the disabled configuration
func DefaultConfig() Config {
	return Config{
		Timeout:       30,
		StrictNumbers: true,
		MaxTokens:     600,
	}
}

const systemPrompt = "You explain health screening results in plain language. You never diagnose and never invent figures."

// BuildPrompt constructs the default narrative prompt
func BuildPrompt(report model.CanonicalReport, allowed []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, `Explain this health screening summary to the person who took it.

RULES:
1. You may ONLY quote these figures: %s
2. Do not compute new numbers, ranges, or percentages.
3. Do not diagnose. Recommend consulting a doctor for anything rated high or worse.
4. Keep it to one short paragraph followed by at most four bullet points.

Summary:
- Overall health score: %.1f/100 (grade %s)
- Composite risk: %.1f%% (%s)
`, strings.Join(allowed, ", "), report.OverallScore, report.Grade, report.CompositeRisk, report.RiskLevel)

	for _, c := range model.Conditions {
		risk := report.Risks.Get(c)
		fmt.Fprintf(&b, "- %s risk: %.1f%% (%s)\n", c.Label(), risk, score.ConditionLevel(risk))
	}

	if len(report.Recommendations) > 0 {
		b.WriteString("\nRecommendation areas:\n")
		for _, rec := range report.Recommendations {
			fmt.Fprintf(&b, "- %s (%d points)\n", rec.Title, len(rec.Points))
		}
	}

	return b.String()
}

// AllowedNumbers lists the report's figures in the one-decimal form used by
// the prompt
func AllowedNumbers(report model.CanonicalReport) []string {
	values := []float64{report.OverallScore, report.CompositeRisk}
	for _, c := range model.Conditions {
		values = append(values, report.Risks.Get(c))
	}

	seen := make(map[string]bool)
	var out []string
	for _, v := range values {
		s := strconv.FormatFloat(v, 'f', 1, 64)
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// figurePattern matches quoted scores and percentages ("42%", "72.5/100")
var figurePattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:%|/\s*100)`)

// extractFigures returns the scores and percentages quoted in text
func extractFigures(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range figurePattern.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}

// verifyFigures checks every quoted figure against the allowlist,
// comparing numerically at one decimal
func verifyFigures(cited, allowed []string) error {
	ok := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		if v, err := strconv.ParseFloat(a, 64); err == nil {
			ok[strconv.FormatFloat(v, 'f', 1, 64)] = true
		}
	}
	for _, c := range cited {
		v, err := strconv.ParseFloat(c, 64)
		if err != nil || !ok[strconv.FormatFloat(v, 'f', 1, 64)] {
			return fmt.Errorf("NUMBER LEAK: narrative quoted a figure not in the report: %s", c)
		}
	}
	return nil
}
