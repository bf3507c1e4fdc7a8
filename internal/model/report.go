package model

import "time"

// CanonicalReport is the single normalized shape the results page renders.
// Every numeric field is always present and finite.
type CanonicalReport struct {
	OverallScore    float64          `json:"overallScore"`  // 0-100, clamped
	Grade           string           `json:"grade"`         // Letter grade, e.g. "B" or "A+"
	CompositeRisk   float64          `json:"compositeRisk"` // 0-100, clamped
	RiskLevel       string           `json:"riskLevel"`     // Human-readable label
	Risks           Risks            `json:"risks"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Risks holds the per-condition risk percentages
type Risks struct {
	Heart        float64 `json:"heart"`
	Diabetes     float64 `json:"diabetes"`
	Hypertension float64 `json:"hypertension"`
	Obesity      float64 `json:"obesity"`
}

// Get returns the risk for a condition (0 for an unknown condition)
func (r Risks) Get(c Condition) float64 {
	switch c {
	case ConditionHeart:
		return r.Heart
	case ConditionDiabetes:
		return r.Diabetes
	case ConditionHypertension:
		return r.Hypertension
	case ConditionObesity:
		return r.Obesity
	default:
		return 0
	}
}

// Set stores the risk for a condition
func (r *Risks) Set(c Condition, v float64) {
	switch c {
	case ConditionHeart:
		r.Heart = v
	case ConditionDiabetes:
		r.Diabetes = v
	case ConditionHypertension:
		r.Hypertension = v
	case ConditionObesity:
		r.Obesity = v
	}
}

// Recommendation is one card on the results page
type Recommendation struct {
	Type    Condition `json:"type"`
	Icon    string    `json:"icon"`
	Color   string    `json:"color"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Points  []string  `json:"points"`
}

// Condition identifies one of the four tracked health risks
type Condition string

const (
	ConditionHeart        Condition = "heart"
	ConditionDiabetes     Condition = "diabetes"
	ConditionHypertension Condition = "hypertension"
	ConditionObesity      Condition = "obesity"
)

// Conditions lists the tracked conditions in display order
var Conditions = []Condition{
	ConditionHeart,
	ConditionDiabetes,
	ConditionHypertension,
	ConditionObesity,
}

// Label returns the display label used in report text
func (c Condition) Label() string {
	switch c {
	case ConditionHeart:
		return "Heart Disease"
	case ConditionDiabetes:
		return "Diabetes"
	case ConditionHypertension:
		return "Hypertension"
	case ConditionObesity:
		return "Obesity"
	default:
		return string(c)
	}
}

// Document wraps one normalization with its provenance and diagnostics
type Document struct {
	Source       string          `json:"source"`              // File, URL, or "upstream"
	NormalizedAt time.Time       `json:"normalized_at"`       // When normalization ran
	Path         string          `json:"path"`                // text, structured, embedded_text, default
	Defaulted    []string        `json:"defaulted,omitempty"` // Fields that fell back to constants
	Report       CanonicalReport `json:"report"`
	Signals      []Signal        `json:"signals"`
	LLM          *LLMSummary     `json:"llm,omitempty"` // Optional narrative, never alters numbers
}

// Signal represents a diagnostic about how a report was normalized
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalFallbackUsed      SignalType = "fallback_used"       // Field set from a fallback constant
	SignalRiskOutOfRange    SignalType = "risk_out_of_range"   // Risk outside 0-100
	SignalNoSignal          SignalType = "no_signal"           // Nothing usable in the input
	SignalTextMissingMarker SignalType = "text_missing_marker" // Risk line absent from a text report
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// LLMSummary contains an optional plain-language narrative of the report
type LLMSummary struct {
	Enabled       bool     `json:"enabled"`
	Provider      string   `json:"provider,omitempty"`
	Model         string   `json:"model,omitempty"`
	StrictNumbers bool     `json:"strict_numbers"` // Whether number enforcement was enabled
	SummaryMD     string   `json:"summary_md,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
}
