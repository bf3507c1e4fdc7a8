// Package normalize turns a raw health report, either formatted text or a
// loosely structured mapping, into the canonical report the results page renders.
//
// Normalization never fails: malformed or empty input yields a best-effort
// report built from fallback values.
package normalize

import (
	"strings"

	"github.com/ppiankov/vitalscan/internal/model"
	"github.com/ppiankov/vitalscan/internal/score"
)

// Fallback values used when a structured report omits a field
const (
	FallbackHeart        = 88.0
	FallbackDiabetes     = 37.0
	FallbackHypertension = 34.0
	FallbackObesity      = 22.4
	FallbackOverallScore = 48.1
)

// Path identifies which parse path produced a report
type Path string

const (
	PathText         Path = "text"
	PathStructured   Path = "structured"
	PathEmbeddedText Path = "embedded_text" // Structured input carrying only a formatted string
	PathDefault      Path = "default"       // No usable input at all
)

// Provenance records how a report was produced
type Provenance struct {
	Path      Path
	Defaulted []string // Fields set from fallback constants
	Missing   []string // Text-path markers that were not found
}

// Options tunes normalization
type Options struct {
	Fallbacks  model.FallbackConfig
	ClampRisks bool // Clamp per-condition risks to 0-100 in both paths
}

// DefaultOptions returns the built-in fallbacks with risks left unclamped
func DefaultOptions() Options {
	return Options{
		Fallbacks: model.FallbackConfig{
			Heart:        FallbackHeart,
			Diabetes:     FallbackDiabetes,
			Hypertension: FallbackHypertension,
			Obesity:      FallbackObesity,
			OverallScore: FallbackOverallScore,
		},
	}
}

// OptionsFromConfig converts the normalize config section
func OptionsFromConfig(cfg model.NormalizeConfig) Options {
	return Options{
		Fallbacks:  cfg.Fallbacks,
		ClampRisks: cfg.ClampRisks,
	}
}

// Normalizer normalizes raw reports. It holds no mutable state and is safe for
// concurrent use.
type Normalizer struct {
	opts Options
}

// NewNormalizer creates a new normalizer
func NewNormalizer(opts Options) *Normalizer {
	return &Normalizer{opts: opts}
}

var defaultNormalizer = NewNormalizer(DefaultOptions())

// Normalize normalizes raw using the built-in fallbacks
func Normalize(raw model.RawReport) model.CanonicalReport {
	return defaultNormalizer.Normalize(raw)
}

// Normalize normalizes raw into a canonical report
func (n *Normalizer) Normalize(raw model.RawReport) model.CanonicalReport {
	report, _ := n.NormalizeDetailed(raw)
	return report
}

// NormalizeDetailed normalizes raw and reports which path produced the result
func (n *Normalizer) NormalizeDetailed(raw model.RawReport) (model.CanonicalReport, Provenance) {
	switch r := raw.(type) {
	case model.TextReport:
		if strings.TrimSpace(string(r)) == "" {
			return n.Default()
		}
		report, missing := n.parseText(string(r))
		return report, Provenance{Path: PathText, Missing: missing}

	case model.StructuredReport:
		if len(r) == 0 {
			return n.Default()
		}
		report, defaulted, found := n.parseStructured(r)
		if !found {
			if text, ok := embeddedText(r); ok {
				report, missing := n.parseText(text)
				return report, Provenance{Path: PathEmbeddedText, Missing: missing}
			}
		}
		return report, Provenance{Path: PathStructured, Defaulted: defaulted}

	default:
		return n.Default()
	}
}

// Default returns the full fallback report
func (n *Normalizer) Default() (model.CanonicalReport, Provenance) {
	report, defaulted, _ := n.parseStructured(model.StructuredReport{})
	return report, Provenance{Path: PathDefault, Defaulted: defaulted}
}

// embeddedTextKeys are checked in order for a formatted report inside a mapping
var embeddedTextKeys = []string{"formatted_report", "report_text"}

// embeddedText finds a formatted report at the top level or one level down
// under "report", as the assessment API envelope nests it
func embeddedText(m map[string]any) (string, bool) {
	for _, key := range embeddedTextKeys {
		if s, ok := m[key].(string); ok && strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	if nested, ok := asMapping(m["report"]); ok {
		return embeddedText(nested)
	}
	return "", false
}

// finishRisk applies the clamp option to a per-condition risk
func (n *Normalizer) finishRisk(v float64) float64 {
	if n.opts.ClampRisks {
		return score.Clamp(v, 0, 100)
	}
	return v
}

func (n *Normalizer) fallback(c model.Condition) float64 {
	fb := n.opts.Fallbacks
	switch c {
	case model.ConditionHeart:
		return fb.Heart
	case model.ConditionDiabetes:
		return fb.Diabetes
	case model.ConditionHypertension:
		return fb.Hypertension
	case model.ConditionObesity:
		return fb.Obesity
	default:
		return 0
	}
}
