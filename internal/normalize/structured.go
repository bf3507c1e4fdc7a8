package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/ppiankov/vitalscan/internal/model"
	"github.com/ppiankov/vitalscan/internal/score"
)

// riskSourceKeys are checked in order for a nested mapping of risks;
// when none is present the report itself is the source
var riskSourceKeys = []string{"individual_risks", "risks"}

// riskAliases lists candidate keys per condition, first match wins
var riskAliases = map[model.Condition][]string{
	model.ConditionHeart:        {"heart_disease", "heart", "Heart Disease", "heart_risk"},
	model.ConditionDiabetes:     {"diabetes", "Diabetes", "diabetes_risk"},
	model.ConditionHypertension: {"hypertension", "Hypertension", "hypertension_risk", "blood_pressure"},
	model.ConditionObesity:      {"obesity", "Obesity", "obesity_risk"},
}

// overallAliases lists candidate keys for the overall score.
// overallScore lets a canonical report round-trip unchanged.
var overallAliases = []string{"overall_score", "health_score", "overallScore"}

// parseStructured extracts a canonical report from a mapping. It returns the
// fields that fell back to constants and whether any non-zero number was found.
func (n *Normalizer) parseStructured(m model.StructuredReport) (model.CanonicalReport, []string, bool) {
	report := model.CanonicalReport{
		Recommendations: []model.Recommendation{},
	}

	var defaulted []string
	found := false

	source := riskSource(m)
	for _, c := range model.Conditions {
		v, ok := lookupNumber(source, riskAliases[c])
		if !ok {
			v = n.fallback(c)
			defaulted = append(defaulted, "risks."+string(c))
		} else if v != 0 {
			found = true
		}
		report.Risks.Set(c, n.finishRisk(v))
	}

	overall, ok := lookupNumber(m, overallAliases)
	if !ok {
		overall = n.opts.Fallbacks.OverallScore
		defaulted = append(defaulted, "overallScore")
	} else if overall != 0 {
		found = true
	}

	// Derived fields are always recomputed, even when the input has its own
	report.OverallScore = score.Clamp(overall, 0, 100)
	report.Grade = score.Grade(report.OverallScore)
	report.RiskLevel = score.RiskLevel(report.OverallScore)
	report.CompositeRisk = score.CompositeRisk(report.OverallScore)

	return report, defaulted, found
}

func riskSource(m model.StructuredReport) map[string]any {
	for _, key := range riskSourceKeys {
		if nested, ok := asMapping(m[key]); ok {
			return nested
		}
	}
	return m
}

// lookupNumber returns the first alias whose value coerces to a finite number
func lookupNumber(m map[string]any, aliases []string) (float64, bool) {
	for _, key := range aliases {
		raw, present := m[key]
		if !present {
			continue
		}
		if v, ok := coerceNumber(raw); ok {
			return v, true
		}
	}
	return 0, false
}

// coerceNumber converts numbers, numeric strings (with an optional trailing
// "%"), and {score: ...} mappings to a float
func coerceNumber(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case int32:
		f = float64(t)
	case uint64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(t)
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		nested, ok := asMapping(v)
		if !ok {
			return 0, false
		}
		inner, present := nested["score"]
		if !present {
			return 0, false
		}
		if _, isMap := asMapping(inner); isMap {
			return 0, false
		}
		return coerceNumber(inner)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// asMapping accepts the mapping types produced by encoding/json and yaml.v3
func asMapping(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case model.StructuredReport:
		return t, true
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if ks, ok := k.(string); ok {
				out[ks] = val
			}
		}
		return out, true
	default:
		return nil, false
	}
}
