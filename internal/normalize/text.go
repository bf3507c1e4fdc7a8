package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/vitalscan/internal/model"
	"github.com/ppiankov/vitalscan/internal/score"
	"golang.org/x/text/unicode/norm"
)

const number = `(-?\d+(?:\.\d+)?)`

var (
	overallPattern   = regexp.MustCompile(`OVERALL HEALTH SCORE:\s*` + number + `\s*/\s*100\s*\(Grade:\s*([A-F][+-]?)\s*\)`)
	compositePattern = regexp.MustCompile(`COMPOSITE RISK LEVEL:\s*` + number + `\s*%\s*\(([^)]*)\)`)

	// One fixed emoji per condition
	riskPatterns = map[model.Condition]*regexp.Regexp{
		model.ConditionHeart:        regexp.MustCompile(`🫀\s*Heart Disease Risk:\s*` + number + `\s*%`),
		model.ConditionDiabetes:     regexp.MustCompile(`🩸\s*Diabetes Risk:\s*` + number + `\s*%`),
		model.ConditionHypertension: regexp.MustCompile(`💊\s*Hypertension Risk:\s*` + number + `\s*%`),
		model.ConditionObesity:      regexp.MustCompile(`⚖\x{FE0F}?\s*Obesity Risk:\s*` + number + `\s*%`),
	}
)

// parseText extracts a canonical report from a formatted text report. Markers
// that are not found leave zero values; the names of missing risk lines are
// returned.
func (n *Normalizer) parseText(text string) (model.CanonicalReport, []string) {
	text = norm.NFC.String(text)

	report := model.CanonicalReport{
		Grade:           "F",
		Recommendations: []model.Recommendation{},
	}

	if m := overallPattern.FindStringSubmatch(text); m != nil {
		report.OverallScore = score.Clamp(parseNumber(m[1]), 0, 100)
		report.Grade = m[2]
	}

	if m := compositePattern.FindStringSubmatch(text); m != nil {
		report.CompositeRisk = score.Clamp(parseNumber(m[1]), 0, 100)
		report.RiskLevel = strings.TrimSpace(m[2])
	} else {
		report.CompositeRisk = score.CompositeRisk(report.OverallScore)
		report.RiskLevel = score.RiskLevel(report.OverallScore)
	}

	var missing []string
	for _, c := range model.Conditions {
		m := riskPatterns[c].FindStringSubmatch(text)
		if m == nil {
			missing = append(missing, string(c))
			continue
		}
		report.Risks.Set(c, n.finishRisk(parseNumber(m[1])))
	}

	report.Recommendations = extractRecommendations(text)

	return report, missing
}

// parseNumber parses a number already matched by the number pattern
func parseNumber(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
