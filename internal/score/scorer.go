package score

import "math"

// Risk level labels derived from the overall health score
const (
	LevelExcellent = "Excellent Health"
	LevelGoodFair  = "Good/Fair Health"
	LevelPoor      = "Poor Health - Needs Attention"
	LevelCritical  = "Critical - Consult Doctor Immediately"
)

// Grade derives a letter grade from an overall score (0-100)
func Grade(overall float64) string {
	switch {
	case overall >= 80:
		return "A"
	case overall >= 70:
		return "B"
	case overall >= 60:
		return "C"
	case overall >= 40:
		return "D"
	default:
		return "F"
	}
}

// RiskLevel derives the overall risk label from an overall score (0-100)
func RiskLevel(overall float64) string {
	switch {
	case overall >= 80:
		return LevelExcellent
	case overall >= 60:
		return LevelGoodFair
	case overall >= 40:
		return LevelPoor
	default:
		return LevelCritical
	}
}

// CompositeRisk derives the composite risk as the inverse of the overall score.
// Formula: clamp(100 - overall, 0, 100), rounded to 2 decimals
func CompositeRisk(overall float64) float64 {
	return Round2(Clamp(100-overall, 0, 100))
}

// ConditionLevel classifies a single condition's risk percentage.
// Thresholds: <30 low, <50 moderate, <70 high, <85 very high, else critical
func ConditionLevel(risk float64) string {
	switch {
	case risk < 30:
		return "low"
	case risk < 50:
		return "moderate"
	case risk < 70:
		return "high"
	case risk < 85:
		return "very high"
	default:
		return "critical"
	}
}

// Clamp limits v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Round2 rounds to two decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
