package llm

import "github.com/ppiankov/vitalscan/internal/model"

func sampleReport() model.CanonicalReport {
	return model.CanonicalReport{
		OverallScore:  49.8,
		Grade:         "F",
		CompositeRisk: 50.2,
		RiskLevel:     "Poor Health - Needs Attention",
		Risks: model.Risks{
			Heart:        65.5,
			Diabetes:     42.0,
			Hypertension: 58.3,
			Obesity:      35.0,
		},
		Recommendations: []model.Recommendation{
			{Type: model.ConditionHeart, Title: "Heart Health", Points: []string{"Walk daily", "Cut salt"}},
		},
	}
}
