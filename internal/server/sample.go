package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ppiankov/vitalscan/internal/model"
	"github.com/ppiankov/vitalscan/internal/pipeline"
	"go.uber.org/zap"
)

// SampleResponse is returned by GET /api/sample-assessment
type SampleResponse struct {
	Success    bool                   `json:"success"`
	Report     *model.CanonicalReport `json:"report,omitempty"`
	SampleData map[string]any         `json:"sample_data,omitempty"`
	Error      string                 `json:"error,omitempty"`
}

// SampleForm returns the demonstration questionnaire for a fictional
// 52-year-old patient with elevated markers across all four conditions.
func SampleForm() map[string]any {
	return map[string]any{
		"age":                             52,
		"gender":                          "Male",
		"height":                          178,
		"weight":                          92,
		"systolic_bp":                     142,
		"diastolic_bp":                    92,
		"glucose":                         126,
		"cholesterol":                     245,
		"ldl":                             155,
		"hdl":                             42,
		"triglycerides":                   195,
		"resting_heart_rate":              78,
		"max_heart_rate":                  145,
		"smoking_status":                  "Former",
		"alcohol_intake":                  "Moderate",
		"physical_activity":               "Low",
		"sleep_hours":                     5.5,
		"stress_level":                    "High",
		"salt_intake":                     "High",
		"vegetable_consumption_frequency": 1,
		"num_main_meals":                  2,
		"daily_water_consumption":         1.5,
		"frequent_high_caloric_food":      "yes",
		"food_between_meals":              "Frequently",
		"calorie_monitoring":              "no",
		"family_history_diabetes":         "yes",
		"family_history_hypertension":     "Yes",
		"family_history_overweight":       "yes",
		"has_diabetes":                    "No",
		"pregnancies":                     0,
		"insulin":                         95,
		"chest_pain_type":                 1,
		"exercise_induced_angina":         "yes",
		"physical_activity_frequency":     1,
		"tech_usage_time":                 4,
		"transportation_mode":             "Automobile",
		"smokes":                          "no",
		"skin_thickness":                  25,
		"st_depression":                   1.2,
		"slope_st_segment":                2,
		"num_major_vessels":               1,
		"thalassemia":                     3,
		"resting_ecg":                     1,
	}
}

// handleSampleAssessment runs the sample questionnaire through the scoring
// service. Nothing is stored in the session.
func (s *Server) handleSampleAssessment(w http.ResponseWriter, r *http.Request) {
	form := SampleForm()

	doc, err := s.assessor.Assess(r.Context(), form)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, pipeline.ErrUpstreamFailed) {
			status = http.StatusBadGateway
		}
		s.logger.Warn("sample assessment failed", zap.Error(err))
		s.respondJSON(w, status, SampleResponse{Error: fmt.Sprintf("Sample assessment failed: %v", err)})
		return
	}

	s.respondJSON(w, http.StatusOK, SampleResponse{
		Success:    true,
		Report:     &doc.Report,
		SampleData: form,
	})
}
