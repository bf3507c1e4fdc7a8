package normalize

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ppiankov/vitalscan/internal/model"
	"github.com/ppiankov/vitalscan/internal/score"
)

func TestNormalize_TextReport_Scores(t *testing.T) {
	report, prov := NewNormalizer(DefaultOptions()).NormalizeDetailed(model.TextReport(fullTextReport))

	if prov.Path != PathText {
		t.Errorf("Expected text path, got %s", prov.Path)
	}
	if report.OverallScore != 49.8 {
		t.Errorf("Expected overall score 49.8, got %v", report.OverallScore)
	}
	if report.Grade != "F" {
		t.Errorf("Expected grade F, got %q", report.Grade)
	}
	if report.CompositeRisk != 50.2 {
		t.Errorf("Expected composite risk 50.2, got %v", report.CompositeRisk)
	}
	if report.RiskLevel != "HIGH" {
		t.Errorf("Expected risk level HIGH, got %q", report.RiskLevel)
	}

	want := model.Risks{Heart: 65.5, Diabetes: 42.0, Hypertension: 58.3, Obesity: 35.0}
	if diff := cmp.Diff(want, report.Risks); diff != "" {
		t.Errorf("Risks mismatch (-want +got):\n%s", diff)
	}
	if len(prov.Missing) != 0 {
		t.Errorf("Expected no missing markers, got %v", prov.Missing)
	}
}

func TestNormalize_TextReport_Recommendations(t *testing.T) {
	report := Normalize(model.TextReport(fullTextReport))

	want := []model.Recommendation{
		{
			Type:    model.ConditionHeart,
			Icon:    "fas fa-heartbeat",
			Color:   "#e74c3c",
			Title:   "Heart Health",
			Content: "65.5% risk - High. Consult a cardiologist soon.",
			Points: []string{
				"Monitor blood pressure and cholesterol regularly",
				"Engage in 30+ minutes of cardio exercise daily",
				"Reduce saturated fat and sodium intake",
			},
		},
		{
			Type:    model.ConditionDiabetes,
			Icon:    "fas fa-tint",
			Color:   "#9b59b6",
			Title:   "Diabetes Prevention",
			Content: "42.0% risk - Moderate. Focus on prevention.",
			Points: []string{
				"Maintain healthy weight through diet and exercise",
				"Limit sugary beverages and processed foods",
			},
		},
		{
			Type:    model.ConditionHypertension,
			Icon:    "fas fa-stethoscope",
			Color:   "#3498db",
			Title:   "Blood Pressure",
			Content: "58.3% risk - High. Monitor BP regularly.",
			Points: []string{
				"Reduce sodium intake (< 2000mg/day)",
				"Practice stress management techniques",
				"Avoid excessive alcohol and caffeine",
			},
		},
		{
			Type:    model.ConditionObesity,
			Icon:    "fas fa-weight",
			Color:   "#f39c12",
			Title:   "Weight Management",
			Content: "35.0% risk - Moderate. Room for improvement.",
			Points: []string{
				"Maintain calorie balance and portion control",
				"Increase daily physical activity",
			},
		},
	}

	if diff := cmp.Diff(want, report.Recommendations); diff != "" {
		t.Errorf("Recommendations mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_TextReport_RecommendationOrderIsFixed(t *testing.T) {
	report := Normalize(model.TextReport(shuffledRecommendations))

	if len(report.Recommendations) != 4 {
		t.Fatalf("Expected 4 recommendations, got %d", len(report.Recommendations))
	}

	wantOrder := []model.Condition{
		model.ConditionHeart,
		model.ConditionDiabetes,
		model.ConditionHypertension,
		model.ConditionObesity,
	}
	for i, rec := range report.Recommendations {
		if rec.Type != wantOrder[i] {
			t.Errorf("Recommendation %d: expected %s, got %s", i, wantOrder[i], rec.Type)
		}
		if rec.Content == "" {
			t.Errorf("Recommendation %d has empty content", i)
		}
		if len(rec.Points) != 1 {
			t.Errorf("Recommendation %d: expected 1 point, got %v", i, rec.Points)
		}
	}

	if got := report.Recommendations[0].Content; got != "12.0% risk - Low. Keep up the good work!" {
		t.Errorf("Block after the separator should be ignored, got heart content %q", got)
	}
	if report.Grade != "A+" {
		t.Errorf("Expected grade modifier to be kept, got %q", report.Grade)
	}
}

func TestNormalize_TextReport_PartialMarkers(t *testing.T) {
	report, prov := NewNormalizer(DefaultOptions()).NormalizeDetailed(model.TextReport(partialTextReport))

	if report.Risks.Heart != 18.2 {
		t.Errorf("Expected heart 18.2, got %v", report.Risks.Heart)
	}
	// Unmatched conditions stay at zero in the text path
	if report.Risks.Diabetes != 0 || report.Risks.Obesity != 0 {
		t.Errorf("Expected unmatched risks to be 0, got diabetes=%v obesity=%v", report.Risks.Diabetes, report.Risks.Obesity)
	}
	// Text-path risks are not clamped by default
	if report.Risks.Hypertension != 104 {
		t.Errorf("Expected unclamped hypertension 104, got %v", report.Risks.Hypertension)
	}
	if diff := cmp.Diff([]string{"diabetes", "obesity"}, prov.Missing); diff != "" {
		t.Errorf("Missing markers mismatch (-want +got):\n%s", diff)
	}

	// No composite marker: derived from the overall score
	if report.CompositeRisk != 27.5 {
		t.Errorf("Expected derived composite 27.5, got %v", report.CompositeRisk)
	}
	if report.RiskLevel != score.LevelGoodFair {
		t.Errorf("Expected derived risk level %q, got %q", score.LevelGoodFair, report.RiskLevel)
	}
	if len(report.Recommendations) != 0 {
		t.Errorf("Expected no recommendations, got %d", len(report.Recommendations))
	}
}

func TestNormalize_TextReport_NoMarkers(t *testing.T) {
	report := Normalize(model.TextReport("the service is warming up, try again"))

	if report.OverallScore != 0 || report.Grade != "F" {
		t.Errorf("Expected defaults 0/F, got %v/%q", report.OverallScore, report.Grade)
	}
	if report.Risks != (model.Risks{}) {
		t.Errorf("Expected zero risks, got %+v", report.Risks)
	}
	if report.CompositeRisk != 100 {
		t.Errorf("Expected composite 100, got %v", report.CompositeRisk)
	}
}

func TestNormalize_ClampRisksOption(t *testing.T) {
	opts := DefaultOptions()
	opts.ClampRisks = true
	report := NewNormalizer(opts).Normalize(model.TextReport(partialTextReport))

	if report.Risks.Hypertension != 100 {
		t.Errorf("Expected clamped hypertension 100, got %v", report.Risks.Hypertension)
	}
}

func TestNormalize_Structured_AliasesAndFallbacks(t *testing.T) {
	raw := model.StructuredReport{
		"individual_risks": map[string]any{
			"heart_disease": "42%",
			"diabetes":      10,
		},
	}

	report, prov := NewNormalizer(DefaultOptions()).NormalizeDetailed(raw)

	want := model.Risks{
		Heart:        42,
		Diabetes:     10,
		Hypertension: FallbackHypertension,
		Obesity:      FallbackObesity,
	}
	if diff := cmp.Diff(want, report.Risks); diff != "" {
		t.Errorf("Risks mismatch (-want +got):\n%s", diff)
	}
	if report.OverallScore != FallbackOverallScore {
		t.Errorf("Expected overall fallback %v, got %v", FallbackOverallScore, report.OverallScore)
	}
	if prov.Path != PathStructured {
		t.Errorf("Expected structured path, got %s", prov.Path)
	}
	wantDefaulted := []string{"risks.hypertension", "risks.obesity", "overallScore"}
	if diff := cmp.Diff(wantDefaulted, prov.Defaulted); diff != "" {
		t.Errorf("Defaulted mismatch (-want +got):\n%s", diff)
	}
	if len(report.Recommendations) != 0 {
		t.Errorf("Structured path must not produce recommendations")
	}
}

func TestNormalize_Structured_DerivedFields(t *testing.T) {
	tests := []struct {
		name      string
		raw       model.StructuredReport
		grade     string
		level     string
		composite float64
	}{
		{
			name:      "excellent",
			raw:       model.StructuredReport{"overall_score": 85, "heart": 10},
			grade:     "A",
			level:     score.LevelExcellent,
			composite: 15,
		},
		{
			name:      "poor from health_score string",
			raw:       model.StructuredReport{"health_score": "55"},
			grade:     "D",
			level:     score.LevelPoor,
			composite: 45,
		},
		{
			name:      "input grade and level are ignored",
			raw:       model.StructuredReport{"overall_score": 55.0, "grade": "A+", "riskLevel": "Excellent Health"},
			grade:     "D",
			level:     score.LevelPoor,
			composite: 45,
		},
		{
			name:      "overall is clamped",
			raw:       model.StructuredReport{"overall_score": 140},
			grade:     "A",
			level:     score.LevelExcellent,
			composite: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Normalize(tt.raw)
			if report.Grade != tt.grade {
				t.Errorf("Expected grade %q, got %q", tt.grade, report.Grade)
			}
			if report.RiskLevel != tt.level {
				t.Errorf("Expected risk level %q, got %q", tt.level, report.RiskLevel)
			}
			if report.CompositeRisk != tt.composite {
				t.Errorf("Expected composite %v, got %v", tt.composite, report.CompositeRisk)
			}
		})
	}
}

func TestNormalize_Structured_SourcePriority(t *testing.T) {
	raw := model.StructuredReport{
		"individual_risks": map[string]any{"heart_disease": 11},
		"risks":            map[string]any{"heart": 22},
		"heart":            33,
	}
	if got := Normalize(raw).Risks.Heart; got != 11 {
		t.Errorf("Expected individual_risks to win, got %v", got)
	}

	delete(raw, "individual_risks")
	if got := Normalize(raw).Risks.Heart; got != 22 {
		t.Errorf("Expected risks to win, got %v", got)
	}

	delete(raw, "risks")
	if got := Normalize(raw).Risks.Heart; got != 33 {
		t.Errorf("Expected top level to be used, got %v", got)
	}
}

func TestNormalize_Structured_AliasOrder(t *testing.T) {
	raw := model.StructuredReport{
		"risks": map[string]any{
			"heart":         "not a number",
			"Heart Disease": 61.5,
			"heart_risk":    70,
		},
	}
	if got := Normalize(raw).Risks.Heart; got != 61.5 {
		t.Errorf("Expected first coercible alias to win, got %v", got)
	}
}

func TestNormalize_Structured_ScoreLevelShape(t *testing.T) {
	// Shape emitted by the upstream scorer
	raw := model.StructuredReport{
		"individual_risks": map[string]any{
			"heart_disease": map[string]any{"score": 65.5, "level": "high"},
			"diabetes":      map[string]any{"score": "42%", "level": "moderate"},
			"hypertension":  map[string]any{"score": 58.3, "level": "high"},
			"obesity":       map[string]any{"level": "moderate"},
		},
		"health_score": 49.8,
	}

	report := Normalize(raw)
	want := model.Risks{Heart: 65.5, Diabetes: 42, Hypertension: 58.3, Obesity: FallbackObesity}
	if diff := cmp.Diff(want, report.Risks); diff != "" {
		t.Errorf("Risks mismatch (-want +got):\n%s", diff)
	}
	if report.OverallScore != 49.8 {
		t.Errorf("Expected overall 49.8, got %v", report.OverallScore)
	}
}

func TestNormalize_EmbeddedTextFallback(t *testing.T) {
	direct := Normalize(model.TextReport(fullTextReport))

	for _, raw := range []model.StructuredReport{
		{"formatted_report": fullTextReport},
		{"report_text": fullTextReport, "individual_risks": map[string]any{"heart_disease": 0}},
		{"report": map[string]any{"formatted_report": fullTextReport}},
	} {
		report, prov := NewNormalizer(DefaultOptions()).NormalizeDetailed(raw)
		if prov.Path != PathEmbeddedText {
			t.Errorf("Expected embedded text path, got %s", prov.Path)
		}
		if diff := cmp.Diff(direct, report); diff != "" {
			t.Errorf("Embedded text result differs from direct text (-direct +embedded):\n%s", diff)
		}
	}
}

func TestNormalize_EmbeddedTextIgnoredWhenNumbersPresent(t *testing.T) {
	raw := model.StructuredReport{
		"formatted_report": fullTextReport,
		"overall_score":    77,
	}
	report, prov := NewNormalizer(DefaultOptions()).NormalizeDetailed(raw)
	if prov.Path != PathStructured {
		t.Errorf("Expected structured path, got %s", prov.Path)
	}
	if report.OverallScore != 77 {
		t.Errorf("Expected overall 77, got %v", report.OverallScore)
	}
}

func TestNormalize_MalformedInputReturnsDefault(t *testing.T) {
	n := NewNormalizer(DefaultOptions())
	want, _ := n.Default()

	inputs := map[string]model.RawReport{
		"nil":           nil,
		"empty string":  model.TextReport(""),
		"blank string":  model.TextReport("  \n\t "),
		"empty mapping": model.StructuredReport{},
		"wrong type":    model.RawFromValue(42),
	}

	for name, raw := range inputs {
		got, prov := n.NormalizeDetailed(raw)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s: mismatch (-want +got):\n%s", name, diff)
		}
		if prov.Path != PathDefault {
			t.Errorf("%s: expected default path, got %s", name, prov.Path)
		}
	}

	if want.OverallScore != FallbackOverallScore || want.Risks.Heart != FallbackHeart {
		t.Errorf("Default report should carry fallback constants, got %+v", want)
	}
	if want.Grade != "D" || want.CompositeRisk != 51.9 {
		t.Errorf("Expected default grade D and composite 51.9, got %q and %v", want.Grade, want.CompositeRisk)
	}
	if want.Recommendations == nil {
		t.Error("Recommendations must be an empty slice, not nil")
	}
}

func TestNormalize_CanonicalRoundTrip(t *testing.T) {
	first := Normalize(model.StructuredReport{
		"individual_risks": map[string]any{"heart_disease": 12.5, "diabetes": "7%", "hypertension": 30, "obesity": 41},
		"overall_score":    64.25,
	})

	data, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	second := Normalize(model.RawFromValue(decoded))
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Canonical input did not reproduce itself (-first +second):\n%s", diff)
	}
}

func TestNormalize_ConfiguredFallbacks(t *testing.T) {
	opts := Options{Fallbacks: model.FallbackConfig{Heart: 1, Diabetes: 2, Hypertension: 3, Obesity: 4, OverallScore: 90}}
	report := NewNormalizer(opts).Normalize(nil)

	if report.Risks != (model.Risks{Heart: 1, Diabetes: 2, Hypertension: 3, Obesity: 4}) {
		t.Errorf("Expected configured fallbacks, got %+v", report.Risks)
	}
	if report.Grade != "A" {
		t.Errorf("Expected grade A for fallback 90, got %q", report.Grade)
	}
}

func TestNormalize_ConcurrentCalls(t *testing.T) {
	var wg sync.WaitGroup
	results := make([]model.CanonicalReport, 16)

	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Normalize(model.TextReport(fullTextReport))
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(results); i++ {
		if diff := cmp.Diff(results[0], results[i]); diff != "" {
			t.Fatalf("Concurrent result %d differs:\n%s", i, diff)
		}
	}

	// Each call returns its own slices
	results[0].Recommendations[0].Points[0] = "mutated"
	if strings.Contains(results[1].Recommendations[0].Points[0], "mutated") {
		t.Error("Results share recommendation storage")
	}
}

func TestCoerceNumber(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{42.5, 42.5, true},
		{7, 7, true},
		{json.Number("3.25"), 3.25, true},
		{" 18.5 % ", 18.5, true},
		{"88", 88, true},
		{"", 0, false},
		{"high", 0, false},
		{"NaN", 0, false},
		{true, 0, false},
		{nil, 0, false},
		{map[string]any{"score": "12%"}, 12, true},
		{map[string]any{"level": "low"}, 0, false},
		{map[any]any{"score": 9}, 9, true},
	}

	for _, tt := range tests {
		got, ok := coerceNumber(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("coerceNumber(%#v) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNormalize_TextReport_TextSymbolsStayInBlock(t *testing.T) {
	text := RecommendationsHeader + "\n" +
		"  🫀 HEART HEALTH: keep body temp at 37°C today\n" +
		"     - walk 30 min\n" +
		"     - eat well (Brand® oats™ ©2024)\n" +
		"  🩸 DIABETES PREVENTION: watch sugar\n" +
		"     - skip soda\n"

	report := Normalize(model.TextReport(text))
	if len(report.Recommendations) != 2 {
		t.Fatalf("Expected 2 recommendations, got %d", len(report.Recommendations))
	}

	heart := report.Recommendations[0]
	if heart.Content != "keep body temp at 37°C today" {
		t.Errorf("Unexpected content: %q", heart.Content)
	}
	want := []string{"walk 30 min", "eat well (Brand® oats™ ©2024)"}
	if diff := cmp.Diff(want, heart.Points); diff != "" {
		t.Errorf("Points mismatch (-want +got):\n%s", diff)
	}
	if got := report.Recommendations[1].Points; len(got) != 1 || got[0] != "skip soda" {
		t.Errorf("Expected the diabetes block to start at its own marker, got %v", got)
	}
}

func TestIndexEmoji(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"37°C ©®™ plain", -1},
		{"ab🩸", 2},
		{"x ⚖️ y", 2},
		{"ok ✅", 3},
		{"⚠ first", 0},
	}
	for _, tt := range tests {
		if got := indexEmoji(tt.in); got != tt.want {
			t.Errorf("indexEmoji(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
