package score

import "testing"

func TestGrade_Thresholds(t *testing.T) {
	tests := []struct {
		overall float64
		want    string
	}{
		{100, "A"},
		{85, "A"},
		{80, "A"},
		{79.99, "B"},
		{70, "B"},
		{65, "C"},
		{60, "C"},
		{55, "D"},
		{40, "D"},
		{39.9, "F"},
		{0, "F"},
	}

	for _, tt := range tests {
		if got := Grade(tt.overall); got != tt.want {
			t.Errorf("Grade(%v) = %q, want %q", tt.overall, got, tt.want)
		}
	}
}

func TestRiskLevel_Thresholds(t *testing.T) {
	tests := []struct {
		overall float64
		want    string
	}{
		{85, LevelExcellent},
		{80, LevelExcellent},
		{70, LevelGoodFair},
		{60, LevelGoodFair},
		{55, LevelPoor},
		{40, LevelPoor},
		{12, LevelCritical},
	}

	for _, tt := range tests {
		if got := RiskLevel(tt.overall); got != tt.want {
			t.Errorf("RiskLevel(%v) = %q, want %q", tt.overall, got, tt.want)
		}
	}
}

func TestCompositeRisk(t *testing.T) {
	if got := CompositeRisk(55); got != 45 {
		t.Errorf("Expected 45, got %v", got)
	}
	if got := CompositeRisk(48.1); got != 51.9 {
		t.Errorf("Expected 51.9, got %v", got)
	}
	if got := CompositeRisk(-20); got != 100 {
		t.Errorf("Expected composite to clamp at 100, got %v", got)
	}
	if got := CompositeRisk(140); got != 0 {
		t.Errorf("Expected composite to clamp at 0, got %v", got)
	}
}

func TestConditionLevel(t *testing.T) {
	cases := map[float64]string{
		10:   "low",
		29.9: "low",
		30:   "moderate",
		55:   "high",
		70:   "very high",
		85:   "critical",
		99:   "critical",
	}

	for risk, want := range cases {
		if got := ConditionLevel(risk); got != want {
			t.Errorf("ConditionLevel(%v) = %q, want %q", risk, got, want)
		}
	}
}
