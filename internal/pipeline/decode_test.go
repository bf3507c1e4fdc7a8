package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/ppiankov/vitalscan/internal/model"
)

func TestDecodeRaw_Kinds(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		contentType string
		file        string
		want        string // "text", "structured", or "nil"
	}{
		{"json by content type", `{"overall_score": 70}`, "application/json", "", "structured"},
		{"json by extension", `{"overall_score": 70}`, "", "report.json", "structured"},
		{"json by first byte", `  {"overall_score": 70}`, "", "report", "structured"},
		{"json string", `"OVERALL HEALTH SCORE: 70.0/100 (Grade: B)"`, "application/json", "", "text"},
		{"yaml", "overall_score: 70\nindividual_risks:\n  heart_disease: 20\n", "", "report.yaml", "structured"},
		{"yml content type", "overall_score: 70\n", "application/yaml", "", "structured"},
		{"plain text", "OVERALL HEALTH SCORE: 70.0/100 (Grade: B)", "", "report.txt", "text"},
		{"text/plain json falls to extension", `{"overall_score": 70}`, "text/plain", "r.json", "structured"},
		{"broken json is text", `{"overall_score": `, "", "report.json", "text"},
		{"empty", "   ", "", "report.json", "text"},
		{"failed envelope", `{"success": false, "error": "boom"}`, "", "", "nil"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := DecodeRaw([]byte(tt.data), tt.contentType, tt.file)

			var got string
			switch raw.(type) {
			case model.TextReport:
				got = "text"
			case model.StructuredReport:
				got = "structured"
			case nil:
				got = "nil"
			default:
				got = "unknown"
			}
			if got != tt.want {
				t.Errorf("DecodeRaw kind = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDecodeRaw_KeepsJSONNumbers(t *testing.T) {
	raw := DecodeRaw([]byte(`{"overall_score": 72.5}`), "application/json", "")

	m, ok := raw.(model.StructuredReport)
	if !ok {
		t.Fatalf("Expected StructuredReport, got %T", raw)
	}
	if _, ok := m["overall_score"].(json.Number); !ok {
		t.Errorf("Expected json.Number, got %T", m["overall_score"])
	}
}

func TestDecodeRaw_UnwrapsEnvelope(t *testing.T) {
	text := DecodeRaw([]byte(`{"success": true, "report": "OVERALL HEALTH SCORE: 61.0/100 (Grade: C)", "redirect_url": "/results"}`), "", "resp.json")
	if s, ok := text.(model.TextReport); !ok || s != "OVERALL HEALTH SCORE: 61.0/100 (Grade: C)" {
		t.Errorf("Expected unwrapped text report, got %#v", text)
	}

	structured := DecodeRaw([]byte(`{"success": true, "report": {"health_score": 61}}`), "", "resp.json")
	m, ok := structured.(model.StructuredReport)
	if !ok {
		t.Fatalf("Expected unwrapped structured report, got %T", structured)
	}
	if _, ok := m["health_score"]; !ok {
		t.Errorf("Expected inner report keys, got %v", m)
	}
}

func TestDecodeRaw_HTMLResultsPage(t *testing.T) {
	page := `<html><body><h1>Results</h1><pre>📊 OVERALL HEALTH SCORE: 66.0/100 (Grade: C)</pre></body></html>`

	raw := DecodeRaw([]byte(page), "text/html; charset=utf-8", "results")
	text, ok := raw.(model.TextReport)
	if !ok {
		t.Fatalf("Expected TextReport, got %T", raw)
	}
	if string(text) != "📊 OVERALL HEALTH SCORE: 66.0/100 (Grade: C)" {
		t.Errorf("Unexpected text: %q", text)
	}
}
