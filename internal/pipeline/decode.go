package pipeline

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/ppiankov/vitalscan/internal/extract"
	"github.com/ppiankov/vitalscan/internal/model"
	"gopkg.in/yaml.v3"
)

type documentKind int

const (
	kindText documentKind = iota
	kindJSON
	kindYAML
	kindHTML
)

// DecodeRaw turns a loaded document into a raw report. The kind is taken
// from the content type, then the file extension, then the first byte.
// Documents that fail to decode as their apparent kind fall back to text.
func DecodeRaw(data []byte, contentType string, name string) model.RawReport {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return model.TextReport(string(data))
	}

	switch sniffKind(trimmed, contentType, name) {
	case kindJSON:
		if v, err := decodeJSON(trimmed); err == nil {
			return unwrapEnvelope(v)
		}
	case kindYAML:
		var v map[string]any
		if err := yaml.Unmarshal(trimmed, &v); err == nil && v != nil {
			return unwrapEnvelope(v)
		}
	case kindHTML:
		if text, err := extract.VisibleText(string(data)); err == nil {
			return model.TextReport(text)
		}
	}

	return model.TextReport(string(data))
}

func sniffKind(trimmed []byte, contentType, name string) documentKind {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "json"):
		return kindJSON
	case strings.Contains(ct, "yaml"):
		return kindYAML
	case strings.Contains(ct, "html"):
		return kindHTML
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return kindJSON
	case ".yaml", ".yml":
		return kindYAML
	case ".html", ".htm":
		return kindHTML
	case ".txt", ".text":
		return kindText
	}

	switch trimmed[0] {
	case '{', '"':
		return kindJSON
	case '<':
		return kindHTML
	}
	return kindText
}

// decodeJSON decodes a single JSON value keeping numbers as json.Number
func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// unwrapEnvelope unwraps a scorer API response ({"success": ..., "report": ...}).
// A failed envelope carries no report. Anything else passes through unchanged.
func unwrapEnvelope(v any) model.RawReport {
	m, ok := v.(map[string]any)
	if !ok {
		return model.RawFromValue(v)
	}

	success, hasSuccess := m["success"].(bool)
	report, hasReport := m["report"]
	if !hasSuccess {
		return model.StructuredReport(m)
	}
	if !success || !hasReport {
		return nil
	}
	return model.RawFromValue(report)
}
