package model

// RawReport is one of the shapes the upstream assessment service may return.
// A nil RawReport means no report was received.
type RawReport interface {
	isRawReport()
}

// TextReport is a human-formatted report with emoji markers
type TextReport string

// StructuredReport is a decoded mapping with loosely named fields
type StructuredReport map[string]any

func (TextReport) isRawReport()       {}
func (StructuredReport) isRawReport() {}

// RawFromValue wraps a decoded JSON/YAML value as a RawReport.
// Values of any other type yield nil.
func RawFromValue(v any) RawReport {
	switch t := v.(type) {
	case RawReport:
		return t
	case string:
		return TextReport(t)
	case map[string]any:
		return StructuredReport(t)
	default:
		return nil
	}
}
