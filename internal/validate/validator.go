package validate

import (
	"fmt"
	"strings"

	"github.com/ppiankov/vitalscan/internal/model"
	"github.com/ppiankov/vitalscan/internal/normalize"
)

// Validator produces diagnostic signals for a normalized report.
// Signals never change the report; they explain it.
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// Check returns the signals for a report and its provenance
func (v *Validator) Check(report model.CanonicalReport, prov normalize.Provenance) []model.Signal {
	signals := []model.Signal{}

	if prov.Path == normalize.PathDefault {
		signals = append(signals, model.Signal{
			Type:        model.SignalNoSignal,
			Severity:    model.SeverityCritical,
			Description: "No usable report content; showing fallback values",
			Data: map[string]interface{}{
				"path": string(prov.Path),
			},
		})
	} else if len(prov.Defaulted) > 0 {
		signals = append(signals, model.Signal{
			Type:        model.SignalFallbackUsed,
			Severity:    model.SeverityWarning,
			Description: fmt.Sprintf("%d field(s) set from fallback values: %s", len(prov.Defaulted), strings.Join(prov.Defaulted, ", ")),
			Data: map[string]interface{}{
				"fields": prov.Defaulted,
			},
		})
	}

	if len(prov.Missing) > 0 {
		signals = append(signals, model.Signal{
			Type:        model.SignalTextMissingMarker,
			Severity:    model.SeverityInfo,
			Description: fmt.Sprintf("Risk line not found for %s (shown as 0%%)", strings.Join(prov.Missing, ", ")),
			Data: map[string]interface{}{
				"conditions": prov.Missing,
			},
		})
	}

	for _, c := range model.Conditions {
		risk := report.Risks.Get(c)
		if risk < 0 || risk > 100 {
			signals = append(signals, model.Signal{
				Type:        model.SignalRiskOutOfRange,
				Severity:    model.SeverityWarning,
				Description: fmt.Sprintf("%s risk %.1f%% is outside 0-100", c.Label(), risk),
				Data: map[string]interface{}{
					"condition": string(c),
					"value":     risk,
				},
			})
		}
	}

	return signals
}
