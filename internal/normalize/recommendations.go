package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/ppiankov/vitalscan/internal/model"
)

// RecommendationsHeader introduces the recommendations section of a text report
const RecommendationsHeader = "PERSONALIZED HEALTH RECOMMENDATIONS:"

// SectionSeparator ends the recommendations section
var SectionSeparator = strings.Repeat("=", 80)

// recommendationRule describes one recommendation card and how to find its block
type recommendationRule struct {
	condition model.Condition
	title     string
	icon      string
	color     string
	marker    *regexp.Regexp
}

// Scanned in this order regardless of the order blocks appear in the text.
// Diabetes also accepts the bare "DIABETES:" label the scorer emits.
var recommendationRules = []recommendationRule{
	{
		condition: model.ConditionHeart,
		title:     "Heart Health",
		icon:      "fas fa-heartbeat",
		color:     "#e74c3c",
		marker:    regexp.MustCompile(`(?i)HEART HEALTH\s*:`),
	},
	{
		condition: model.ConditionDiabetes,
		title:     "Diabetes Prevention",
		icon:      "fas fa-tint",
		color:     "#9b59b6",
		marker:    regexp.MustCompile(`(?i)DIABETES(?: PREVENTION)?\s*:`),
	},
	{
		condition: model.ConditionHypertension,
		title:     "Blood Pressure",
		icon:      "fas fa-stethoscope",
		color:     "#3498db",
		marker:    regexp.MustCompile(`(?i)BLOOD PRESSURE\s*:`),
	},
	{
		condition: model.ConditionObesity,
		title:     "Weight Management",
		icon:      "fas fa-weight",
		color:     "#f39c12",
		marker:    regexp.MustCompile(`(?i)WEIGHT MANAGEMENT\s*:`),
	},
}

var leadingHyphen = regexp.MustCompile(`^\s*-\s*`)

// extractRecommendations mines the recommendations section of a text report
func extractRecommendations(text string) []model.Recommendation {
	recs := []model.Recommendation{}

	idx := strings.Index(text, RecommendationsHeader)
	if idx < 0 {
		return recs
	}
	section := text[idx+len(RecommendationsHeader):]
	if end := strings.Index(section, SectionSeparator); end >= 0 {
		section = section[:end]
	}

	for _, rule := range recommendationRules {
		loc := rule.marker.FindStringIndex(section)
		if loc == nil {
			continue
		}
		block := section[loc[1]:]
		if end := indexEmoji(block); end >= 0 {
			block = block[:end]
		}

		lines := strings.Split(block, "\n")
		rec := model.Recommendation{
			Type:    rule.condition,
			Icon:    rule.icon,
			Color:   rule.color,
			Title:   rule.title,
			Content: strings.TrimSpace(lines[0]),
			Points:  []string{},
		}
		for _, line := range lines[1:] {
			if !strings.Contains(line, "-") {
				continue
			}
			point := strings.TrimSpace(leadingHyphen.ReplaceAllString(line, ""))
			if point != "" {
				rec.Points = append(rec.Points, point)
			}
		}
		recs = append(recs, rec)
	}

	return recs
}

// pictographic covers the emoji blocks report markers are drawn from.
// Text symbols such as ° © ® ™ fall outside it.
var pictographic = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x231a, Hi: 0x23ff, Stride: 1}, // Miscellaneous Technical emoji
		{Lo: 0x2600, Hi: 0x27bf, Stride: 1}, // Miscellaneous Symbols, Dingbats
		{Lo: 0x2b05, Hi: 0x2b55, Stride: 1}, // arrows, stars, circles
	},
	R32: []unicode.Range32{
		{Lo: 0x1f000, Hi: 0x1faff, Stride: 1},
	},
}

// indexEmoji returns the byte offset of the first pictographic emoji in s, or -1
func indexEmoji(s string) int {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.Is(pictographic, r)
	})
}
