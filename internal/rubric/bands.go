package rubric

import (
	"fmt"
	"strings"
)

// Band maps a total score range to a category label.
type Band struct {
	Label string `json:"label"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
}

// CategoryNA is used when no total can be computed.
const CategoryNA = "N/A"

// Bands are the documented total-score categories.
var Bands = []Band{
	{Label: "Low", Min: 2, Max: 12},
	{Label: "Moderate", Min: 13, Max: 21},
	{Label: "High", Min: 22, Max: 30},
}

// CategoryFor returns the band label for total, or CategoryNA.
func CategoryFor(total *int) string {
	if total == nil {
		return CategoryNA
	}
	for _, b := range Bands {
		if *total >= b.Min && *total <= b.Max {
			return b.Label
		}
	}
	return CategoryNA
}

// Total sums the present variable scores; nil when none is present.
func Total(r *Result) *int {
	sum, seen := 0, false
	for _, s := range r.Scores() {
		if s != nil {
			sum += *s
			seen = true
		}
	}
	if !seen {
		return nil
	}
	return &sum
}

// Recompute replaces the provider's total and category with values derived
// from the variable scores, and appends a warning for each disagreement.
func Recompute(r *Result) {
	total := Total(r)
	category := CategoryFor(total)

	if !sameInt(r.TotalScore, total) && r.TotalScore != nil {
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"Provider total_score %d replaced by recomputed %s.", *r.TotalScore, formatTotal(total)))
	}
	if r.Category != "" && !strings.EqualFold(bandLabel(r.Category), category) {
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"Provider category %q replaced by recomputed %q.", r.Category, category))
	}
	r.TotalScore = total
	r.Category = category
}

// bandLabel reduces provider labels such as "Moderate (13-21)" to "Moderate".
func bandLabel(raw string) string {
	label := strings.TrimSpace(raw)
	for _, sep := range []string{"(", " / "} {
		if i := strings.Index(label, sep); i > 0 {
			label = strings.TrimSpace(label[:i])
		}
	}
	return strings.TrimSuffix(label, " Transparency")
}

func sameInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func formatTotal(total *int) string {
	if total == nil {
		return "null"
	}
	return fmt.Sprintf("%d", *total)
}
