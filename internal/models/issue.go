package models

import "strings"

type Category string

const (
	CategoryBrakes        Category = "Brakes"
	CategoryCoolingSystem Category = "Cooling System"
	CategorySuspension    Category = "Suspension"
	CategoryEngine        Category = "Engine"
	CategoryExhaust       Category = "Exhaust"
	CategoryElectrical    Category = "Electrical"
	CategoryBody          Category = "Body"
)

var categories = []Category{
	CategoryBrakes,
	CategoryCoolingSystem,
	CategorySuspension,
	CategoryEngine,
	CategoryExhaust,
	CategoryElectrical,
	CategoryBody,
}

// Categories returns the fixed category set in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory maps free text onto the fixed category set, ignoring case and
// surrounding whitespace.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range categories {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	return "", false
}

// Issue is one mechanical problem detected in a submission.
type Issue struct {
	Problem  string   `json:"problem"`
	Category Category `json:"category,omitempty"`
	Keywords []string `json:"keywords"`
}

// Analysis is the analyzer's verdict on a submission.
type Analysis struct {
	Issues        []Issue `json:"issues"`
	IssuesRelated *bool   `json:"Issues_related,omitempty"`
}

// Unrelated reports whether the analyzer explicitly flagged the issues as unrelated.
func (a *Analysis) Unrelated() bool {
	return a != nil && a.IssuesRelated != nil && !*a.IssuesRelated
}
