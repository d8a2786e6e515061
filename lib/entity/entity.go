package entity

import (
	"fmt"
	"sort"
	"strings"
)

// Category classifies an extracted span of medical text.
type Category string

const (
	Dosage     Category = "DOSAGE"
	Medication Category = "MEDICATION"
	Frequency  Category = "FREQUENCY"
	Vital      Category = "VITAL"
	Route      Category = "ROUTE"
	Condition  Category = "CONDITION"
	Anatomy    Category = "ANATOMY"
)

var categories = map[Category]struct{}{
	Dosage:     {},
	Medication: {},
	Frequency:  {},
	Vital:      {},
	Route:      {},
	Condition:  {},
	Anatomy:    {},
}

// ParseCategory validates a category name from config or a remote service.
func ParseCategory(s string) (Category, error) {
	category := Category(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := categories[category]; !ok {
		return "", fmt.Errorf("unknown entity category %q", s)
	}
	return category, nil
}

// Critical reports whether losing an entity of this category makes a
// simplification unsafe. Dosages, medication names and vital signs must
// survive simplification verbatim or as a known equivalent.
func (c Category) Critical() bool {
	switch c {
	case Dosage, Medication, Vital:
		return true
	}
	return false
}

// Entity is one recognised span. Start and End are byte offsets into the
// source text, with Text == source[Start:End].
type Entity struct {
	Text       string   `json:"text"`
	Category   Category `json:"category"`
	Start      int      `json:"start"`
	End        int      `json:"end"`
	Confidence float64  `json:"confidence"`
}

func (e Entity) Critical() bool {
	return e.Category.Critical()
}

// Overlaps reports whether the span [start, end) intersects any entity.
func Overlaps(entities []Entity, start, end int) bool {
	for _, e := range entities {
		if end > e.Start && start < e.End {
			return true
		}
	}
	return false
}

// Filter returns the entities for which keep is true, preserving order.
func Filter(entities []Entity, keep func(Entity) bool) []Entity {
	filtered := make([]Entity, 0, len(entities))
	for _, e := range entities {
		if keep(e) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// CriticalOnly returns the critical subset of entities, preserving order.
func CriticalOnly(entities []Entity) []Entity {
	return Filter(entities, Entity.Critical)
}

// Highlight renders text with every entity span wrapped in [text|CATEGORY]
// markers, for logs and command line output.
func Highlight(text string, entities []Entity) string {
	sorted := make([]Entity, len(entities))
	copy(sorted, entities)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	var sb strings.Builder
	last := 0
	for _, e := range sorted {
		if e.Start < last || e.End > len(text) {
			continue
		}
		sb.WriteString(text[last:e.Start])
		fmt.Fprintf(&sb, "[%s|%s]", text[e.Start:e.End], e.Category)
		last = e.End
	}
	sb.WriteString(text[last:])
	return sb.String()
}
