// Package testhelpers builds fixtures shared by tests across packages.
package testhelpers

import (
	"strings"

	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/entity"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/lexicon"
)

// Ent builds an entity positioned at the first occurrence of text in source.
func Ent(source, text string, category entity.Category, confidence float64) entity.Entity {
	start := strings.Index(source, text)
	return entity.Entity{
		Text:       text,
		Category:   category,
		Start:      start,
		End:        start + len(text),
		Confidence: confidence,
	}
}

func Ents(source string, category entity.Category, confidence float64, texts ...string) []entity.Entity {
	entities := make([]entity.Entity, len(texts))
	for i, text := range texts {
		entities[i] = Ent(source, text, category, confidence)
	}
	return entities
}

func Medications() []lexicon.Entry {
	return []lexicon.Entry{
		{Name: "Atenolol", Synonyms: []string{"Tenormin"}},
		{Name: "Metformin", Synonyms: []string{"Glucophage"}},
		{Name: "Insulin Glargine", Synonyms: []string{"Lantus", "Basaglar"}},
	}
}
