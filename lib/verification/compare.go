package verification

import (
	"fmt"
	"sort"
	"strings"

	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/entity"
)

/**
	CompareEntitySets verifies by re-extraction: the critical entities of the
	original and the simplified text are reduced to normalized term sets and
	compared by Jaccard similarity.

	Terms missing from the simplified set count against the score; extra
	terms are reported as possible hallucinations. This is a stronger but
	costlier alternative to Verify, since it needs extraction to have run on
	both texts.
**/
func (v *Verifier) CompareEntitySets(original, simplified []entity.Entity) Result {
	originalTerms := criticalTerms(original)
	simplifiedTerms := criticalTerms(simplified)

	var intersection int
	missing := []string{}
	for t := range originalTerms {
		if _, ok := simplifiedTerms[t]; ok {
			intersection++
		} else {
			missing = append(missing, t)
		}
	}

	extra := []string{}
	for t := range simplifiedTerms {
		if _, ok := originalTerms[t]; !ok {
			extra = append(extra, t)
		}
	}

	sort.Strings(missing)
	sort.Strings(extra)

	union := len(originalTerms) + len(simplifiedTerms) - intersection
	jaccard := 0.0
	if union > 0 {
		jaccard = float64(intersection) / float64(union)
	}

	warnings := []string{}
	if len(missing) > 0 {
		warnings = append(warnings, fmt.Sprintf("Missing entities: %s", strings.Join(missing, ", ")))
	}
	if len(extra) > 0 {
		warnings = append(warnings, fmt.Sprintf("Extra entities (hallucinations?): %s", strings.Join(extra, ", ")))
	}

	return Result{
		IsSafe:          jaccard >= v.threshold.minScore,
		MissingEntities: missing,
		Score:           jaccard,
		Warnings:        warnings,
	}
}

func criticalTerms(entities []entity.Entity) map[string]struct{} {
	terms := make(map[string]struct{})
	for _, e := range entities {
		if e.Critical() {
			terms[strings.ToLower(strings.TrimSpace(e.Text))] = struct{}{}
		}
	}
	return terms
}
