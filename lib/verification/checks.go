package verification

import (
	"fmt"
	"regexp"
	"strings"

	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/entity"
)

// candidate is the simplified text prepared once per Verify call.
type candidate struct {
	lower      string
	normalized string
}

func newCandidate(simplified string) candidate {
	lower := strings.ToLower(simplified)
	return candidate{
		lower:      lower,
		normalized: normalizeTerm(lower),
	}
}

// term is one entity's text prepared for matching.
type term struct {
	lower      string
	normalized string
}

func newTerm(entityText string) term {
	lower := strings.ToLower(strings.TrimSpace(entityText))
	return term{
		lower:      lower,
		normalized: normalizeTerm(lower),
	}
}

var collapseWhitespace = regexp.MustCompile(`\s+`)

// normalizeTerm folds text the way the cascade compares it: whitespace
// collapsed, then periods removed, then list punctuation dropped.
func normalizeTerm(s string) string {
	s = collapseWhitespace.ReplaceAllString(strings.ToLower(s), " ")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.NewReplacer(",", "", ";", "", ":", "").Replace(s)
	return strings.TrimSpace(s)
}

// check is one step of the matching cascade. A true result means the entity
// counts as preserved; the warning, when set, is surfaced without making
// the result unsafe.
type check func(e entity.Entity, t term, cand candidate) (bool, string)

func (v *Verifier) exactMatch(_ entity.Entity, t term, cand candidate) (bool, string) {
	return strings.Contains(cand.lower, t.lower), ""
}

func (v *Verifier) normalizedMatch(_ entity.Entity, t term, cand candidate) (bool, string) {
	return t.normalized != "" && strings.Contains(cand.normalized, t.normalized), ""
}

// equivalenceMatch accepts a known plain language rendering of an
// abbreviation. The hit is reported as a transform warning so the rewording
// stays visible downstream.
func (v *Verifier) equivalenceMatch(e entity.Entity, t term, cand candidate) (bool, string) {
	renderings, ok := v.equivalences[t.normalized]
	if !ok {
		return false, ""
	}
	for _, rendering := range renderings {
		if strings.Contains(cand.lower, rendering) {
			return true, fmt.Sprintf("Entity '%s' was transformed (acceptable for %s)", e.Text, e.Category)
		}
	}
	return false, ""
}

var dosageParts = regexp.MustCompile(`^(\d+\.?\d*)\s*([a-z]+)`)

// dosageMatch tolerates spacing changes between amount and unit, e.g.
// "50mg" appearing as "50 mg". Only dosage entities qualify.
func (v *Verifier) dosageMatch(e entity.Entity, t term, cand candidate) (bool, string) {
	if e.Category != entity.Dosage {
		return false, ""
	}

	parts := dosageParts.FindStringSubmatch(t.lower)
	if parts == nil {
		return false, ""
	}

	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(parts[1]) + `\s*` + regexp.QuoteMeta(parts[2]) + `\b`)
	if err != nil {
		return false, ""
	}
	return re.MatchString(cand.lower), ""
}

// rootSuffixes are form and unit words stripped from a medication mention
// before searching for its root name.
var rootSuffixes = []string{"tablets", "capsule", "mg", "mcg", "ml"}

func (v *Verifier) medicationRootMatch(e entity.Entity, t term, cand candidate) (bool, string) {
	if e.Category != entity.Medication {
		return false, ""
	}

	root := t.lower
	for _, suffix := range rootSuffixes {
		if strings.HasSuffix(root, suffix) {
			root = strings.TrimSpace(strings.TrimSuffix(root, suffix))
		}
	}
	if len(root) <= 3 {
		return false, ""
	}
	return strings.Contains(cand.lower, root), ""
}
