package verification

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"
)

// Equivalences maps a medical abbreviation to the plain language renderings
// accepted as preserving it. The mapping is one directional: a candidate
// that replaces plain language with an abbreviation gets no credit here.
type Equivalences map[string][]string

// normalized returns a copy keyed and valued the way the cascade compares
// text, so table entries match regardless of how they were written.
func (eq Equivalences) normalized() Equivalences {
	out := make(Equivalences, len(eq))
	for key, renderings := range eq {
		lowered := make([]string, len(renderings))
		for i, r := range renderings {
			lowered[i] = strings.ToLower(strings.TrimSpace(r))
		}
		out[normalizeTerm(key)] = lowered
	}
	return out
}

// LoadEquivalences returns an unmarshalled equivalence table from a YAML
// file at the given path.
func LoadEquivalences(path string) (Equivalences, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		log.Error().Msg(fmt.Sprintf("could not find equivalence table at %v", path))
		return nil, err
	}

	var equivalences Equivalences
	if err := yaml.Unmarshal(contents, &equivalences); err != nil {
		log.Error().Msg(fmt.Sprintf("could not load equivalence table from %v", path))
		return nil, err
	}

	log.Info().Msg(fmt.Sprintf("equivalence table set from %v", path))

	return equivalences, nil
}

// DefaultEquivalences is the built-in table. config/equivalence.yml carries
// the same values for deployments that need to extend them.
func DefaultEquivalences() Equivalences {
	return Equivalences{
		"q.d.":   {"once a day", "once daily", "every day", "daily"},
		"b.i.d.": {"twice a day", "twice daily", "two times a day"},
		"t.i.d.": {"three times a day", "three times daily"},
		"q.i.d.": {"four times a day", "four times daily"},
		"po":     {"by mouth", "orally", "oral"},
		"iv":     {"intravenous", "into a vein", "through a vein"},
		"sc":     {"subcutaneous", "under the skin"},
		"im":     {"intramuscular", "into muscle"},
	}
}
