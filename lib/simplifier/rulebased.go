package simplifier

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"
)

// Replacements maps a medical term to its plain language rendering. Keys are
// matched case insensitively on word boundaries.
type Replacements map[string]string

// LoadReplacements returns an unmarshalled replacement table from a YAML file
// at the given path.
func LoadReplacements(path string) (Replacements, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		log.Error().Msg(fmt.Sprintf("could not find replacement table at %v", path))
		return nil, err
	}

	var replacements Replacements
	if err := yaml.Unmarshal(contents, &replacements); err != nil {
		log.Error().Msg(fmt.Sprintf("could not load replacement table from %v", path))
		return nil, err
	}

	log.Info().Msg(fmt.Sprintf("replacement table set from %v", path))

	return replacements, nil
}

// DefaultReplacements is the built-in table. config/replacements.yml carries
// the same values for deployments that need to extend them.
func DefaultReplacements() Replacements {
	return Replacements{
		// Cardiovascular terms.
		"hypertension":             "high blood pressure",
		"bradycardia":              "slow heart rate",
		"tachycardia":              "fast heart rate",
		"hypotension":              "low blood pressure",
		"atrial fibrillation":      "irregular heartbeat",
		"myocardial infarction":    "heart attack",
		"congestive heart failure": "heart failure",

		// Frequency abbreviations. The dotted forms keep their trailing
		// period out of the match, so "q.d." becomes "once a day.".
		"q.d.":   "once a day",
		"q.d":    "once a day",
		"qd":     "once a day",
		"b.i.d.": "twice a day",
		"b.i.d":  "twice a day",
		"bid":    "twice a day",
		"t.i.d.": "three times a day",
		"t.i.d":  "three times a day",
		"tid":    "three times a day",
		"q.i.d.": "four times a day",
		"q.i.d":  "four times a day",
		"qid":    "four times a day",
		"q4h":    "every 4 hours",
		"q6h":    "every 6 hours",
		"q8h":    "every 8 hours",
		"prn":    "as needed",

		// Routes of administration.
		"po":              "by mouth",
		"iv":              "into a vein",
		"subcutaneous":    "under the skin",
		"subcutaneously":  "under the skin",
		"intramuscular":   "into a muscle",
		"intramuscularly": "into a muscle",

		// Common medical terms.
		"monitor for":             "watch out for",
		"monitor":                 "watch",
		"prescribed":              "given",
		"administer":              "give",
		"dyspnea":                 "shortness of breath",
		"dysuria":                 "painful urination",
		"nocturia":                "frequent urination at night",
		"hepatomegaly":            "enlarged liver",
		"splenomegaly":            "enlarged spleen",
		"tachypnea":               "rapid breathing",
		"orthostatic hypotension": "low blood pressure when standing",
		"glossitis":               "swollen tongue",
		"stomatitis":              "mouth sores",
		"aphthous ulcers":         "mouth ulcers",
		"conjunctival":            "eye",
		"hyperemia":               "redness",
		"photophobia":             "sensitivity to light",
		"lacrimation":             "tearing",
		"edema":                   "swelling",
		"syncope":                 "fainting",
		"seizures":                "convulsions",
		"delirium":                "confusion",
		"coma":                    "unconsciousness",
		"neonate":                 "newborn baby",
		"endotracheal":            "breathing tube",
		"meconium":                "first bowel movement",
		"aspirator":               "suction device",

		// Patient language.
		"patient ":    "You ",
		"the patient": "You",
	}
}

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// RuleBased simplifies with dictionary replacements only. It needs no API key
// and always succeeds.
type RuleBased struct {
	rules []rule
}

/**
NewRuleBased compiles the replacement table into word boundary rules. Longer
terms are applied first so that multi word phrases win over their parts, e.g.
"orthostatic hypotension" is rewritten before "hypotension" can match inside
it. A nil table selects DefaultReplacements.
**/
func NewRuleBased(replacements Replacements) *RuleBased {
	if replacements == nil {
		replacements = DefaultReplacements()
	}

	terms := make([]string, 0, len(replacements))
	for term := range replacements {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if len(terms[i]) != len(terms[j]) {
			return len(terms[i]) > len(terms[j])
		}
		return terms[i] < terms[j]
	})

	rules := make([]rule, 0, len(terms))
	for _, term := range terms {
		rules = append(rules, rule{
			pattern:     regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`),
			replacement: replacements[term],
		})
	}

	return &RuleBased{rules: rules}
}

var extraWhitespace = regexp.MustCompile(`\s+`)

func (r *RuleBased) Simplify(ctx context.Context, req Request) Outcome {
	simplified := req.Text
	for _, rule := range r.rules {
		simplified = rule.pattern.ReplaceAllString(simplified, rule.replacement)
	}

	simplified = strings.ReplaceAll(simplified, " should be ", " should ")
	simplified = extraWhitespace.ReplaceAllString(simplified, " ")

	return Outcome{
		SimplifiedText: strings.TrimSpace(simplified),
		Model:          "rule-based",
		Prompt:         "N/A",
		Success:        true,
	}
}
