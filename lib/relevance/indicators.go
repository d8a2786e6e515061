package relevance

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"
)

// Indicators holds the three weighted pattern classes the gate scores text
// with. Patterns are compiled case insensitively.
type Indicators struct {
	Strong     []string `yaml:"strong"`
	Moderate   []string `yaml:"moderate"`
	NonMedical []string `yaml:"non_medical"`
}

// Load returns an unmarshalled indicator table from a YAML file at the
// given path.
func Load(path string) (Indicators, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		log.Error().Msg(fmt.Sprintf("could not find indicator table at %v", path))
		return Indicators{}, err
	}

	var indicators Indicators
	if err := yaml.Unmarshal(contents, &indicators); err != nil {
		log.Error().Msg(fmt.Sprintf("could not load indicator table from %v", path))
		return Indicators{}, err
	}

	log.Info().Msg(fmt.Sprintf("indicator table set from %v", path))

	return indicators, nil
}

// DefaultIndicators is the built-in table. config/indicators.yml carries the
// same values for deployments that need to extend them.
func DefaultIndicators() Indicators {
	return Indicators{
		Strong: []string{
			`\b\d+\.?\d*\s*(?:mg|g|mcg|mL|L|units?|IU|tablets?|capsules?)\b`,
			`\b(?:prescribed|prescription|medication|drug|dose|dosage)\b`,
			`\b(?:patient|diagnosis|diagnosed|symptom|treatment|therapy|clinical|medical|hospital|physician|doctor|nurse)\b`,
			`\b(?:hypertension|diabetes|bradycardia|tachycardia|hypotension|seizure|syncope|edema|dyspnea|dysuria)\b`,
			`\b(?:PO|IV|IM|SC|q\.?d\.?|b\.?i\.?d\.?|t\.?i\.?d\.?|q\.?i\.?d\.?|prn)\b`,
			`\b\d+/\d+\s*mmHg\b`,
			`\b\d+\.?\d*\s*°?[FC]\b`,
			`\b\d+\s*bpm\b`,
			`\b(?:atenolol|metformin|lisinopril|aspirin|warfarin|insulin|morphine|amoxicillin)\b`,
		},
		Moderate: []string{
			`\b(?:blood|heart|lung|liver|kidney|brain|muscle|bone|nerve|tissue|organ)\b`,
			`\b(?:pain|ache|fever|nausea|vomit|dizzy|weak|tired|fatigue|swollen|red|bleeding)\b`,
			`\b(?:test|exam|scan|x-ray|mri|ct|ultrasound|lab|laboratory|result)\b`,
			`\b(?:surgery|operation|procedure|injection|vaccine|antibiotic)\b`,
		},
		NonMedical: []string{
			`\b(?:recipe|cooking|bake|fry|ingredient|flour|sugar|salt|pepper|oven|stove|kitchen)\b`,
			`\b(?:game|match|player|team|score|goal|tournament|championship|sport|football|basketball)\b`,
			`\b(?:computer|software|programming|code|algorithm|database|server|network|internet|website)\b`,
			`\b(?:stock|market|investment|profit|revenue|business|company|corporate|finance|banking)\b`,
			`\b(?:election|president|government|policy|law|legal|court|judge|lawyer|politics)\b`,
			`\b(?:travel|vacation|hotel|flight|airport|destination|tourist|sightseeing|beach|mountain)\b`,
			`\b(?:homework|assignment|exam|test|grade|student|teacher|school|university|college|course)\b`,
			`\b(?:shopping|store|buy|purchase|price|discount|sale|cart|checkout|product|item)\b`,
		},
	}
}
