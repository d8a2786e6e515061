// Package pattern extracts entities with category regexes, curated term
// lists and a medication lexicon.
package pattern

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/entity"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/lexicon"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/text"
	"gopkg.in/yaml.v2"
)

const (
	dosageConfidence     = 1.0
	frequencyConfidence  = 0.95
	vitalConfidence      = 1.0
	routeConfidence      = 0.9
	medicationConfidence = 0.85
	termConfidence       = 0.8
)

// Medication names span at most this many tokens.
const maxSpanTokens = 3

// Patterns configures the extractor. Dosage, Frequency, Vital and Route hold
// case insensitive regexes. Condition and Anatomy hold literal terms.
type Patterns struct {
	Dosage    []string `yaml:"dosage"`
	Frequency []string `yaml:"frequency"`
	Vital     []string `yaml:"vital"`
	Route     []string `yaml:"route"`
	Condition []string `yaml:"condition"`
	Anatomy   []string `yaml:"anatomy"`
}

// Load returns an unmarshalled pattern table from a YAML file at the given
// path.
func Load(path string) (Patterns, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		log.Error().Msg(fmt.Sprintf("could not find pattern table at %v", path))
		return Patterns{}, err
	}

	var patterns Patterns
	if err := yaml.Unmarshal(contents, &patterns); err != nil {
		log.Error().Msg(fmt.Sprintf("could not load pattern table from %v", path))
		return Patterns{}, err
	}

	log.Info().Msg(fmt.Sprintf("pattern table set from %v", path))

	return patterns, nil
}

// Default is the built-in table. config/extraction.yml carries the same
// values for deployments that need to extend them.
func Default() Patterns {
	return Patterns{
		Dosage: []string{
			`\b\d+\.?\d*\s*(?:mg|g|mcg|mL|L|tablets?|capsules?|units?|IU|drops?)\b`,
		},
		Frequency: []string{
			`\b(?:q\.?d\.?|b\.?i\.?d\.?|t\.?i\.?d\.?|q\.?i\.?d\.?|once|twice|three times|four times)\s*(?:daily|a day|per day)?\b`,
			`\bevery\s+\d+\s+(?:hours?|days?|weeks?)\b`,
		},
		Vital: []string{
			`\b\d+/\d+\s*mmHg\b`,
			`\b\d+\.?\d*\s*°?[FC]\b`,
			`\b\d+\s*bpm\b`,
			`\b\d+\.?\d*%\s*(?:O2|oxygen)\b`,
		},
		Route: []string{
			`\b(?:PO|IV|IM|SC|subcut(?:aneous)?|oral(?:ly)?|intravenous(?:ly)?|topical(?:ly)?|inhaled?)\b`,
		},
		Condition: []string{
			"hypertension", "diabetes", "bradycardia", "tachycardia", "hypotension",
			"seizure", "syncope", "edema", "dyspnea", "dysuria",
		},
		Anatomy: []string{
			"heart", "lung", "liver", "kidney", "brain",
			"muscle", "bone", "nerve", "tissue", "organ",
		},
	}
}

type stage struct {
	category   entity.Category
	pattern    *regexp.Regexp
	confidence float64
}

// Extractor finds entities in priority order: dosages, frequencies, vitals
// and routes by regex, then medications via the lexicon, then conditions and
// anatomy by term list. A span claimed by an earlier stage is not reported
// again by a later one.
type Extractor struct {
	stages     []stage
	termStages []stage
	lexicon    lexicon.Client
}

/**
New compiles the pattern table. The lexicon client may be nil, which disables
medication extraction.
**/
func New(patterns Patterns, lex lexicon.Client) (*Extractor, error) {
	var stages []stage
	for _, spec := range []struct {
		category   entity.Category
		patterns   []string
		confidence float64
	}{
		{entity.Dosage, patterns.Dosage, dosageConfidence},
		{entity.Frequency, patterns.Frequency, frequencyConfidence},
		{entity.Vital, patterns.Vital, vitalConfidence},
		{entity.Route, patterns.Route, routeConfidence},
	} {
		for _, p := range spec.patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, fmt.Errorf("%s pattern %q: %w", strings.ToLower(string(spec.category)), p, err)
			}
			stages = append(stages, stage{category: spec.category, pattern: re, confidence: spec.confidence})
		}
	}

	termStages := append(
		compileTerms(entity.Condition, patterns.Condition),
		compileTerms(entity.Anatomy, patterns.Anatomy)...)

	return &Extractor{
		stages:     stages,
		termStages: termStages,
		lexicon:    lex,
	}, nil
}

func compileTerms(category entity.Category, terms []string) []stage {
	if len(terms) == 0 {
		return nil
	}

	quoted := make([]string, len(terms))
	for i, term := range terms {
		quoted[i] = regexp.QuoteMeta(term)
	}

	return []stage{{
		category:   category,
		pattern:    regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`),
		confidence: termConfidence,
	}}
}

func (e *Extractor) Extract(ctx context.Context, source string) ([]entity.Entity, error) {
	entities := []entity.Entity{}

	for _, s := range e.stages {
		entities = appendMatches(entities, s, source)
	}

	medications, err := e.medications(ctx, source, entities)
	if err != nil {
		return nil, err
	}
	entities = append(entities, medications...)

	for _, s := range e.termStages {
		entities = appendMatches(entities, s, source)
	}

	sort.SliceStable(entities, func(i, j int) bool {
		return entities[i].Start < entities[j].Start
	})

	return entities, nil
}

func appendMatches(entities []entity.Entity, s stage, source string) []entity.Entity {
	for _, match := range s.pattern.FindAllStringIndex(source, -1) {
		if entity.Overlaps(entities, match[0], match[1]) {
			continue
		}
		entities = append(entities, entity.Entity{
			Text:       source[match[0]:match[1]],
			Category:   s.category,
			Start:      match[0],
			End:        match[1],
			Confidence: s.confidence,
		})
	}
	return entities
}

type normToken struct {
	norm        string
	start       int
	end         int
	sentenceEnd bool
}

type span struct {
	start     int
	end       int
	width     int
	candidate string
}

/**
medications walks the token windows of the source text and keeps the spans
the lexicon knows. At each position the widest window wins and consumes its
tokens.
**/
func (e *Extractor) medications(ctx context.Context, source string, existing []entity.Entity) ([]entity.Entity, error) {
	if e.lexicon == nil {
		return nil, nil
	}

	tokens, err := normalizedTokens(source)
	if err != nil {
		return nil, err
	}
	spans := candidateSpans(tokens)

	var terms []string
	seen := make(map[string]struct{})
	for _, position := range spans {
		for _, sp := range position {
			if _, ok := seen[sp.candidate]; ok {
				continue
			}
			seen[sp.candidate] = struct{}{}
			terms = append(terms, sp.candidate)
		}
	}
	if len(terms) == 0 {
		return nil, nil
	}

	results, err := e.lexicon.LookupBatch(ctx, terms)
	if err != nil {
		return nil, err
	}

	var found []entity.Entity
	for i := 0; i < len(spans); i++ {
		for _, sp := range spans[i] {
			if _, ok := results[sp.candidate]; !ok {
				continue
			}
			if entity.Overlaps(existing, sp.start, sp.end) {
				continue
			}
			found = append(found, entity.Entity{
				Text:       source[sp.start:sp.end],
				Category:   entity.Medication,
				Start:      sp.start,
				End:        sp.end,
				Confidence: medicationConfidence,
			})
			i += sp.width - 1
			break
		}
	}

	return found, nil
}

func normalizedTokens(source string) ([]normToken, error) {
	var tokens []normToken
	err := text.Tokenize(source, func(tok text.Token) error {
		norm, sentenceEnd, offset := text.NormalizeString(tok.Text)
		end := tok.Offset + len(tok.Text)
		if sentenceEnd {
			end--
		}
		tokens = append(tokens, normToken{
			norm:        norm,
			start:       tok.Offset + offset,
			end:         end,
			sentenceEnd: sentenceEnd,
		})
		return nil
	})
	return tokens, err
}

// candidateSpans lists the token windows starting at each position, widest
// first. Windows never cross a sentence boundary or include a token that
// normalizes to nothing.
func candidateSpans(tokens []normToken) [][]span {
	spans := make([][]span, len(tokens))
	for i := range tokens {
		for width := min(maxSpanTokens, len(tokens)-i); width >= 1; width-- {
			parts := make([]string, 0, width)
			valid := true
			for j := i; j < i+width; j++ {
				if tokens[j].norm == "" {
					valid = false
					break
				}
				if j < i+width-1 && tokens[j].sentenceEnd {
					valid = false
					break
				}
				parts = append(parts, tokens[j].norm)
			}
			if !valid {
				continue
			}
			spans[i] = append(spans[i], span{
				start:     tokens[i].start,
				end:       tokens[i+width-1].end,
				width:     width,
				candidate: strings.Join(parts, " "),
			})
		}
	}
	return spans
}
