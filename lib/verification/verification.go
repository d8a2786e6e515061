/*
 * Copyright 2022 Medicines Discovery Catapult
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *     http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package verification checks that a simplified text still carries every
// critical entity of the original. Verification is pure: it holds no state
// across calls, performs no IO and never fails, so the same entities and
// candidate text always produce the same verdict.
package verification

import (
	"fmt"
	"strings"

	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/entity"
)

// Strictness selects the safety thresholds applied to a verification.
type Strictness string

const (
	StrictnessHigh   Strictness = "high"
	StrictnessMedium Strictness = "medium"
	StrictnessLow    Strictness = "low"
)

// threshold is the pass bar for one strictness level: the minimum
// preservation score and how many critical entities may go missing.
type threshold struct {
	minScore       float64
	missingAllowed int
}

var thresholds = map[Strictness]threshold{
	StrictnessHigh:   {minScore: 0.95, missingAllowed: 0},
	StrictnessMedium: {minScore: 0.85, missingAllowed: 1},
	StrictnessLow:    {minScore: 0.75, missingAllowed: 2},
}

// ParseStrictness validates a strictness name from config.
func ParseStrictness(s string) (Strictness, error) {
	strictness := Strictness(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := thresholds[strictness]; !ok {
		return "", fmt.Errorf("unknown strictness %q: choose from high, medium, low", s)
	}
	return strictness, nil
}

// Result is the verdict on one simplification candidate.
type Result struct {
	IsSafe          bool     `json:"is_safe"`
	MissingEntities []string `json:"missing_entities"`
	Score           float64  `json:"score"`
	Warnings        []string `json:"warnings"`
}

// Verifier runs the matching cascade against candidate texts. It is
// immutable after construction and safe for concurrent use.
type Verifier struct {
	strictness   Strictness
	threshold    threshold
	equivalences Equivalences
	checks       []check
}

// NewVerifier builds a verifier for the given strictness. The equivalence
// table is normalized once here so lookups during verification are a single
// map access.
func NewVerifier(strictness Strictness, equivalences Equivalences) (*Verifier, error) {
	t, ok := thresholds[strictness]
	if !ok {
		return nil, fmt.Errorf("unknown strictness %q: choose from high, medium, low", strictness)
	}

	v := &Verifier{
		strictness:   strictness,
		threshold:    t,
		equivalences: equivalences.normalized(),
	}
	v.checks = []check{
		v.exactMatch,
		v.normalizedMatch,
		v.equivalenceMatch,
		v.dosageMatch,
		v.medicationRootMatch,
	}
	return v, nil
}

// Strictness returns the level the verifier was built with.
func (v *Verifier) Strictness() Strictness {
	return v.strictness
}

/**
	Verify checks the simplified text against the extracted entities.

	Critical entities (dosages, medications, vitals) must be found by the
	matching cascade; each one that is not becomes a missing entity and a
	safety warning. Non-critical entities never affect the score, but a
	known equivalence hit on one still surfaces its transform warning so
	reviewers can see what was rephrased.

	The score is the preserved fraction of critical entities, 1.0 when
	there are none.
**/
func (v *Verifier) Verify(entities []entity.Entity, simplified string) Result {
	cand := newCandidate(simplified)

	missing := []string{}
	warnings := []string{}
	var criticalTotal, preserved int

	for _, e := range entities {
		matched, warning := v.match(e, cand)

		if !e.Critical() {
			if matched && warning != "" {
				warnings = append(warnings, warning)
			}
			continue
		}

		criticalTotal++
		if matched {
			preserved++
			if warning != "" {
				warnings = append(warnings, warning)
			}
			continue
		}
		missing = append(missing, e.Text)
	}

	score := 1.0
	if criticalTotal > 0 {
		score = float64(preserved) / float64(criticalTotal)
	}

	for _, m := range missing {
		warnings = append(warnings, fmt.Sprintf("SAFETY ALERT: Critical entity '%s' not found in simplified text!", m))
	}

	return Result{
		IsSafe:          score >= v.threshold.minScore && len(missing) <= v.threshold.missingAllowed,
		MissingEntities: missing,
		Score:           score,
		Warnings:        warnings,
	}
}

// match runs the cascade in order and reports the first hit.
func (v *Verifier) match(e entity.Entity, cand candidate) (bool, string) {
	t := newTerm(e.Text)
	for _, c := range v.checks {
		if matched, warning := c(e, t, cand); matched {
			return true, warning
		}
	}
	return false, ""
}

// Explain renders a verification result as the audit text surfaced to
// callers.
func Explain(r Result) string {
	var sb strings.Builder

	if r.IsSafe {
		fmt.Fprintf(&sb, "SAFE: Verification score: %.1f%%\n", r.Score*100)
		sb.WriteString("All critical medical entities are preserved.")
	} else {
		fmt.Fprintf(&sb, "UNSAFE: Verification score: %.1f%%\n", r.Score*100)
		sb.WriteString("The simplified text has issues:")
		if len(r.MissingEntities) > 0 {
			fmt.Fprintf(&sb, "\n\nMissing %d critical entities:\n", len(r.MissingEntities))
			for _, m := range r.MissingEntities {
				fmt.Fprintf(&sb, "  - %s\n", m)
			}
		}
	}

	if len(r.Warnings) > 0 {
		text := strings.TrimRight(sb.String(), "\n")
		sb.Reset()
		sb.WriteString(text)
		sb.WriteString("\n\nWarnings:\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&sb, "  %s\n", w)
		}
	}

	return sb.String()
}
