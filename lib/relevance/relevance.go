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

// Package relevance decides whether a text is medical enough to simplify.
// The gate is deliberately conservative: simplifying a recipe or a news
// article with a medical safety pipeline produces confidently wrong output,
// so anything scoring as unrelated is refused before extraction runs.
package relevance

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Status is the gate's classification of an input text.
type Status string

const (
	StatusMedical       Status = "medical"
	StatusLikelyMedical Status = "likely_medical"
	StatusUnclear       Status = "unclear"
	StatusUnrelated     Status = "unrelated"
)

// Result carries the gate's decision and the evidence behind it.
type Result struct {
	Status               Status   `json:"status"`
	IsRelevant           bool     `json:"is_relevant"`
	Confidence           float64  `json:"confidence"`
	MedicalIndicators    []string `json:"medical_indicators"`
	NonMedicalIndicators []string `json:"non_medical_indicators"`
	Explanation          string   `json:"explanation"`
}

// Checker scores text against weighted indicator patterns. It holds only
// compiled patterns and the strict flag, so a single instance is safe for
// concurrent use.
type Checker struct {
	strict     bool
	strong     []*regexp.Regexp
	moderate   []*regexp.Regexp
	nonMedical []*regexp.Regexp
}

// Weights per indicator class. Strong indicators outweigh moderate ones,
// and non-medical hits count double against.
const (
	strongWeight     = 3
	nonMedicalWeight = 2
)

// NewChecker compiles the indicator table. In strict mode, text whose
// relevance is unclear is refused rather than processed.
func NewChecker(indicators Indicators, strict bool) (*Checker, error) {
	checker := &Checker{strict: strict}

	for _, class := range []struct {
		patterns []string
		target   *[]*regexp.Regexp
	}{
		{indicators.Strong, &checker.strong},
		{indicators.Moderate, &checker.moderate},
		{indicators.NonMedical, &checker.nonMedical},
	} {
		for _, pattern := range class.patterns {
			re, err := regexp.Compile("(?i)" + pattern)
			if err != nil {
				return nil, fmt.Errorf("indicator pattern %q: %w", pattern, err)
			}
			*class.target = append(*class.target, re)
		}
	}

	return checker, nil
}

// Check classifies text. The same input always yields the same result.
func (c *Checker) Check(text string) Result {
	var medical, nonMedical []string

	strongCount := countMatches(c.strong, text, 3, &medical)
	moderateCount := countMatches(c.moderate, text, 2, &medical)
	nonMedicalCount := countMatches(c.nonMedical, text, 3, &nonMedical)

	medicalScore := strongCount*strongWeight + moderateCount
	nonMedicalScore := nonMedicalCount * nonMedicalWeight

	wordCount := len(strings.Fields(text))
	confidence := 0.0
	if wordCount > 0 {
		diff := math.Abs(float64(medicalScore - nonMedicalScore))
		confidence = math.Min(1.0, diff/math.Max(1.0, float64(wordCount)*0.5))
	}

	var (
		status      Status
		isRelevant  bool
		explanation string
	)
	switch {
	case nonMedicalScore > medicalScore && nonMedicalCount >= 2:
		status = StatusUnrelated
		explanation = fmt.Sprintf(
			"This text appears to be UNRELATED to medical content. "+
				"Found %d non-medical indicators (e.g., %s) but only %d medical indicators. "+
				"This system is designed ONLY for medical text simplification. "+
				"Processing unrelated content could produce misleading or incorrect results.",
			nonMedicalCount, strings.Join(head(nonMedical, 3), ", "), strongCount+moderateCount)
	case strongCount >= 2 || (strongCount >= 1 && moderateCount >= 2):
		status = StatusMedical
		isRelevant = true
		explanation = fmt.Sprintf(
			"Medical content detected. Found %d strong medical indicators (e.g., %s). Safe to process.",
			strongCount, strings.Join(head(medical, 3), ", "))
	case strongCount >= 1 || moderateCount >= 3:
		status = StatusLikelyMedical
		isRelevant = true
		explanation = fmt.Sprintf(
			"Likely medical content. Found %d strong and %d moderate indicators. Proceeding with caution.",
			strongCount, moderateCount)
	case medicalScore > 0:
		status = StatusUnclear
		isRelevant = !c.strict
		suffix := "Rejecting for safety (strict mode)."
		if isRelevant {
			suffix = "Processing with caution."
		}
		explanation = fmt.Sprintf(
			"Content relevance is UNCLEAR. Found limited medical indicators (%d strong, %d moderate). %s",
			strongCount, moderateCount, suffix)
	default:
		status = StatusUnrelated
		explanation = "No medical indicators found in this text. " +
			"This system is designed ONLY for medical text simplification. " +
			"Please provide medical discharge summaries, clinical notes, or medication instructions."
	}

	if medical == nil {
		medical = []string{}
	}
	if nonMedical == nil {
		nonMedical = []string{}
	}

	return Result{
		Status:               status,
		IsRelevant:           isRelevant,
		Confidence:           confidence,
		MedicalIndicators:    head(medical, 5),
		NonMedicalIndicators: head(nonMedical, 5),
		Explanation:          explanation,
	}
}

// countMatches counts every match across the pattern class and collects up
// to examplesPerPattern example matches per pattern, keeping original casing.
func countMatches(patterns []*regexp.Regexp, text string, examplesPerPattern int, examples *[]string) int {
	count := 0
	for _, re := range patterns {
		matches := re.FindAllString(text, -1)
		if len(matches) == 0 {
			continue
		}
		count += len(matches)
		*examples = append(*examples, head(matches, examplesPerPattern)...)
	}
	return count
}

func head(list []string, n int) []string {
	if len(list) <= n {
		return list
	}
	return list[:n]
}
