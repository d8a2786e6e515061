// Package pipeline chains the relevance gate, entity extraction,
// simplification and verification into one safety checked run.
package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/entity"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/extractor"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/relevance"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/simplifier"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/verification"
)

// Result is the full record of one pipeline run. Verification is nil when
// the run never reached the verifier, either because the gate refused the
// text or because an earlier stage failed.
type Result struct {
	OriginalText         string               `json:"original_text"`
	SimplifiedText       string               `json:"simplified_text"`
	Entities             []entity.Entity      `json:"entities"`
	Verification         *verification.Result `json:"verification,omitempty"`
	IsSafe               bool                 `json:"is_safe"`
	Warnings             []string             `json:"warnings"`
	ModelUsed            string               `json:"model_used"`
	IsRelevant           bool                 `json:"is_relevant"`
	RelevanceStatus      relevance.Status     `json:"relevance_status"`
	RelevanceExplanation string               `json:"relevance_explanation"`
}

// Options tune a pipeline. Backend names the configured simplifier in refusal
// and failure results, where no model ever ran. MaxRetries bounds how often an
// unsafe simplification is regenerated.
type Options struct {
	Backend    string
	MaxRetries int
}

// Pipeline runs texts through gate, extraction, simplification and
// verification. It is immutable after construction and safe for concurrent
// use as long as its clients are.
type Pipeline struct {
	gate       *relevance.Checker
	extractor  extractor.Client
	simplifier simplifier.Client
	verifier   *verification.Verifier
	backend    string
	maxRetries int
}

func New(gate *relevance.Checker, ext extractor.Client, simp simplifier.Client, ver *verification.Verifier, opts Options) *Pipeline {
	return &Pipeline{
		gate:       gate,
		extractor:  ext,
		simplifier: simp,
		verifier:   ver,
		backend:    opts.Backend,
		maxRetries: opts.MaxRetries,
	}
}

/**
	Process runs one text through the pipeline.

	Texts the relevance gate refuses are never extracted or sent to a model.
	When verification finds missing critical entities the simplifier is asked
	again, with the missing terms spelled out in the prompt, up to MaxRetries
	times. The result of the last attempt is returned whether or not it is
	safe.
**/
func (p *Pipeline) Process(ctx context.Context, text string) Result {
	rel := p.gate.Check(text)
	if !rel.IsRelevant {
		log.Info().Str("status", string(rel.Status)).Msg("refused text that is not medical")
		return Result{
			OriginalText: text,
			Entities:     []entity.Entity{},
			Warnings: []string{
				"CRITICAL SAFETY ALERT: " + rel.Explanation,
				"This text was NOT processed because it is unrelated to medical content.",
				"This service is designed ONLY for medical text simplification.",
				"Please provide medical discharge summaries, clinical notes, or medication instructions.",
			},
			ModelUsed:            p.backend,
			RelevanceStatus:      rel.Status,
			RelevanceExplanation: rel.Explanation,
		}
	}

	entities, err := p.extractor.Extract(ctx, text)
	if err != nil {
		return p.failed(text, []entity.Entity{}, rel, fmt.Sprintf("Extraction failed: %v", err))
	}
	if entities == nil {
		entities = []entity.Entity{}
	}
	log.Info().Int("entities", len(entities)).Msg("extracted entities")

	outcome := p.simplifier.Simplify(ctx, simplifier.Request{Text: text, Entities: entities})
	if !outcome.Success {
		return p.failed(text, entities, rel, "Simplification failed: "+outcome.ErrorMessage)
	}

	verdict := p.verifier.Verify(entities, outcome.SimplifiedText)

	for retry := 0; !verdict.IsSafe && retry < p.maxRetries; retry++ {
		log.Info().
			Int("retry", retry+1).
			Strs("missing", verdict.MissingEntities).
			Msg("verification failed, regenerating")

		outcome = p.simplifier.Simplify(ctx, simplifier.Request{
			Text:        text,
			Entities:    entities,
			Instruction: simplifier.RetryInstruction(verdict.MissingEntities),
		})
		if !outcome.Success {
			return p.failed(text, entities, rel, "Simplification failed: "+outcome.ErrorMessage)
		}

		verdict = p.verifier.Verify(entities, outcome.SimplifiedText)
	}

	warnings := make([]string, 0, len(verdict.Warnings)+1)
	if rel.Status != relevance.StatusMedical {
		warnings = append(warnings, "Relevance Note: "+rel.Explanation)
	}
	warnings = append(warnings, verdict.Warnings...)

	return Result{
		OriginalText:         text,
		SimplifiedText:       outcome.SimplifiedText,
		Entities:             entities,
		Verification:         &verdict,
		IsSafe:               verdict.IsSafe,
		Warnings:             warnings,
		ModelUsed:            outcome.Model,
		IsRelevant:           true,
		RelevanceStatus:      rel.Status,
		RelevanceExplanation: rel.Explanation,
	}
}

func (p *Pipeline) failed(text string, entities []entity.Entity, rel relevance.Result, warning string) Result {
	log.Error().Msg(warning)
	return Result{
		OriginalText:         text,
		Entities:             entities,
		Warnings:             []string{warning},
		ModelUsed:            p.backend,
		IsRelevant:           true,
		RelevanceStatus:      rel.Status,
		RelevanceExplanation: rel.Explanation,
	}
}

// BatchProcess runs Process over texts in order. One result per input, in
// input order.
func (p *Pipeline) BatchProcess(ctx context.Context, texts []string) []Result {
	results := make([]Result, len(texts))
	for i, text := range texts {
		results[i] = p.Process(ctx, text)
	}
	return results
}

// Statistics summarises a batch of results.
type Statistics struct {
	TotalProcessed           int     `json:"total_processed"`
	SafeSimplifications      int     `json:"safe_simplifications"`
	UnsafeSimplifications    int     `json:"unsafe_simplifications"`
	SafetyRate               float64 `json:"safety_rate"`
	AverageVerificationScore float64 `json:"average_verification_score"`
}

// Summarize aggregates results into batch statistics. Runs that never
// reached the verifier count as unsafe with a zero score.
func Summarize(results []Result) Statistics {
	stats := Statistics{TotalProcessed: len(results)}
	if stats.TotalProcessed == 0 {
		return stats
	}

	var scoreSum float64
	for _, r := range results {
		if r.IsSafe {
			stats.SafeSimplifications++
		}
		if r.Verification != nil {
			scoreSum += r.Verification.Score
		}
	}

	stats.UnsafeSimplifications = stats.TotalProcessed - stats.SafeSimplifications
	stats.SafetyRate = float64(stats.SafeSimplifications) / float64(stats.TotalProcessed)
	stats.AverageVerificationScore = scoreSum / float64(stats.TotalProcessed)
	return stats
}
