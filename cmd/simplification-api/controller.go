package main

import (
	"context"

	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/lexicon"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/pipeline"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/simplifier"
)

type controller struct {
	pipeline *pipeline.Pipeline
	lexicon  lexicon.Client
}

type batchResponse struct {
	Results    []pipeline.Result   `json:"results"`
	Statistics pipeline.Statistics `json:"statistics"`
}

func (c controller) Simplify(ctx context.Context, text string) pipeline.Result {
	return c.pipeline.Process(ctx, text)
}

func (c controller) Batch(ctx context.Context, texts []string) batchResponse {
	results := c.pipeline.BatchProcess(ctx, texts)
	return batchResponse{
		Results:    results,
		Statistics: pipeline.Summarize(results),
	}
}

func (c controller) ListBackends() []simplifier.Info {
	return simplifier.Backends()
}

func (c controller) Ready(ctx context.Context) bool {
	return c.lexicon.Ready(ctx)
}
