package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/entity"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/extractor"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/extractor/http-extractor"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/extractor/pattern"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/lexicon"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/lexicon/local"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/lexicon/remote"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/pipeline"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/relevance"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/simplifier"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/verification"
)

const localBackend remote.Backend = "local"

// config structure
type simplifyConfig struct {
	LogLevel string `mapstructure:"log_level"`
	Pipeline struct {
		MaxRetries      int `mapstructure:"max_retries"`
		Strictness      string
		StrictRelevance bool `mapstructure:"strict_relevance"`
	}
	Simplifier simplifier.Config
	Extractor  struct {
		Patterns string
		NerUrl   string `mapstructure:"ner_url"`
	}
	Lexicon struct {
		Backend       remote.Backend
		Dictionary    string
		Redis         remote.RedisConfig
		Elasticsearch remote.ElasticsearchConfig
	}
	Relevance struct {
		Indicators string
	}
	Verification struct {
		Equivalences string
	}
}

var config simplifyConfig
var jsonOutput *bool

func initConfig() {
	jsonOutput = pflag.Bool("json", false, "Print the full result as json.")

	err := lib.InitializeConfig("./config/simplify.yml", map[string]interface{}{
		"log_level": "warn",
		"pipeline": map[string]interface{}{
			"max_retries":      2,
			"strictness":       "high",
			"strict_relevance": true,
		},
		"simplifier": map[string]interface{}{
			"backend": "rule-based",
		},
		"lexicon": map[string]interface{}{
			"backend":    "local",
			"dictionary": "./config/medications.jsonl",
		},
	}, &config)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}

// readInput returns the text to simplify, from the file named by the first
// positional argument or from stdin when there is none.
func readInput() (string, error) {
	if path := pflag.Arg(0); path != "" {
		contents, err := os.ReadFile(path)
		return string(contents), err
	}

	contents, err := io.ReadAll(os.Stdin)
	return string(contents), err
}

func main() {
	initConfig()

	text, err := readInput()
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	var lexiconClient lexicon.Client
	switch config.Lexicon.Backend {
	case remote.RedisBackend:
		lexiconClient = remote.NewRedisClient(config.Lexicon.Redis)
	case remote.ElasticsearchBackend:
		if lexiconClient, err = remote.NewElasticsearchClient(config.Lexicon.Elasticsearch); err != nil {
			log.Fatal().Err(err).Send()
		}
	case localBackend:
		if lexiconClient, err = local.Load(config.Lexicon.Dictionary); err != nil {
			log.Fatal().Err(err).Send()
		}
	default:
		log.Fatal().Msg("invalid lexicon backend type")
	}

	patterns := pattern.Default()
	if config.Extractor.Patterns != "" {
		if patterns, err = pattern.Load(config.Extractor.Patterns); err != nil {
			log.Fatal().Err(err).Send()
		}
	}
	patternExtractor, err := pattern.New(patterns, lexiconClient)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
	var extractorClient extractor.Client = patternExtractor
	if config.Extractor.NerUrl != "" {
		extractorClient = extractor.Combine(patternExtractor, http_extractor.NewClient(config.Extractor.NerUrl))
	}

	simplifierClient, err := simplifier.New(config.Simplifier)
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	indicators := relevance.DefaultIndicators()
	if config.Relevance.Indicators != "" {
		if indicators, err = relevance.Load(config.Relevance.Indicators); err != nil {
			log.Fatal().Err(err).Send()
		}
	}
	gate, err := relevance.NewChecker(indicators, config.Pipeline.StrictRelevance)
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	strictness, err := verification.ParseStrictness(config.Pipeline.Strictness)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
	equivalences := verification.DefaultEquivalences()
	if config.Verification.Equivalences != "" {
		if equivalences, err = verification.LoadEquivalences(config.Verification.Equivalences); err != nil {
			log.Fatal().Err(err).Send()
		}
	}
	verifier, err := verification.NewVerifier(strictness, equivalences)
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	p := pipeline.New(gate, extractorClient, simplifierClient, verifier, pipeline.Options{
		Backend:    config.Simplifier.Backend,
		MaxRetries: config.Pipeline.MaxRetries,
	})
	result := p.Process(context.Background(), text)

	if *jsonOutput {
		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Fatal().Err(err).Send()
		}
		fmt.Println(string(encoded))
	} else {
		printResult(result)
	}

	if !result.IsSafe {
		os.Exit(1)
	}
}

func printResult(result pipeline.Result) {
	for _, warning := range result.Warnings {
		fmt.Fprintln(os.Stderr, warning)
	}
	if !result.IsRelevant {
		return
	}

	fmt.Println("Original:")
	fmt.Println(entity.Highlight(result.OriginalText, result.Entities))
	fmt.Println()
	fmt.Println("Simplified:")
	fmt.Println(result.SimplifiedText)

	if result.Verification != nil {
		fmt.Println()
		fmt.Println(verification.Explain(*result.Verification))
	}
}
