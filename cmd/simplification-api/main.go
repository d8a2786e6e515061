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

package main

import (
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib"
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
type simplificationAPIConfig struct {
	LogLevel string `mapstructure:"log_level"`
	Server   struct {
		HttpPort int `mapstructure:"http_port"`
	}
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

var config simplificationAPIConfig

func initConfig() {
	err := lib.InitializeConfig("./config/simplification-api.yml", map[string]interface{}{
		"log_level": "info",
		"server": map[string]interface{}{
			"http_port": 8083,
		},
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
			"redis": map[string]interface{}{
				"host": "localhost",
				"port": 6379,
			},
			"elasticsearch": map[string]interface{}{
				"host":  "localhost",
				"port":  9200,
				"index": "lexicon",
			},
		},
	}, &config)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}

func main() {
	initConfig()

	go lib.HandleInterrupt()

	var lexiconClient lexicon.Client
	var err error
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

	r := gin.New()
	r.Use(gin.LoggerWithFormatter(lib.JsonLogFormatter), gin.Recovery(), cors.Default())
	c := controller{
		pipeline: pipeline.New(gate, extractorClient, simplifierClient, verifier, pipeline.Options{
			Backend:    config.Simplifier.Backend,
			MaxRetries: config.Pipeline.MaxRetries,
		}),
		lexicon: lexiconClient,
	}
	s := server{controller: c}
	s.RegisterRoutes(r)

	if err := r.Run(fmt.Sprintf(":%d", config.Server.HttpPort)); err != nil {
		log.Fatal().Err(err).Send()
	}
}
