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
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/lexicon"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/lexicon/remote"
)

// config structure
type lexiconImporterConfig struct {
	LogLevel string `mapstructure:"log_level"`
	Lexicon  struct {
		Backend       remote.Backend
		Dictionary    string
		BatchSize     int `mapstructure:"batch_size"`
		Redis         remote.RedisConfig
		Elasticsearch remote.ElasticsearchConfig
	}
}

var config lexiconImporterConfig

func initConfig() {
	err := lib.InitializeConfig("./config/lexicon-importer.yml", map[string]interface{}{
		"log_level": "info",
		"lexicon": map[string]interface{}{
			"backend":    remote.RedisBackend,
			"dictionary": "./config/medications.jsonl",
			"batch_size": 1000,
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

	var client remote.Client
	var err error
	switch config.Lexicon.Backend {
	case remote.RedisBackend:
		client = remote.NewRedisClient(config.Lexicon.Redis)
	case remote.ElasticsearchBackend:
		if client, err = remote.NewElasticsearchClient(config.Lexicon.Elasticsearch); err != nil {
			log.Fatal().Err(err).Send()
		}
	default:
		log.Fatal().Msg("invalid lexicon backend type")
	}

	ctx := context.Background()
	for !client.Ready(ctx) {
		log.Info().Msg("lexicon store is not ready, waiting...")
		time.Sleep(10 * time.Second)
	}

	if err := importLexicon(ctx, client); err != nil {
		log.Fatal().Err(err).Send()
	}
}

func importLexicon(ctx context.Context, client remote.Client) error {
	batch := make([]lexicon.Entry, 0, config.Lexicon.BatchSize)
	var imported int

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := client.WriteBatch(ctx, batch); err != nil {
			return err
		}
		imported += len(batch)
		log.Info().Int("entries", imported).Msgf("upserting lexicon to %s...", config.Lexicon.Backend)
		batch = batch[:0]
		return nil
	}

	err := lexicon.ReadFile(config.Lexicon.Dictionary, func(entry lexicon.Entry) error {
		batch = append(batch, entry)
		if len(batch) < config.Lexicon.BatchSize {
			return nil
		}
		return flush()
	})
	if err != nil {
		return err
	}

	if err := flush(); err != nil {
		return err
	}

	log.Info().Int("entries", imported).Msg("lexicon import complete")
	return nil
}
