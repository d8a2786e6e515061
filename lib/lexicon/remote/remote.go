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

package remote

import (
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/lexicon"
)

// Backend names a remote lexicon store type.
type Backend string

const (
	RedisBackend         Backend = "redis"
	ElasticsearchBackend Backend = "elasticsearch"
)

// Client is a remote lexicon store that both serves and ingests entries.
type Client interface {
	lexicon.Client
	lexicon.Writer
}

type RedisConfig struct {
	Host string
	Port int
}

type ElasticsearchConfig struct {
	Host  string
	Port  int
	Index string
}
