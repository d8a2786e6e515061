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

// Package extractor finds the medical entities in a text that simplification
// must not lose.
package extractor

import (
	"context"

	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/entity"
)

// Client extracts entities from a text. Results are sorted by start offset
// and never overlap. A text without entities yields an empty slice, not an
// error.
type Client interface {
	Extract(ctx context.Context, text string) ([]entity.Entity, error)
}
