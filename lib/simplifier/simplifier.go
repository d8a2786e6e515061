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

// Package simplifier rewrites clinical text in plain language. All backends
// satisfy the same Client contract. A failed call is reported through the
// Outcome rather than an error return, so callers always get the prompt and
// model that were used.
package simplifier

import (
	"context"

	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/entity"
)

// Completion settings shared by the hosted backends. Low temperature keeps
// dosage wording stable between runs.
const (
	maxCompletionTokens = 500
	modelTemperature    = 0.3
)

// Request carries one text to simplify. Entities are the medical entities
// found in Text and constrain what the backend may drop. Instruction holds an
// extra constraint appended to the prompt, normally set on verification
// retries.
type Request struct {
	Text        string
	Entities    []entity.Entity
	Instruction string
}

// Outcome is what a backend produced for one Request. When Success is false
// SimplifiedText is empty and ErrorMessage says what went wrong.
type Outcome struct {
	SimplifiedText string `json:"simplified_text"`
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	Success        bool   `json:"success"`
	ErrorMessage   string `json:"error_message,omitempty"`
}

// Client is a simplification backend.
type Client interface {
	Simplify(ctx context.Context, req Request) Outcome
}
