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

// Package lexicon resolves terms to known medications. Entries can be served
// from an in process map or from a shared redis or elasticsearch store.
package lexicon

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/text"
)

// Entry is the value we store per medication.
type Entry struct {
	Name        string            `json:"name"`
	Synonyms    []string          `json:"synonyms,omitempty"`
	Identifiers map[string]string `json:"identifiers,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

/**
Terms returns the lookup keys for an entry: its name and every synonym,
normalized and deduplicated.
**/
func (e Entry) Terms() []string {
	seen := make(map[string]struct{}, len(e.Synonyms)+1)
	terms := make([]string, 0, len(e.Synonyms)+1)
	for _, raw := range append([]string{e.Name}, e.Synonyms...) {
		term := text.NormalizeTerm(raw)
		if term == "" {
			continue
		}
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}
	return terms
}

// Client serves lookups. Implementations normalize the term themselves, so
// callers may pass raw text. A term that is not in the lexicon yields a nil
// entry from Lookup and no key in the LookupBatch result, not an error.
type Client interface {
	Lookup(ctx context.Context, term string) (*Entry, error)
	LookupBatch(ctx context.Context, terms []string) (map[string]*Entry, error)
	Ready(ctx context.Context) bool
}

// Writer ingests entries into a store.
type Writer interface {
	WriteBatch(ctx context.Context, entries []Entry) error
	Ready(ctx context.Context) bool
}

/**
Read parses newline delimited JSON entries. Blank lines and lines starting
with # are skipped.
**/
func Read(r io.Reader, onEntry func(Entry) error) error {
	scn := bufio.NewScanner(r)
	line := 0
	for scn.Scan() {
		line++
		raw := strings.TrimSpace(scn.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}

		var entry Entry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if err := onEntry(entry); err != nil {
			return err
		}
	}
	return scn.Err()
}

// ReadFile reads newline delimited JSON entries from a file.
func ReadFile(path string, onEntry func(Entry) error) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return Read(file, onEntry)
}
