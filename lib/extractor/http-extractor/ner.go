// Package http_extractor calls a remote named entity recognition service
// over HTTP and maps its output onto the source text.
package http_extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/entity"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/extractor"
)

func NewClient(url string) extractor.Client {
	return &client{
		url:        url,
		httpClient: http.DefaultClient,
	}
}

type client struct {
	url        string
	httpClient lib.HttpClient
}

type nerResponse struct {
	Entities []nerEntity `json:"entities"`
}

type nerEntity struct {
	Text       string  `json:"text"`
	Type       string  `json:"type"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Confidence float64 `json:"confidence"`
}

func (c *client) Extract(ctx context.Context, text string) ([]entity.Entity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(text))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("ner service returned %v", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var nerResp nerResponse
	if err := json.Unmarshal(body, &nerResp); err != nil {
		return nil, fmt.Errorf("ner service sent invalid json: %w", err)
	}

	return sanitize(text, nerResp.Entities), nil
}

/**
sanitize maps service output onto the source text. A span that does not line
up with its surface form is relocated to the first occurrence of that form in
the text, and dropped if there is none. Unknown categories are dropped,
confidence is clamped to [0, 1] and overlapping spans keep the first arrival.
**/
func sanitize(text string, raw []nerEntity) []entity.Entity {
	entities := []entity.Entity{}
	for _, e := range raw {
		category, err := entity.ParseCategory(e.Type)
		if err != nil {
			continue
		}

		start, end := e.Start, e.End
		if !spanMatches(text, start, end, e.Text) {
			if e.Text == "" {
				continue
			}
			offset := strings.Index(text, e.Text)
			if offset < 0 {
				continue
			}
			start, end = offset, offset+len(e.Text)
		}

		if entity.Overlaps(entities, start, end) {
			continue
		}

		confidence := e.Confidence
		if confidence < 0 {
			confidence = 0
		} else if confidence > 1 {
			confidence = 1
		}

		entities = append(entities, entity.Entity{
			Text:       text[start:end],
			Category:   category,
			Start:      start,
			End:        end,
			Confidence: confidence,
		})
	}

	sort.SliceStable(entities, func(i, j int) bool {
		return entities[i].Start < entities[j].Start
	})

	return entities
}

func spanMatches(text string, start, end int, surface string) bool {
	return start >= 0 && start < end && end <= len(text) && text[start:end] == surface
}
