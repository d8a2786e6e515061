package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v7"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/lexicon"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/text"
)

const defaultIndex = "lexicon"

type esResponse struct {
	Responses []struct {
		Hits struct {
			Hits []struct {
				Source lexicon.Entry `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	} `json:"responses"`
}

func NewElasticsearchClient(conf ElasticsearchConfig) (Client, error) {
	c, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{fmt.Sprintf("http://%s:%d", conf.Host, conf.Port)},
	})
	if err != nil {
		return nil, err
	}

	index := conf.Index
	if index == "" {
		index = defaultIndex
	}

	return &esClient{
		Client: c,
		index:  index,
	}, nil
}

type esClient struct {
	*elasticsearch.Client
	index string
}

func (e *esClient) Ready(ctx context.Context) bool {
	res, err := e.Info(e.Info.WithContext(ctx))
	if err != nil {
		return false
	}
	defer res.Body.Close()

	return res.StatusCode == 200
}

func (e *esClient) Lookup(ctx context.Context, term string) (*lexicon.Entry, error) {
	results, err := e.LookupBatch(ctx, []string{term})
	if err != nil {
		return nil, err
	}
	return results[term], nil
}

func (e *esClient) LookupBatch(ctx context.Context, terms []string) (map[string]*lexicon.Entry, error) {
	if len(terms) == 0 {
		return map[string]*lexicon.Entry{}, nil
	}

	var buf bytes.Buffer
	for _, term := range terms {
		buf.WriteString("{}\n")
		buf.WriteString(fmt.Sprintf(
			`{"size": 1, "query": {"multi_match": {"query": "%s", "type": "phrase", "fields": ["name", "synonyms"]}}}%s`,
			jsonEscape(text.NormalizeTerm(term)), "\n"))
	}

	res, err := e.Msearch(&buf, e.Msearch.WithContext(ctx), e.Msearch.WithIndex(e.index))
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != 200 {
		return nil, errors.New(res.String())
	}

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	var response esResponse
	if err := json.Unmarshal(b, &response); err != nil {
		return nil, err
	}

	// Msearch responses come back in request order.
	results := make(map[string]*lexicon.Entry, len(terms))
	for i, r := range response.Responses {
		if i >= len(terms) || len(r.Hits.Hits) == 0 {
			continue
		}
		entry := r.Hits.Hits[0].Source
		results[terms[i]] = &entry
	}

	return results, nil
}

func (e *esClient) WriteBatch(ctx context.Context, entries []lexicon.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, entry := range entries {
		b, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		buf.WriteString(`{"index":{}}` + "\n")
		buf.Write(b)
		buf.WriteString("\n")
	}

	res, err := e.Bulk(&buf, e.Bulk.WithContext(ctx), e.Bulk.WithIndex(e.index))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != 200 {
		return errors.New(res.String())
	}

	return nil
}

func jsonEscape(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		panic(err)
	}
	quoted := string(b)
	return quoted[1 : len(quoted)-1]
}
