package local

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/lexicon"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/text"
)

// New returns an in process lexicon over the given entries. When two entries
// share a synonym the first one keeps it.
func New(entries ...lexicon.Entry) lexicon.Client {
	client := &local{
		store: make(map[string]*lexicon.Entry),
		mut:   &sync.RWMutex{},
	}
	for _, entry := range entries {
		client.add(entry)
	}
	return client
}

// Load builds an in process lexicon from a newline delimited JSON file.
func Load(path string) (lexicon.Client, error) {
	client := &local{
		store: make(map[string]*lexicon.Entry),
		mut:   &sync.RWMutex{},
	}
	if err := lexicon.ReadFile(path, func(entry lexicon.Entry) error {
		client.add(entry)
		return nil
	}); err != nil {
		return nil, err
	}

	log.Info().Msg(fmt.Sprintf("lexicon loaded from %v", path))

	return client, nil
}

type local struct {
	store map[string]*lexicon.Entry
	mut   *sync.RWMutex
}

func (l *local) add(entry lexicon.Entry) {
	l.mut.Lock()
	defer l.mut.Unlock()

	stored := entry
	for _, term := range entry.Terms() {
		if _, ok := l.store[term]; !ok {
			l.store[term] = &stored
		}
	}
}

func (l *local) Lookup(_ context.Context, term string) (*lexicon.Entry, error) {
	l.mut.RLock()
	defer l.mut.RUnlock()

	entry, ok := l.store[text.NormalizeTerm(term)]
	if !ok {
		return nil, nil
	}

	return entry, nil
}

func (l *local) LookupBatch(ctx context.Context, terms []string) (map[string]*lexicon.Entry, error) {
	results := make(map[string]*lexicon.Entry, len(terms))
	for _, term := range terms {
		entry, err := l.Lookup(ctx, term)
		if err != nil {
			return nil, err
		}
		if entry != nil {
			results[term] = entry
		}
	}
	return results, nil
}

func (l *local) Ready(_ context.Context) bool {
	return true
}
