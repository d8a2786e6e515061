package extractor

import (
	"context"
	"sort"

	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/entity"
)

// Combine merges several extractors into one. Clients run concurrently, but
// their results merge in argument order: a span claimed by an earlier client
// is never reported again by a later one.
func Combine(clients ...Client) Client {
	return combined{clients: clients}
}

type combined struct {
	clients []Client
}

func (c combined) Extract(ctx context.Context, text string) ([]entity.Entity, error) {
	results := make([][]entity.Entity, len(c.clients))
	errChan := make(chan error, len(c.clients))
	for i, client := range c.clients {
		go func(i int, client Client) {
			found, err := client.Extract(ctx, text)
			results[i] = found
			errChan <- err
		}(i, client)
	}
	for range c.clients {
		if err := <-errChan; err != nil {
			return nil, err
		}
	}

	entities := []entity.Entity{}
	for _, found := range results {
		for _, e := range found {
			if entity.Overlaps(entities, e.Start, e.End) {
				continue
			}
			entities = append(entities, e)
		}
	}

	sort.SliceStable(entities, func(i, j int) bool {
		return entities[i].Start < entities[j].Start
	})

	return entities, nil
}
