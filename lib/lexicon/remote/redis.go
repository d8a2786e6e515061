package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/lexicon"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/text"
)

// Entries share the keyspace with whatever else is in the instance.
const keyPrefix = "lexicon:"

func NewRedisClient(conf RedisConfig) Client {
	return &redisClient{
		Client: redis.NewClient(&redis.Options{
			Addr: fmt.Sprintf("%s:%d", conf.Host, conf.Port)}),
	}
}

type redisClient struct {
	*redis.Client
}

func (r *redisClient) Ready(ctx context.Context) bool {
	return r.Ping(ctx).Err() == nil
}

func (r *redisClient) Lookup(ctx context.Context, term string) (*lexicon.Entry, error) {
	b, err := r.Get(ctx, keyPrefix+text.NormalizeTerm(term)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var entry lexicon.Entry
	if err := json.Unmarshal(b, &entry); err != nil {
		return nil, err
	}

	return &entry, nil
}

func (r *redisClient) LookupBatch(ctx context.Context, terms []string) (map[string]*lexicon.Entry, error) {
	pipe := r.Pipeline()
	cmds := make(map[string]*redis.StringCmd, len(terms))
	for _, term := range terms {
		cmds[term] = pipe.Get(ctx, keyPrefix+text.NormalizeTerm(term))
	}

	_, err := pipe.Exec(ctx)
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	results := make(map[string]*lexicon.Entry, len(terms))
	for term, cmd := range cmds {
		b, err := cmd.Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		} else if err != nil {
			return nil, err
		}

		var entry lexicon.Entry
		if err := json.Unmarshal(b, &entry); err != nil {
			return nil, err
		}

		results[term] = &entry
	}

	return results, nil
}

func (r *redisClient) WriteBatch(ctx context.Context, entries []lexicon.Entry) error {
	pipe := r.Pipeline()
	for _, entry := range entries {
		b, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		for _, term := range entry.Terms() {
			pipe.Set(ctx, keyPrefix+term, b, 0)
		}
	}

	_, err := pipe.Exec(ctx)
	return err
}
