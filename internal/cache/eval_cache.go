package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"promptbattle/internal/model"
)

// EvalCache stores prompt evaluations so repeated identical prompts don't
// burn AI tokens. Best-effort: a miss or a backend failure just means the
// evaluator calls the API again.
type EvalCache interface {
	Get(ctx context.Context, key string) (*model.Evaluation, bool)
	Set(ctx context.Context, key string, eval *model.Evaluation)
}

type evalCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewEvalCache creates a Redis-backed evaluation cache.
func NewEvalCache(client *redis.Client) EvalCache {
	return &evalCache{
		client: client,
		ttl:    3 * time.Minute,
	}
}

func (c *evalCache) key(k string) string {
	return fmt.Sprintf("evalcache:%s", k)
}

func (c *evalCache) Get(ctx context.Context, key string) (*model.Evaluation, bool) {
	data, err := c.client.Get(ctx, c.key(key)).Result()
	if err != nil {
		return nil, false
	}
	var eval model.Evaluation
	if err := json.Unmarshal([]byte(data), &eval); err != nil {
		return nil, false
	}
	return &eval, true
}

func (c *evalCache) Set(ctx context.Context, key string, eval *model.Evaluation) {
	data, err := json.Marshal(eval)
	if err != nil {
		return
	}
	c.client.Set(ctx, c.key(key), data, c.ttl)
}
