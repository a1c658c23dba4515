package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"recoInsight/business/insight"

	"github.com/redis/go-redis/v9"
)

type DirectiveRepository struct {
	client *redis.Client
	prefix string
}

var _ insight.DirectiveCache = (*DirectiveRepository)(nil)

func NewDirectiveRepository(client *redis.Client, appName string) *DirectiveRepository {
	return &DirectiveRepository{
		client: client,
		prefix: appName,
	}
}

func (r *DirectiveRepository) key(k string) string {
	// key format: "{app}:{directive:v{version}:b{build}:r{revision}:item:{id}:k{k}}"
	return fmt.Sprintf("%s:%s", r.prefix, k)
}

func (r *DirectiveRepository) Set(ctx context.Context, key string, res insight.StrategyResult, ttl time.Duration) error {
	jsonData, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal strategy result: %w", err)
	}

	if err := r.client.Set(ctx, r.key(key), jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store directive in Redis: %w", err)
	}

	return nil
}

// Get returns false without an error when the key is absent or expired.
func (r *DirectiveRepository) Get(ctx context.Context, key string) (insight.StrategyResult, bool, error) {
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return insight.StrategyResult{}, false, nil
		}
		return insight.StrategyResult{}, false, fmt.Errorf("failed to get directive from Redis: %w", err)
	}

	var res insight.StrategyResult
	if err := json.Unmarshal(val, &res); err != nil {
		return insight.StrategyResult{}, false, fmt.Errorf("failed to unmarshal strategy result: %w", err)
	}

	return res, true, nil
}
