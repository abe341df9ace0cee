package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/abgdnv/stockroom/internal/inventory"
	"github.com/redis/go-redis/v9"
)

// RedisGateway stores the encoded item sequence under a single key.
// SET replaces the whole value at once.
type RedisGateway struct {
	client *redis.Client
	key    string
	codec  Codec
}

var _ Gateway = (*RedisGateway)(nil)

func NewRedisGateway(client *redis.Client, key string, codec Codec) *RedisGateway {
	return &RedisGateway{
		client: client,
		key:    key,
		codec:  codec,
	}
}

func (r *RedisGateway) Save(ctx context.Context, items []inventory.Item) error {
	data, err := r.codec.Encode(items)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store key %s: %w", r.key, err)
	}
	return nil
}

func (r *RedisGateway) Load(ctx context.Context) ([]inventory.Item, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []inventory.Item{}, nil
		}
		return nil, fmt.Errorf("failed to read key %s: %w", r.key, err)
	}
	items, err := r.codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode key %s: %w", r.key, err)
	}
	return items, nil
}
