package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/emrgen/shortpage/internal/compress"
	"github.com/emrgen/shortpage/internal/model"
	redis "github.com/redis/go-redis/v9"
)

const publicIndexKey = "block:index:public"

func blockKey(slug string) string {
	return "block:slug:" + slug
}

var _ BlockCache = (*RedisBlockCache)(nil)

type RedisBlockCache struct {
	client  *redis.Client
	encoder compress.Compress
	ttl     time.Duration
}

func NewRedisBlockCache(client *redis.Client, encoder compress.Compress, ttl time.Duration) *RedisBlockCache {
	return &RedisBlockCache{client: client, encoder: encoder, ttl: ttl}
}

// NewRedisClient connects to redis and verifies the connection.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return client, nil
}

func (r *RedisBlockCache) GetBlock(ctx context.Context, slug string) (*model.Block, error) {
	res := r.client.Get(ctx, blockKey(slug))
	if res.Err() != nil {
		if errors.Is(res.Err(), redis.Nil) {
			return nil, nil
		}
		return nil, res.Err()
	}

	buf, err := res.Bytes()
	if err != nil {
		return nil, err
	}

	data, err := r.encoder.Decode(buf)
	if err != nil {
		return nil, err
	}

	block := &model.Block{}
	if err := json.Unmarshal(data, block); err != nil {
		return nil, err
	}

	return block, nil
}

func (r *RedisBlockCache) SetBlock(ctx context.Context, block *model.Block) error {
	data, err := json.Marshal(block)
	if err != nil {
		return err
	}

	buf, err := r.encoder.Encode(data)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, blockKey(block.Slug), buf, r.ttl).Err()
}

func (r *RedisBlockCache) DeleteBlock(ctx context.Context, slug string) error {
	return r.client.Del(ctx, blockKey(slug)).Err()
}

func (r *RedisBlockCache) SetPublicIndex(ctx context.Context, blocks []*model.Block) error {
	data, err := json.Marshal(blocks)
	if err != nil {
		return err
	}

	buf, err := r.encoder.Encode(data)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, publicIndexKey, buf, r.ttl).Err()
}

func (r *RedisBlockCache) GetPublicIndex(ctx context.Context) ([]*model.Block, error) {
	res := r.client.Get(ctx, publicIndexKey)
	if res.Err() != nil {
		if errors.Is(res.Err(), redis.Nil) {
			return nil, nil
		}
		return nil, res.Err()
	}

	buf, err := res.Bytes()
	if err != nil {
		return nil, err
	}

	data, err := r.encoder.Decode(buf)
	if err != nil {
		return nil, err
	}

	var blocks []*model.Block
	if err := json.Unmarshal(data, &blocks); err != nil {
		return nil, err
	}

	return blocks, nil
}

func (r *RedisBlockCache) DeletePublicIndex(ctx context.Context) error {
	return r.client.Del(ctx, publicIndexKey).Err()
}
