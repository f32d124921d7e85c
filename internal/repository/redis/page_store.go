package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	PageKeyPrefix = "page:"
	scanBatch     = 200
)

// PageStore 渲染结果的 Redis 存储，所有键带 PageKeyPrefix 前缀
type PageStore struct {
	RDB *redis.Client
}

func (s *PageStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.RDB.Get(ctx, PageKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *PageStore) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return s.RDB.Set(ctx, PageKeyPrefix+key, val, ttl).Err()
}

// Clear 用 SCAN 分批删除全部页面缓存，避免 KEYS 阻塞
func (s *PageStore) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := s.RDB.Scan(ctx, cursor, PageKeyPrefix+"*", scanBatch).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err = s.RDB.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
