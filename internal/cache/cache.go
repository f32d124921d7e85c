// Package cache 渲染结果的页面级缓存。
//
// 命中且未过期时直接返回之前保存的字节，不调用 render，因此在 TTL 内
// 已删除的帖子仍然可见；写操作不会主动失效缓存，只有 InvalidateAll
// 会立即清空。同一个 key 并发未命中时 render 可能被执行多次，后写入者生效。
package cache

import (
	"context"
	"fmt"
	"time"

	"yatube/internal/pkg/logger"

	"go.uber.org/zap"
)

// Store 带 TTL 的键值存储
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Clear(ctx context.Context) error
}

type RenderFunc func(ctx context.Context) ([]byte, error)

type PageCache struct {
	store Store
	ttl   time.Duration
}

func NewPageCache(store Store, ttl time.Duration) *PageCache {
	return &PageCache{store: store, ttl: ttl}
}

// Key 页面标识：feed 类型 + 页码
func Key(kind string, page int) string {
	return fmt.Sprintf("%s:%d", kind, page)
}

// GetOrRender 存储读写失败只记日志，退化为直接渲染
func (c *PageCache) GetOrRender(ctx context.Context, key string, render RenderFunc) ([]byte, error) {
	b, ok, err := c.store.Get(ctx, key)
	if err != nil {
		logger.L.Warn("page cache get failed", zap.String("key", key), zap.Error(err))
	}
	if ok {
		return b, nil
	}

	b, err = render(ctx)
	if err != nil {
		return nil, err
	}
	if err = c.store.Set(ctx, key, b, c.ttl); err != nil {
		logger.L.Warn("page cache set failed", zap.String("key", key), zap.Error(err))
	}
	return b, nil
}

func (c *PageCache) InvalidateAll(ctx context.Context) error {
	return c.store.Clear(ctx)
}
