// Package cache implementa el modelo de lectura cacheado del feed de actividad sobre Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
	"github.com/jhoicas/warehouse-ledger/internal/application/ports"
)

var _ ports.ActivityCache = (*RedisActivityCache)(nil)

const (
	defaultKeyPrefix = "ledger:activity:"
	versionKey       = "version"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RedisActivityCache guarda páginas del feed bajo claves versionadas.
// Invalidate incrementa la versión: las páginas anteriores dejan de leerse y expiran por TTL.
type RedisActivityCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisActivityCache construye la caché. prefix vacío usa el prefijo por defecto.
func NewRedisActivityCache(client *redis.Client, prefix string, ttl time.Duration) *RedisActivityCache {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisActivityCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisActivityCache) version(ctx context.Context) (int64, error) {
	v, err := c.client.Get(ctx, c.prefix+versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (c *RedisActivityCache) pageKey(version int64, limit, offset int) string {
	return fmt.Sprintf("%sv%d:%d:%d", c.prefix, version, limit, offset)
}

// Get devuelve la página si existe en la versión vigente, junto con esa versión.
func (c *RedisActivityCache) Get(ctx context.Context, limit, offset int) ([]dto.ActivityDTO, int64, bool, error) {
	ver, err := c.version(ctx)
	if err != nil {
		return nil, 0, false, fmt.Errorf("leer versión de caché: %w", err)
	}
	raw, err := c.client.Get(ctx, c.pageKey(ver, limit, offset)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ver, false, nil
	}
	if err != nil {
		return nil, ver, false, fmt.Errorf("leer página de caché: %w", err)
	}
	var items []dto.ActivityDTO
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, ver, false, fmt.Errorf("decodificar página de caché: %w", err)
	}
	return items, ver, true, nil
}

// Set guarda la página bajo la versión que devolvió Get. Si hubo un Invalidate entre
// medio, la página queda bajo una versión ya superada y nadie la vuelve a leer.
func (c *RedisActivityCache) Set(ctx context.Context, version int64, limit, offset int, items []dto.ActivityDTO) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("codificar página de caché: %w", err)
	}
	return c.client.Set(ctx, c.pageKey(version, limit, offset), raw, c.ttl).Err()
}

// Invalidate descarta todas las páginas.
func (c *RedisActivityCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, c.prefix+versionKey).Err()
}
