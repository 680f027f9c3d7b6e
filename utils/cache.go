package utils

import (
	"CloudVault/internal/repo"
	"CloudVault/model"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by caches without a backing store.
var ErrCacheMiss = errors.New("cache miss")

type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a Redis cache client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client: client,
	}
}

// Get reads a cached value.
func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(val), dest)
}

// Set writes a cached value.
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, string(data), expiration).Err()
}

// Delete removes a cache entry.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// noopCache is used when Redis is disabled. Every read misses.
type noopCache struct{}

func (noopCache) Get(context.Context, string, interface{}) error { return ErrCacheMiss }

func (noopCache) Set(context.Context, string, interface{}, time.Duration) error { return nil }

func (noopCache) Delete(context.Context, string) error { return nil }

type CacheManager struct {
	cache Cache
}

var globalCacheManager *CacheManager
var cacheManagerOnce sync.Once

// InitCacheManager initializes the cache manager.
func InitCacheManager() {
	cacheManagerOnce.Do(func() { // 单一用例模式
		var cache Cache = noopCache{}
		if repo.Redis != nil {
			cache = NewRedisCache(repo.Redis)
		}
		globalCacheManager = &CacheManager{
			cache: cache,
		}
	})
}

// GetCacheManager returns the cache manager.
func GetCacheManager() *CacheManager {
	if globalCacheManager == nil {
		InitCacheManager()
	}
	return globalCacheManager
}

// BuildCacheKey builds a cache key.
func BuildCacheKey(prefix string, params ...interface{}) string {
	key := prefix
	for _, param := range params {
		key += fmt.Sprintf(":%v", param)
	}
	return key
}

const (
	CacheKeyUserFolderList   = "user:folder:list"
	CacheKeyPublicShareToken = "public_share:token"
)

// GetFolderListFromCache reads a user's cached folder list.
func GetFolderListFromCache(ctx context.Context, userID uint64) ([]model.Folder, bool) {
	manager := GetCacheManager()
	key := BuildCacheKey(CacheKeyUserFolderList, userID)

	var result []model.Folder
	if err := manager.cache.Get(ctx, key, &result); err != nil {
		return nil, false
	}
	return result, true
}

// SetFolderListToCache writes a user's folder list.
func SetFolderListToCache(ctx context.Context, userID uint64, folders []model.Folder, expiration time.Duration) error {
	manager := GetCacheManager()
	key := BuildCacheKey(CacheKeyUserFolderList, userID)
	return manager.cache.Set(ctx, key, folders, expiration)
}

// InvalidateFolderListCache clears a user's cached folder list.
func InvalidateFolderListCache(ctx context.Context, userID uint64) error {
	manager := GetCacheManager()
	key := BuildCacheKey(CacheKeyUserFolderList, userID)
	return manager.cache.Delete(ctx, key)
}

// GetShareIDByToken reads the cached share id for a public token.
func GetShareIDByToken(ctx context.Context, token string) (uint64, bool) {
	manager := GetCacheManager()
	key := BuildCacheKey(CacheKeyPublicShareToken, token)

	var result uint64
	if err := manager.cache.Get(ctx, key, &result); err != nil {
		return 0, false
	}
	if result == 0 {
		return 0, false
	}
	return result, true
}

// SetShareIDByToken caches the share id for a public token.
func SetShareIDByToken(ctx context.Context, token string, shareID uint64, expiration time.Duration) error {
	manager := GetCacheManager()
	key := BuildCacheKey(CacheKeyPublicShareToken, token)
	return manager.cache.Set(ctx, key, shareID, expiration)
}

// InvalidateShareToken drops the cached mapping for a public token.
func InvalidateShareToken(ctx context.Context, token string) error {
	manager := GetCacheManager()
	key := BuildCacheKey(CacheKeyPublicShareToken, token)
	return manager.cache.Delete(ctx, key)
}
