package repo

import (
	"CloudVault/config"
	"CloudVault/model"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Redis stays nil when REDIS_ENABLED is off; callers must check.
var Redis *redis.Client

var ErrLockBusy = errors.New("lock is busy")

type RedisLock struct {
	rdb   *redis.Client
	key   string
	token string
	ttl   time.Duration
}

// InitRedis initializes Redis client.
// Redis 客户端
func InitRedis() {
	if !config.AppConfig.RedisEnabled {
		log.Println("redis disabled")
		return
	}
	RedisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", config.AppConfig.RedisHost, config.AppConfig.RedisPort),
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})
	_, err := RedisClient.Ping(context.Background()).Result()
	if err != nil {
		log.Fatal("init redis fail", err)
	}
	log.Println("init redis success")
	Redis = RedisClient
}

// EnableKeyspaceNotifications enables Redis keyspace events.
func EnableKeyspaceNotifications(ctx context.Context) error {
	if Redis == nil {
		return errors.New("redis not initialized")
	}
	return Redis.ConfigSet(ctx, "notify-keyspace-events", "Ex").Err()
}

// NewRedisLock creates a Redis lock helper.
func NewRedisLock(rdb *redis.Client, key string, ttl time.Duration) *RedisLock {
	return &RedisLock{
		rdb: rdb,
		key: key,
		ttl: ttl,
	}
}

// TryLock makes a single attempt to take the lock.
func (l *RedisLock) TryLock(ctx context.Context) error {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrLockBusy
	}
	l.token = token
	return nil
}

// Lock retries TryLock until it succeeds or wait elapses.
func (l *RedisLock) Lock(ctx context.Context, wait time.Duration) error {
	deadline := time.Now().Add(wait)
	for {
		err := l.TryLock(ctx)
		if !errors.Is(err, ErrLockBusy) {
			return err
		}
		if time.Now().After(deadline) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}

var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Unlock releases a Redis-based lock.
func (l *RedisLock) Unlock(ctx context.Context) error {
	if l.token == "" {
		return nil
	}
	_, err := unlockScript.Run(
		ctx,
		l.rdb,
		[]string{l.key},
		l.token,
	).Result()
	l.token = ""
	return err
}

// ListenRedisExpired listens for Redis expired events.
func ListenRedisExpired(ctx context.Context, rdb *redis.Client, ready chan<- struct{}) {
	channel := fmt.Sprintf("__keyevent@%d__:expired", rdb.Options().DB)
	pubsub := rdb.Subscribe(ctx, channel)
	_, err := pubsub.Receive(ctx)
	if err != nil {
		log.Printf("redis: subscribe %s failed: %v", channel, err)
		close(ready)
		return
	}
	close(ready)
	defer pubsub.Close()
	ch := pubsub.Channel()

	for msg := range ch {
		handleExpiredKey(ctx, msg.Payload)
	}
}

// handleExpiredKey dispatches expired-key handlers.
func handleExpiredKey(ctx context.Context, key string) {
	switch {
	case strings.HasPrefix(key, "share:"):
		handleShareExpired(ctx, key)
	default:
	}
}

// handleShareExpired marks a legacy share link as expired.
func handleShareExpired(ctx context.Context, key string) {
	shareURL := strings.TrimPrefix(key, "share:")
	if Db == nil {
		return
	}
	err := Db.WithContext(ctx).Model(&model.FileShare{}).
		Where("share_url = ?", shareURL).
		Update("status", model.ShareStatusExpired).Error
	if err != nil {
		log.Printf("redis: mark share %s expired failed: %v", shareURL, err)
		return
	}
	log.Println("share expired:", shareURL)
}
