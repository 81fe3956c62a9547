package utils

import (
	"context"
	"log"
	"time"

	"homeease/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient backs the availability slot cache.
	CacheClient *redis.Client
	// LockClient holds the per-provider booking locks.
	LockClient *redis.Client
)

func newRedisClient(db int, name string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", name, err)
	}
	return client
}

// InitCache initializes the generic Redis cache client.
func InitCache() {
	CacheClient = newRedisClient(config.AppConfig.RedisCacheDB, "Cache")
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}

// InitLockStore initializes the Redis client used for booking locks.
func InitLockStore() {
	LockClient = newRedisClient(config.AppConfig.RedisLockDB, "Lock")
}

// GetLockClient returns the booking lock client.
func GetLockClient() *redis.Client {
	if LockClient == nil {
		InitLockStore()
	}
	return LockClient
}
