package providerRepo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"homeease/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const slotCachePrefix = "availability:slots:"

// CachedProviderRepo serves availability slots from Redis and falls through to
// the wrapped repository on a miss. Cache failures never fail a read.
type CachedProviderRepo struct {
	ProviderRepository
	cache  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedProviderRepo(inner ProviderRepository, cache *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedProviderRepo {
	return &CachedProviderRepo{ProviderRepository: inner, cache: cache, ttl: ttl, logger: logger}
}

func (r *CachedProviderRepo) GetAvailabilitySlots(ctx context.Context, providerID string) ([]models.AvailabilitySlot, error) {
	key := slotCachePrefix + providerID

	raw, err := r.cache.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var slots []models.AvailabilitySlot
		if jerr := json.Unmarshal(raw, &slots); jerr == nil {
			return slots, nil
		}
		r.logger.Warn("discarding unreadable slot cache entry", zap.String("providerId", providerID))
	case !errors.Is(err, redis.Nil):
		r.logger.Warn("slot cache read failed", zap.String("providerId", providerID), zap.Error(err))
	}

	slots, err := r.ProviderRepository.GetAvailabilitySlots(ctx, providerID)
	if err != nil {
		return nil, err
	}

	if payload, jerr := json.Marshal(slots); jerr == nil {
		if serr := r.cache.Set(ctx, key, payload, r.ttl).Err(); serr != nil {
			r.logger.Warn("slot cache write failed", zap.String("providerId", providerID), zap.Error(serr))
		}
	}
	return slots, nil
}

// InvalidateSlots drops the cached slots of a provider after its schedule changed.
func (r *CachedProviderRepo) InvalidateSlots(ctx context.Context, providerID string) error {
	return r.cache.Del(ctx, slotCachePrefix+providerID).Err()
}
