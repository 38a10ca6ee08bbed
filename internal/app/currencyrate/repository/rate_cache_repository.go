package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"currencyrate-service/internal/app/currencyrate/entity"
	"currencyrate-service/pkg/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// rateCacheRepository реализует RateCacheRepository поверх Redis.
// Значения сериализуются в JSON и живут до истечения TTL
type rateCacheRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRateCacheRepository создает кэш курсов и цен с заданным TTL
func NewRateCacheRepository(client *redis.Client, ttl time.Duration) RateCacheRepository {
	return &rateCacheRepository{client: client, ttl: ttl}
}

func (r *rateCacheRepository) GetRates(ctx context.Context, baseIso, providerCode string) (map[string]float64, error) {
	key := entity.RatesCacheKey(baseIso, providerCode)

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordCacheMiss(serviceName, "rates")
			return nil, nil
		}
		metrics.RecordRedisError(serviceName, metrics.RedisOpGet)
		return nil, fmt.Errorf("failed to get rates from cache: %w", err)
	}

	var rates map[string]float64
	if err := json.Unmarshal(data, &rates); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached rates: %w", err)
	}

	metrics.RecordCacheHit(serviceName, "rates")
	return rates, nil
}

func (r *rateCacheRepository) SetRates(ctx context.Context, baseIso, providerCode string, rates map[string]float64) error {
	key := entity.RatesCacheKey(baseIso, providerCode)

	data, err := json.Marshal(rates)
	if err != nil {
		return fmt.Errorf("failed to marshal rates: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpSet)
		return fmt.Errorf("failed to set rates in cache: %w", err)
	}

	return nil
}

func (r *rateCacheRepository) DeleteRates(ctx context.Context, baseIso, providerCode string) error {
	key := entity.RatesCacheKey(baseIso, providerCode)

	if err := r.client.Del(ctx, key).Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpDel)
		return fmt.Errorf("failed to delete rates from cache: %w", err)
	}

	return nil
}

func (r *rateCacheRepository) GetProductPrices(ctx context.Context, productID uuid.UUID, baseIso, providerCode string) ([]entity.CurrencyPrice, error) {
	key := entity.PricesCacheKey(productID, baseIso, providerCode)

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordCacheMiss(serviceName, "prices")
			return nil, nil
		}
		metrics.RecordRedisError(serviceName, metrics.RedisOpGet)
		return nil, fmt.Errorf("failed to get product prices from cache: %w", err)
	}

	var prices []entity.CurrencyPrice
	if err := json.Unmarshal(data, &prices); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached prices: %w", err)
	}

	metrics.RecordCacheHit(serviceName, "prices")
	return prices, nil
}

func (r *rateCacheRepository) SetProductPrices(ctx context.Context, productID uuid.UUID, baseIso, providerCode string, prices []entity.CurrencyPrice) error {
	key := entity.PricesCacheKey(productID, baseIso, providerCode)

	data, err := json.Marshal(prices)
	if err != nil {
		return fmt.Errorf("failed to marshal prices: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpSet)
		return fmt.Errorf("failed to set product prices in cache: %w", err)
	}

	return nil
}

func (r *rateCacheRepository) DeleteProductPrices(ctx context.Context, productID uuid.UUID, baseIso, providerCode string) error {
	key := entity.PricesCacheKey(productID, baseIso, providerCode)

	if err := r.client.Del(ctx, key).Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpDel)
		return fmt.Errorf("failed to delete product prices from cache: %w", err)
	}

	return nil
}
