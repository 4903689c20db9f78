package services

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"ns2po_server/config"
	"ns2po_server/structs"
	"ns2po_server/structs/tables"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/redis/go-redis/v9"
)

var (
	redisClient *redis.Client
	redisOnce   sync.Once
	redisCtx    = context.Background()
)

// CacheService provides Redis caching functionality with connection pooling and retry logic
type CacheService struct {
	logger *gecho.Logger
	config *structs.Config
	client *redis.Client
}

func NewCacheService(logger *gecho.Logger, cfg *structs.Config) *CacheService {
	return &CacheService{
		logger: logger,
		config: cfg,
		client: getRedisClient(),
	}
}

// getRedisClient returns a singleton Redis client with proper connection pooling
func getRedisClient() *redis.Client {
	redisOnce.Do(func() {
		cfg := config.GetConfig()
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Address,
			Username: cfg.Cache.Username,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,

			// Connection pool settings
			PoolSize:        cfg.Cache.PoolSize,
			MinIdleConns:    cfg.Cache.MinIdleConns,
			MaxIdleConns:    cfg.Cache.MaxIdleConns,
			PoolTimeout:     cfg.Cache.PoolTimeout,
			ConnMaxIdleTime: cfg.Cache.IdleTimeout,

			// Timeouts
			DialTimeout:  cfg.Cache.DialTimeout,
			ReadTimeout:  cfg.Cache.ReadTimeout,
			WriteTimeout: cfg.Cache.WriteTimeout,

			// Retry settings
			MaxRetries:      cfg.Cache.MaxRetries,
			MinRetryBackoff: cfg.Cache.MinRetryBackoff,
			MaxRetryBackoff: cfg.Cache.MaxRetryBackoff,
		})
	})
	return redisClient
}

// Close closes the Redis connection pool
func (cs *CacheService) Close() error {
	if redisClient != nil {
		return redisClient.Close()
	}
	return nil
}

// withRetry executes a Redis operation with exponential backoff retry logic
func (cs *CacheService) withRetry(operation func() error, maxRetries int) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		lastErr = err

		// Don't retry on the last attempt
		if attempt == maxRetries {
			break
		}

		// Only retry on network/connection errors, not on logical errors like key not found
		if !isRetryableRedisError(err) {
			return err
		}

		maxBackoff := 2000 // max 2000ms = 2s
		base := 100        // 100ms base

		backoff := base * (1 << attempt) // exponential
		backoff = min(backoff, maxBackoff)

		// add jitter ±50%
		jitterBytes := make([]byte, 4)
		_, err = rand.Read(jitterBytes)
		if err != nil {
			// fallback to no jitter if random fails
			time.Sleep(time.Duration(backoff) * time.Millisecond)
			continue
		}
		jitter := int(uint32(jitterBytes[0])<<24 | uint32(jitterBytes[1])<<16 | uint32(jitterBytes[2])<<8 | uint32(jitterBytes[3]))

		jitter = jitter % (backoff/2 + 1)
		backoffWithJitter := backoff/2 + jitter

		time.Sleep(time.Duration(backoffWithJitter) * time.Millisecond)
	}

	return fmt.Errorf("redis operation failed after %d retries: %w", maxRetries, lastErr)
}

// isRetryableRedisError determines if an error is worth retrying
func isRetryableRedisError(err error) bool {
	if err == nil {
		return false
	}

	// Don't retry on nil results (key not found)
	if err == redis.Nil {
		return false
	}

	// Retry on network/connection errors
	errStr := err.Error()
	retryableErrors := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"broken pipe",
		"no such host",
		"network is unreachable",
	}

	for _, retryableErr := range retryableErrors {
		if strings.Contains(errStr, retryableErr) {
			return true
		}
	}

	return false
}

// Set sets a key with TTL and automatic retry logic
func (cs *CacheService) Set(key string, value any, ttl time.Duration) error {
	return cs.withRetry(func() error {
		return cs.client.Set(redisCtx, key, value, ttl).Err()
	}, 3)
}

// Get retrieves a key with automatic retry logic
func (cs *CacheService) Get(key string) (string, error) {
	var result string

	err := cs.withRetry(func() error {
		val, err := cs.client.Get(redisCtx, key).Result()
		if err == redis.Nil {
			result = ""
			return nil // Don't retry on key not found
		}
		if err != nil {
			return err
		}
		result = val
		return nil
	}, 3)

	if err != nil {
		return "", err
	}

	return result, nil
}

// Delete removes a key with automatic retry logic
func (cs *CacheService) Delete(key string) error {
	return cs.withRetry(func() error {
		return cs.client.Del(redisCtx, key).Err()
	}, 3)
}

// Exists checks if a key exists with automatic retry logic
func (cs *CacheService) Exists(key string) (bool, error) {
	var result bool

	err := cs.withRetry(func() error {
		count, err := cs.client.Exists(redisCtx, key).Result()
		if err != nil {
			return err
		}
		result = count > 0
		return nil
	}, 3)

	return result, err
}

// SetRateLimit sets a rate limit counter for an IP/endpoint combination
func (cs *CacheService) SetRateLimit(ip, endpoint string, count int, ttl time.Duration) error {
	key := fmt.Sprintf("ratelimit:%s:%s", ip, endpoint)
	return cs.Set(key, count, ttl)
}

// GetRateLimit retrieves the current rate limit count for an IP/endpoint
func (cs *CacheService) GetRateLimit(ip, endpoint string) (int, error) {
	key := fmt.Sprintf("ratelimit:%s:%s", ip, endpoint)
	val, err := cs.Get(key)
	if err != nil {
		return 0, err
	}

	if val == "" {
		return 0, nil
	}

	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid rate limit value: %w", err)
	}

	return count, nil
}

// IncrementRateLimit atomically increments a rate limit counter
func (cs *CacheService) IncrementRateLimit(ip, endpoint string, ttl time.Duration) (int, error) {
	key := fmt.Sprintf("ratelimit:%s:%s", ip, endpoint)

	var result int64
	err := cs.withRetry(func() error {
		val, err := cs.client.Incr(redisCtx, key).Result()
		if err != nil {
			return err
		}
		result = val

		// Set expiration only on first increment
		if val == 1 {
			return cs.client.Expire(redisCtx, key, ttl).Err()
		}

		return nil
	}, 3)

	return int(result), err
}

// Ping tests the Redis connection
func (cs *CacheService) Ping() error {
	return cs.withRetry(func() error {
		return cs.client.Ping(redisCtx).Err()
	}, 3)
}

// GetConnectionStats returns Redis connection pool statistics
func (cs *CacheService) GetConnectionStats() map[string]any {
	stats := cs.client.PoolStats()

	return map[string]any{
		"hits":        stats.Hits,
		"misses":      stats.Misses,
		"timeouts":    stats.Timeouts,
		"total_conns": stats.TotalConns,
		"idle_conns":  stats.IdleConns,
		"stale_conns": stats.StaleConns,
	}
}

// ============================================================================
// Bundle Caching Methods
// ============================================================================

// GetBundleList retrieves a cached bundle list page keyed on the filter hash.
func (cs *CacheService) GetBundleList(filterKey string) ([]tables.CampaignBundle, error) {
	key := fmt.Sprintf("bundles:list:%s", filterKey)

	bundles, err := getJSON[[]tables.CampaignBundle](cs, key)
	if err != nil {
		cs.logger.Warn("Failed to get bundle list from cache", "error", err, "key", key)
		return nil, err
	}

	if bundles == nil {
		return nil, nil
	}

	return *bundles, nil
}

// SetBundleList caches a bundle list page
func (cs *CacheService) SetBundleList(filterKey string, bundles []tables.CampaignBundle) error {
	key := fmt.Sprintf("bundles:list:%s", filterKey)
	return setJSON(cs, key, bundles, cs.getBundleListTTL())
}

// GetBundleByID retrieves a cached bundle by ID
func (cs *CacheService) GetBundleByID(id string) (*tables.CampaignBundle, error) {
	key := fmt.Sprintf("bundle:id:%s", id)

	bundle, err := getJSON[tables.CampaignBundle](cs, key)
	if err != nil {
		cs.logger.Warn("Failed to get bundle from cache", "error", err, "id", id)
		return nil, err
	}

	return bundle, nil
}

// SetBundleByID caches a bundle by ID
func (cs *CacheService) SetBundleByID(bundle *tables.CampaignBundle) error {
	key := fmt.Sprintf("bundle:id:%s", bundle.ID)
	return setJSON(cs, key, bundle, cs.getBundleItemTTL())
}

// GetActiveProductsList retrieves the cached catalog product list
func (cs *CacheService) GetActiveProductsList(filterKey string) ([]tables.Product, error) {
	key := fmt.Sprintf("products:active:%s", filterKey)

	products, err := getJSON[[]tables.Product](cs, key)
	if err != nil {
		cs.logger.Warn("Failed to get active products from cache", "error", err, "key", key)
		return nil, err
	}

	if products == nil {
		return nil, nil
	}

	return *products, nil
}

// SetActiveProductsList caches the catalog product list
func (cs *CacheService) SetActiveProductsList(filterKey string, products []tables.Product) error {
	key := fmt.Sprintf("products:active:%s", filterKey)
	return setJSON(cs, key, products, cs.getProductListTTL())
}

// ============================================================================
// Cache Invalidation Methods
// ============================================================================

// InvalidateBundleCaches removes the bundle's item cache and every list page.
// List pages are filter-keyed, so they go through a pattern delete.
func (cs *CacheService) InvalidateBundleCaches(bundleID string) error {
	cs.logger.Info("Invalidating bundle caches", "bundle_id", bundleID)

	if err := cs.Delete(fmt.Sprintf("bundle:id:%s", bundleID)); err != nil {
		cs.logger.Warn("Failed to delete bundle item cache", "bundle_id", bundleID, "error", err)
	}

	if err := cs.DeletePattern("bundles:list:*"); err != nil {
		cs.logger.Warn("Failed to delete bundle list caches", "error", err)
		return err
	}

	return nil
}

// InvalidateProductCaches removes all catalog product caches
func (cs *CacheService) InvalidateProductCaches() error {
	return cs.DeletePattern("products:*")
}

// InvalidateAssetCaches removes the cached entries tied to one asset.
func (cs *CacheService) InvalidateAssetCaches(assetID string) error {
	if err := cs.Delete(fmt.Sprintf("asset:id:%s", assetID)); err != nil {
		return err
	}
	return cs.DeletePattern("assets:list:*")
}

// InvalidateAllCaches removes every domain cache. Used by the admin
// invalidation endpoint and after a full resync.
func (cs *CacheService) InvalidateAllCaches() error {
	cs.logger.Warn("Invalidating ALL domain caches")

	patterns := []string{
		"bundle:*",
		"bundles:*",
		"product:*",
		"products:*",
		"asset:*",
		"assets:*",
	}

	for _, pattern := range patterns {
		if err := cs.DeletePattern(pattern); err != nil {
			cs.logger.Error("Failed to delete cache pattern", "pattern", pattern, "error", err)
			return err
		}
	}

	cs.logger.Info("All domain caches invalidated successfully")
	return nil
}

// DeletePattern removes all keys matching a pattern using SCAN
func (cs *CacheService) DeletePattern(pattern string) error {
	return cs.withRetry(func() error {
		var cursor uint64

		for {
			keys, nextCursor, err := cs.client.Scan(redisCtx, cursor, pattern, 100).Result()
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}

			if len(keys) > 0 {
				if err := cs.client.Del(redisCtx, keys...).Err(); err != nil {
					return fmt.Errorf("delete failed: %w", err)
				}
			}

			cursor = nextCursor
			if cursor == 0 {
				break
			}
		}

		return nil
	}, 3)
}

func (cs *CacheService) ClearAll() error {
	return cs.withRetry(func() error {
		return cs.client.FlushDB(redisCtx).Err()
	}, 3)
}

// ============================================================================
// Helper Methods
// ============================================================================

func (cs *CacheService) getBundleListTTL() time.Duration {
	if cs.config.Cache.BundleListTTL > 0 {
		return cs.config.Cache.BundleListTTL
	}
	return 5 * time.Minute // fallback default
}

func (cs *CacheService) getBundleItemTTL() time.Duration {
	if cs.config.Cache.BundleItemTTL > 0 {
		return cs.config.Cache.BundleItemTTL
	}
	return 10 * time.Minute // fallback default
}

func (cs *CacheService) getProductListTTL() time.Duration {
	if cs.config.Cache.ProductListTTL > 0 {
		return cs.config.Cache.ProductListTTL
	}
	return 5 * time.Minute // fallback default
}

func setJSON[T any](cs *CacheService, key string, value T, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return cs.Set(key, data, ttl)
}

func getJSON[T any](cs *CacheService, key string) (*T, error) {
	val, err := cs.Get(key)
	if err != nil {
		return nil, err
	}

	if val == "" {
		return nil, nil // not found in cache
	}

	var result T
	err = json.Unmarshal([]byte(val), &result)
	if err != nil {
		return nil, err
	}

	return &result, nil
}
