package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/creatorlens/creatorlens-go/internal/model"
)

// CacheService is a Redis layer for parsed report exports, keyed by the
// external report id. Entries carry no TTL: a newer report id supersedes an
// older one implicitly, so stale keys are simply never read again.
type CacheService struct {
	rdb *redis.Client
}

// NewCacheService creates a new CacheService. If redisURL is empty or the
// connection fails, it returns a CacheService with a nil client (cache
// operations become no-ops and every report is re-downloaded).
func NewCacheService(redisURL string) *CacheService {
	if redisURL == "" {
		log.Println("redis: no URL configured, report caching disabled")
		return &CacheService{}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("redis: invalid URL %q, report caching disabled: %v", redisURL, err)
		return &CacheService{}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("redis: connection failed, report caching disabled: %v", err)
		return &CacheService{}
	}

	log.Println("redis: connected, report caching enabled")
	return &CacheService{rdb: rdb}
}

// Client returns the underlying Redis client (for health checks). May be nil.
func (c *CacheService) Client() *redis.Client {
	return c.rdb
}

// GetReport retrieves a cached parse by report id. Returns nil if not cached
// or the cache is disabled.
func (c *CacheService) GetReport(ctx context.Context, reportID string) (*model.ParsedReport, error) {
	if c.rdb == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, reportKey(reportID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var parsed model.ParsedReport
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}

// SetReport stores a parsed report.
func (c *CacheService) SetReport(ctx context.Context, parsed *model.ParsedReport) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(parsed)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, reportKey(parsed.ReportID), b, 0).Err()
}

// Close shuts down the Redis connection.
func (c *CacheService) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func reportKey(reportID string) string {
	return fmt.Sprintf("report:%s", reportID)
}
