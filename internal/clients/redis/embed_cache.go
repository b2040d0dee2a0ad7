package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/gapmap-backend/internal/pkg/logger"
)

// EmbedCache caches embedding vectors keyed by the exact text that was
// embedded. Misses and transport failures are soft: callers always fall
// through to the embedding provider.
type EmbedCache interface {
	Get(ctx context.Context, text string) ([]float32, bool)
	Set(ctx context.Context, text string, vec []float32)
	Close() error
}

type embedCache struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

func NewEmbedCache(log *logger.Logger) (EmbedCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	prefix := strings.TrimSpace(os.Getenv("REDIS_EMBED_CACHE_PREFIX"))
	if prefix == "" {
		prefix = "gm:embed"
	}

	ttl := 7 * 24 * time.Hour
	if v := strings.TrimSpace(os.Getenv("REDIS_EMBED_CACHE_TTL_HOURS")); v != "" {
		var hours int
		if _, err := fmt.Sscanf(v, "%d", &hours); err == nil && hours > 0 {
			ttl = time.Duration(hours) * time.Hour
		}
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    os.Getenv("REDIS_PASSWORD"),
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &embedCache{
		log:    log.With("service", "RedisEmbedCache"),
		rdb:    rdb,
		prefix: prefix,
		ttl:    ttl,
	}, nil
}

func (c *embedCache) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.prefix + ":" + hex.EncodeToString(sum[:])
}

func (c *embedCache) Get(ctx context.Context, text string) ([]float32, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, c.key(text)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Debug("embed cache get failed", "error", err.Error())
		}
		return nil, false
	}
	var vec []float32
	if err := json.Unmarshal(raw, &vec); err != nil || len(vec) == 0 {
		return nil, false
	}
	return vec, true
}

func (c *embedCache) Set(ctx context.Context, text string, vec []float32) {
	if c == nil || c.rdb == nil || len(vec) == 0 {
		return
	}
	raw, err := json.Marshal(vec)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.key(text), raw, c.ttl).Err(); err != nil {
		c.log.Debug("embed cache set failed", "error", err.Error())
	}
}

func (c *embedCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
