package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/washline/laundry-service/internal/auth"
	"github.com/washline/laundry-service/internal/config"
)

const redisPingTimeout = 2 * time.Second

// Redis wraps the go-redis client used for session revocation.
type Redis struct {
	Client *redis.Client
}

func NewRedis(cfg config.RedisConfig) *Redis {
	return &Redis{Client: redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: redisPingTimeout,
	})}
}

// OpenSessionStore returns a Redis-backed revocation list when Redis answers a
// ping, and a process-local one otherwise. The returned *Redis is always
// non-nil so it can still be reported by readiness checks and closed.
func OpenSessionStore(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (auth.SessionStore, *Redis) {
	r := NewRedis(cfg)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := r.Ping(pingCtx); err != nil {
		logger.Warn("redis unavailable; session revocation is process-local",
			zap.String("addr", cfg.Addr),
			zap.Error(err),
		)
		return auth.NewMemorySessionStore(), r
	}

	logger.Info("connected to redis", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return auth.NewRedisSessionStore(r.Client), r
}

func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping implements the readiness check.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}
