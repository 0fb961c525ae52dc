package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// MagicLinkLimiter caps magic-link requests per email in a fixed window.
// A nil Redis client disables limiting.
type MagicLinkLimiter struct {
	redis  *redis.Client
	max    int64
	window time.Duration
}

func NewMagicLinkLimiter(client *redis.Client, max int, window time.Duration) *MagicLinkLimiter {
	return &MagicLinkLimiter{redis: client, max: int64(max), window: window}
}

// Key never contains the raw address.
func (l *MagicLinkLimiter) Key(email string) string {
	sum := sha256.Sum256([]byte(email))
	return fmt.Sprintf("magiclink:ratelimit:%s", hex.EncodeToString(sum[:]))
}

func (l *MagicLinkLimiter) Allow(ctx context.Context, email string) error {
	if l == nil || l.redis == nil || l.max <= 0 {
		return nil
	}

	key := l.Key(email)

	// SET NX EX and INCR run in one MULTI so the window always carries a TTL.
	var incr *redis.IntCmd
	_, err := l.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, key, 0, l.window)
		incr = pipe.Incr(ctx, key)
		return nil
	})
	if err != nil {
		// Redis is an optional dependency; an outage must not block sign-in
		log.Printf("[AUTH] Rate limit check failed: %v", err)
		return nil
	}

	count := incr.Val()
	if count > l.max {
		return ErrRateLimited
	}
	return nil
}
