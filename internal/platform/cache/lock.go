package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var ErrLockNotAcquired = errors.New("slot lock not acquired")

// SlotKey identifies one bookable cell of the agenda.
type SlotKey struct {
	StaffID int64
	Date    time.Time
	SlotID  int64
}

func (k SlotKey) String() string {
	return fmt.Sprintf("lock:slot:%d:%s:%d", k.StaffID, k.Date.Format("2006-01-02"), k.SlotID)
}

// Locker serialises writers competing for the same agenda slot. It only
// narrows the race; the unique index on turnos is what actually decides.
type Locker interface {
	WithSlotLock(ctx context.Context, key SlotKey, fn func(ctx context.Context) error) error
}

type redisSlotLocker struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

func NewRedisSlotLocker(client *redis.Client, ttl time.Duration, logger zerolog.Logger) Locker {
	return &redisSlotLocker{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (l *redisSlotLocker) WithSlotLock(ctx context.Context, key SlotKey, fn func(ctx context.Context) error) error {
	k := key.String()
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, k, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire slot lock: %w", err)
	}
	if !ok {
		return ErrLockNotAcquired
	}

	defer func() {
		if err := l.release(context.WithoutCancel(ctx), k, token); err != nil {
			// The key stays until its TTL runs out and blocks the slot meanwhile.
			l.logger.Error().Err(err).
				Str("key", k).
				Dur("ttl", l.ttl).
				Msg("slot lock not released")
		}
	}()

	lockCtx, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(lockCtx)
}

// Deletes the key only while it still holds our token, so an expired lock
// re-acquired by someone else is left alone.
var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *redisSlotLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release slot lock: %w", err)
	}
	return nil
}

// NoopLocker runs fn directly. Used when no Redis is configured.
type NoopLocker struct{}

func (NoopLocker) WithSlotLock(ctx context.Context, _ SlotKey, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
