package auth

import (
	"context"
	"time"

	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/cache"
)

// Revoker keeps the ids of refresh tokens that were rotated or logged out.
// Entries live only until the token would have expired anyway.
type Revoker struct {
	store cache.TokenStore
	now   func() time.Time
}

func NewRevoker(store cache.TokenStore) *Revoker {
	return &Revoker{store: store, now: time.Now}
}

func (r *Revoker) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	return r.store.Put(ctx, revokedKey(jti), "1", ttl)
}

func (r *Revoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return r.store.Exists(ctx, revokedKey(jti))
}

func revokedKey(jti string) string {
	return "revoked:" + jti
}
