package auth

import (
	"context"
	"testing"
	"time"

	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/cache"
)

func TestTokenIssuer_IssueAndParse(t *testing.T) {
	issuer := NewTokenIssuer(testSigningKey, "consultorio", time.Hour, 24*time.Hour)
	u := &User{ID: 7, Username: "dra.paz", Roles: []string{RoleOdontologo}}

	pair, err := issuer.Issue(u)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pair.TokenType != "Bearer" || pair.ExpiresIn != 3600 {
		t.Errorf("unexpected pair metadata %+v", pair)
	}

	access, err := issuer.ParseAccess(pair.Access)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if access.Subject != "7" || access.Username != "dra.paz" || access.Issuer != "consultorio" {
		t.Errorf("unexpected access claims %+v", access)
	}

	refresh, err := issuer.ParseRefresh(pair.Refresh)
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
	if refresh.ID == "" || refresh.ID == access.ID {
		t.Error("expected distinct token ids")
	}
	if got := refresh.ExpiresAt.Sub(refresh.IssuedAt.Time); got != 24*time.Hour {
		t.Errorf("expected 24h refresh lifetime, got %s", got)
	}
}

func TestTokenIssuer_TypeMismatch(t *testing.T) {
	issuer := NewTokenIssuer(testSigningKey, "consultorio", time.Hour, 24*time.Hour)
	pair, _ := issuer.Issue(&User{ID: 1})

	if _, err := issuer.ParseRefresh(pair.Access); err == nil {
		t.Error("expected access token to fail as refresh")
	}
	if _, err := issuer.ParseAccess(pair.Refresh); err == nil {
		t.Error("expected refresh token to fail as access")
	}
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer(testSigningKey, "consultorio", time.Minute, time.Hour)
	start := time.Now()
	issuer.now = func() time.Time { return start }
	pair, _ := issuer.Issue(&User{ID: 1})

	issuer.now = func() time.Time { return start.Add(2 * time.Minute) }
	if _, err := issuer.ParseAccess(pair.Access); err == nil {
		t.Error("expected expired access token to fail")
	}
	if _, err := issuer.ParseRefresh(pair.Refresh); err != nil {
		t.Errorf("expected refresh token to still be valid, got %v", err)
	}
}

func TestRevoker(t *testing.T) {
	store := cache.NewMemoryTokenStore()
	defer store.Close()
	r := NewRevoker(store)
	ctx := context.Background()

	if err := r.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if ok, _ := r.IsRevoked(ctx, "jti-1"); !ok {
		t.Error("expected jti-1 to be revoked")
	}
	if ok, _ := r.IsRevoked(ctx, "jti-2"); ok {
		t.Error("expected jti-2 not to be revoked")
	}

	// Already expired: nothing to track.
	r.Revoke(ctx, "jti-old", time.Now().Add(-time.Minute))
	if store.Len() != 1 {
		t.Errorf("expected only live entries to be stored, got %d", store.Len())
	}
}
