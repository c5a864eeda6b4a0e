package service

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/gisoinvest/auth-service/internal/config"
	"github.com/gisoinvest/auth-service/internal/domain"
	"github.com/gisoinvest/auth-service/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrSessionInvalid covers unknown, revoked and expired tokens alike so the
// API never reveals which case applied.
var ErrSessionInvalid = errors.New("invalid session")

const tokenBytes = 32

// SessionService issues, validates and revokes opaque session tokens.
type SessionService struct {
	sessions repository.SessionRepository
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionService(sessions repository.SessionRepository, cfg *config.Config) *SessionService {
	return &SessionService{
		sessions: sessions,
		secret:   []byte(cfg.Session.Secret),
		ttl:      cfg.Session.TTL,
		now:      time.Now,
	}
}

// Issue creates a session for the user and returns the raw token. The token
// is stored only as a keyed digest.
func (s *SessionService) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(buf)

	session := &domain.Session{
		ID:        uuid.New(),
		TokenHash: s.digest(token),
		UserID:    userID,
		ExpiresAt: s.now().Add(s.ttl),
		CreatedAt: s.now(),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return "", err
	}

	return token, nil
}

// Validate resolves a raw token to the owning user id. It fails with
// ErrSessionInvalid when the token is unknown, revoked or expired.
func (s *SessionService) Validate(ctx context.Context, token string) (uuid.UUID, error) {
	session, err := s.lookup(ctx, token)
	if err != nil {
		return uuid.Nil, err
	}
	if !session.Active(s.now()) {
		return uuid.Nil, ErrSessionInvalid
	}
	return session.UserID, nil
}

// Revoke marks the session for the given token as revoked. Revoking an
// already-revoked session succeeds; an unknown token fails.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	session, err := s.lookup(ctx, token)
	if err != nil {
		return err
	}
	return s.sessions.Revoke(ctx, session.ID)
}

// Refresh rotates a valid token: the old session is revoked and a fresh one
// issued for the same user.
func (s *SessionService) Refresh(ctx context.Context, token string) (string, error) {
	session, err := s.lookup(ctx, token)
	if err != nil {
		return "", err
	}
	if !session.Active(s.now()) {
		return "", ErrSessionInvalid
	}
	if err := s.sessions.Revoke(ctx, session.ID); err != nil {
		return "", err
	}
	return s.Issue(ctx, session.UserID)
}

// RevokeAllForUser invalidates every outstanding session of a user.
func (s *SessionService) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	return s.sessions.RevokeByUserID(ctx, userID)
}

// PurgeExpired deletes sessions that expired before now. Safe to call at any
// time; validation never depends on it.
func (s *SessionService) PurgeExpired(ctx context.Context) error {
	return s.sessions.DeleteExpired(ctx, s.now())
}

func (s *SessionService) lookup(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, ErrSessionInvalid
	}
	session, err := s.sessions.GetByTokenHash(ctx, s.digest(token))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, err
	}
	return session, nil
}

// digest computes the storage form of a token. HMAC keeps digests
// unforgeable without the server secret, and the comparison happens inside
// the unique index lookup rather than over the raw token.
func (s *SessionService) digest(token string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}
