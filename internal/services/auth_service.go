package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// AuthService handles registration, credential checks and the session
// lifecycle. Password digests are deterministic SHA-256, base64-encoded,
// so the same plaintext always produces the same stored value.
type AuthService struct {
	store      *storage.Repository
	sessionTTL time.Duration
}

func NewAuthService(store *storage.Repository, sessionTTL time.Duration) *AuthService {
	return &AuthService{store: store, sessionTTL: sessionTTL}
}

func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// Register creates a new account. Username and email collisions come back
// as ErrUserExists without revealing which of the two matched.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (core.User, error) {
	if err := core.ValidateRegistration(username, email, password); err != nil {
		return core.User{}, err
	}
	exists, err := s.store.UserExists(ctx, username, email)
	if err != nil {
		return core.User{}, fmt.Errorf("check user: %w", err)
	}
	if exists {
		return core.User{}, ErrUserExists
	}
	u, err := s.store.CreateUser(ctx, username, email, HashPassword(password))
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	slog.InfoContext(ctx, "User registered", "user_id", u.ID, "username", username)
	return u, nil
}

// Authenticate returns ErrInvalidCredentials for an unknown username and
// for a wrong password alike.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (core.User, error) {
	u, err := s.store.UserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return core.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return core.User{}, fmt.Errorf("authenticate: %w", err)
	}
	digest := HashPassword(password)
	if subtle.ConstantTimeCompare([]byte(digest), []byte(u.PasswordHash)) != 1 {
		return core.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// StartSession mints a random token and persists it with the configured TTL.
func (s *AuthService) StartSession(ctx context.Context, userID int64) (core.Session, error) {
	token, err := newSessionToken()
	if err != nil {
		return core.Session{}, err
	}
	sess := core.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(s.sessionTTL),
	}
	if err := s.store.CreateSession(ctx, sess.Token, sess.UserID, sess.ExpiresAt); err != nil {
		return core.Session{}, fmt.Errorf("start session: %w", err)
	}
	return sess, nil
}

// SessionUser resolves a token to its user. Expired and unknown tokens both
// map to ErrInvalidCredentials.
func (s *AuthService) SessionUser(ctx context.Context, token string) (core.User, error) {
	u, err := s.store.SessionUser(ctx, token, time.Now().UTC())
	if errors.Is(err, storage.ErrNotFound) {
		return core.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return core.User{}, fmt.Errorf("session user: %w", err)
	}
	return u, nil
}

func (s *AuthService) EndSession(ctx context.Context, token string) error {
	if err := s.store.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

// PurgeExpired removes dead sessions and reports how many were dropped.
func (s *AuthService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteExpiredSessions(ctx, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Expired sessions purged", "count", n)
	}
	return n, nil
}

func newSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
