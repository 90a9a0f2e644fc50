package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"meetingroom/internal/models"
	"meetingroom/internal/storage"
	"meetingroom/pkg/auth"
)

// SessionStore persists the shared login session
type SessionStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// SessionService implements the shared desk login. There is one session per
// organisation, stored through the storage chain.
type SessionService struct {
	jwtAuth *auth.LocalJWTAuth
	store   SessionStore
	key     string
	now     func() time.Time
}

// NewSessionService creates the login service
func NewSessionService(jwtAuth *auth.LocalJWTAuth, store SessionStore, keys storage.Keys) *SessionService {
	return &SessionService{
		jwtAuth: jwtAuth,
		store:   store,
		key:     keys.UserSession(),
		now:     time.Now,
	}
}

// Login checks the shared credential, records a session and signs a token
func (s *SessionService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	if req == nil || !s.jwtAuth.CheckCredentials(req.Username, req.Password) {
		return nil, ErrInvalidCredentials
	}

	now := s.now().UTC()
	session := &models.UserSession{
		ID:         strconv.FormatInt(now.UnixMilli(), 10),
		RememberMe: req.RememberMe,
		Timestamp:  now,
	}

	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.store.Set(ctx, s.key, string(data)); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	token, expiresAt, err := s.jwtAuth.GenerateToken(session.ID, session.RememberMe)
	if err != nil {
		return nil, err
	}

	log.Printf("🔐 [AUTH] Session %s started (remember me: %v)", session.ID, session.RememberMe)
	return &models.LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		Session:     session,
	}, nil
}

// Current returns the stored session. Unreadable sessions count as absent.
func (s *SessionService) Current(ctx context.Context) (*models.UserSession, error) {
	raw, err := s.store.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}

	var session models.UserSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		log.Printf("⚠️  [AUTH] Discarding unreadable session: %v", err)
		return nil, ErrNoSession
	}
	return &session, nil
}

// Validate checks a token against the stored session
func (s *SessionService) Validate(ctx context.Context, token string) (*models.UserSession, error) {
	claims, err := s.jwtAuth.VerifyToken(token)
	if err != nil {
		return nil, err
	}

	session, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	if session.ID != claims.SessionID {
		return nil, ErrNoSession
	}
	return session, nil
}

// Logout removes the stored session
func (s *SessionService) Logout(ctx context.Context) error {
	if err := s.store.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	log.Println("🔓 [AUTH] Session cleared")
	return nil
}
