package auth

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Sama2911arth/Travisco/internal/auth/entity"
	"github.com/Sama2911arth/Travisco/internal/metrics"
)

// Client is the identity provider boundary. Errors are opaque to this
// package and are handed back to callers as received.
type Client interface {
	SignInWithPassword(ctx context.Context, email, password string) (*entity.Grant, error)
	SignOut(ctx context.Context, accessToken string) error
}

// Session holds the signed-in user of one browser session. It starts
// signed out and is never rehydrated from the identity provider.
type Session struct {
	id     string
	client Client
	logger *zap.SugaredLogger

	// transition serializes Login/Logout so overlapping submissions from
	// the same browser cannot interleave. Readers never take it.
	transition sync.Mutex

	mu          sync.RWMutex
	user        *entity.User
	accessToken string
	lastSeen    time.Time
}

// NewSession returns a signed-out session.
func NewSession(id string, client Client, logger *zap.SugaredLogger) *Session {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Session{id: id, client: client, logger: logger, lastSeen: time.Now()}
}

// ID returns the browser session id.
func (s *Session) ID() string { return s.id }

// User returns the held user, nil when signed out.
func (s *Session) User() *entity.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// SignedIn reports whether a user is held.
func (s *Session) SignedIn() bool {
	return s.User() != nil
}

// Login signs in with the identity provider. On success the returned user
// becomes the held user and nil is returned. On failure the held user is
// left as it was and the provider's error is returned unmodified.
func (s *Session) Login(ctx context.Context, email, password string) error {
	s.transition.Lock()
	defer s.transition.Unlock()

	grant, err := s.client.SignInWithPassword(ctx, email, password)
	metrics.RecordAuth("login", err)
	if err != nil {
		s.logger.Debugw("login failed", "session", s.id, "err", err)
		return err
	}

	if grant == nil {
		grant = &entity.Grant{}
	}
	s.mu.Lock()
	s.user = grant.User
	s.accessToken = grant.AccessToken
	s.mu.Unlock()

	s.logger.Infow("login succeeded", "session", s.id, "user", grant.User.DisplayName())
	return nil
}

// Logout asks the identity provider to sign out and then clears the held
// user whatever the outcome. A provider failure is only logged.
func (s *Session) Logout(ctx context.Context) {
	s.transition.Lock()
	defer s.transition.Unlock()

	s.mu.RLock()
	token := s.accessToken
	s.mu.RUnlock()

	err := s.client.SignOut(ctx, token)
	metrics.RecordAuth("logout", err)
	if err != nil {
		s.logger.Warnw("remote sign-out failed; clearing local session anyway", "session", s.id, "err", err)
	}

	s.mu.Lock()
	s.user = nil
	s.accessToken = ""
	s.mu.Unlock()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}
