package auth

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Sama2911arth/Travisco/internal/metrics"
	"github.com/Sama2911arth/Travisco/pkg/utilities"
)

type StoreConfig struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

// StoreConfigFromEnv reads SESSION_IDLE_TTL (Go duration, default 12h).
func StoreConfigFromEnv() StoreConfig {
	ttl := 12 * time.Hour
	if v, err := time.ParseDuration(os.Getenv("SESSION_IDLE_TTL")); err == nil && v > 0 {
		ttl = v
	}
	return StoreConfig{IdleTTL: ttl, SweepInterval: 5 * time.Minute}
}

// Store keeps signed-in browser sessions in process memory. Nothing is
// persisted: a restart leaves every browser signed out.
type Store struct {
	cfg    StoreConfig
	client Client
	logger *zap.SugaredLogger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewStore(cfg StoreConfig, client Client, logger *zap.SugaredLogger) *Store {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 12 * time.Hour
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Store{
		cfg:      cfg,
		client:   client,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// New returns a signed-out session under a fresh KSUID. It is not stored:
// only signed-in sessions are kept, via Save.
func (st *Store) New() *Session {
	return NewSession(utilities.NewKSUID(), st.client, st.logger)
}

// Save stores s and marks it as seen.
func (st *Store) Save(s *Session) {
	s.touch(st.now())

	st.mu.Lock()
	st.sessions[s.id] = s
	n := len(st.sessions)
	st.mu.Unlock()

	metrics.SessionsActive.Set(float64(n))
}

// Get returns the session with the given id and marks it as seen.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	st.mu.Unlock()
	if ok {
		s.touch(st.now())
	}
	return s, ok
}

// Delete drops a session. Local state only; the identity provider is not called.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	n := len(st.sessions)
	st.mu.Unlock()
	metrics.SessionsActive.Set(float64(n))
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep evicts sessions idle for longer than IdleTTL and returns how many
// were dropped.
func (st *Store) Sweep() int {
	cutoff := st.now().Add(-st.cfg.IdleTTL)

	st.mu.Lock()
	evicted := 0
	for id, s := range st.sessions {
		if s.idleSince().Before(cutoff) {
			delete(st.sessions, id)
			evicted++
		}
	}
	n := len(st.sessions)
	st.mu.Unlock()

	metrics.SessionsActive.Set(float64(n))
	if evicted > 0 {
		st.logger.Debugw("evicted idle sessions", "count", evicted, "remaining", n)
	}
	return evicted
}

// Run sweeps idle sessions until ctx is done.
func (st *Store) Run(ctx context.Context) {
	ticker := time.NewTicker(st.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st.Sweep()
		}
	}
}
