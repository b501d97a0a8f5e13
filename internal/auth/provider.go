package auth

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

type contextKey string

const sessionKey contextKey = "session"

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// FromContext returns the session injected by Provider, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey).(*Session)
	return s
}

// Provider resolves the browser's session for every request and makes it
// available to handlers through the request context.
type Provider struct {
	store  *Store
	codec  *CookieCodec
	logger *zap.SugaredLogger
}

func NewProvider(store *Store, codec *CookieCodec, logger *zap.SugaredLogger) *Provider {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Provider{store: store, codec: codec, logger: logger}
}

// Middleware attaches the session to the request. A missing, tampered or
// stale cookie gets an ephemeral signed-out session that is neither stored
// nor given a cookie. A valid cookie past half its lifetime is re-issued.
func (p *Provider) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := p.resolve(w, r)
		if s == nil {
			s = p.store.New()
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

func (p *Provider) resolve(w http.ResponseWriter, r *http.Request) *Session {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}
	sid, exp, err := p.codec.Decode(c.Value)
	if err != nil {
		p.logger.Debugw("discarding session cookie", "err", err)
		http.SetCookie(w, p.codec.Clear())
		return nil
	}
	s, ok := p.store.Get(sid)
	if !ok {
		http.SetCookie(w, p.codec.Clear())
		return nil
	}
	if p.codec.NeedsRefresh(exp) {
		if err := p.issue(w, sid); err != nil {
			p.logger.Warnw("refresh session cookie", "session", sid, "err", err)
		}
	}
	return s
}

func (p *Provider) issue(w http.ResponseWriter, sid string) error {
	value, err := p.codec.Encode(sid)
	if err != nil {
		return fmt.Errorf("encode session cookie: %w", err)
	}
	http.SetCookie(w, p.codec.Cookie(value))
	return nil
}

// Login signs in on a fresh session. Only on success is that session stored
// and its cookie issued; the request's previous session is dropped, so a
// cookie held before sign-in never resolves to the signed-in user. The
// identity provider's error is returned unmodified.
func (p *Provider) Login(w http.ResponseWriter, r *http.Request, email, password string) error {
	fresh := p.store.New()
	value, err := p.codec.Encode(fresh.ID())
	if err != nil {
		return fmt.Errorf("encode session cookie: %w", err)
	}
	if err := fresh.Login(r.Context(), email, password); err != nil {
		return err
	}

	p.store.Save(fresh)
	if old := FromContext(r.Context()); old != nil {
		p.store.Delete(old.ID())
	}
	http.SetCookie(w, p.codec.Cookie(value))
	return nil
}

// Logout signs the request's session out, drops it and clears the cookie.
// It always ends signed out.
func (p *Provider) Logout(w http.ResponseWriter, r *http.Request) {
	if s := FromContext(r.Context()); s != nil {
		s.Logout(r.Context())
		p.store.Delete(s.ID())
	}
	http.SetCookie(w, p.codec.Clear())
}
