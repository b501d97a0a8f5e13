package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const CookieName = "travisco_session"

var ErrInvalidCookie = errors.New("invalid session cookie")

type CookieConfig struct {
	Secret []byte
	Secure bool
	MaxAge time.Duration
}

// CookieConfigFromEnv reads SESSION_SECRET and SESSION_COOKIE_SECURE. An
// empty secret is replaced by random bytes, so cookies do not outlive the
// process.
func CookieConfigFromEnv() (CookieConfig, error) {
	secret := []byte(os.Getenv("SESSION_SECRET"))
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return CookieConfig{}, fmt.Errorf("generate session secret: %w", err)
		}
	}
	return CookieConfig{
		Secret: secret,
		Secure: os.Getenv("SESSION_COOKIE_SECURE") == "1",
		MaxAge: 12 * time.Hour,
	}, nil
}

type sessionClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// CookieCodec signs and verifies session cookies as HS256 JWTs.
type CookieCodec struct {
	cfg CookieConfig
	now func() time.Time
}

func NewCookieCodec(cfg CookieConfig) *CookieCodec {
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 12 * time.Hour
	}
	return &CookieCodec{cfg: cfg, now: time.Now}
}

// Encode returns the signed cookie value for a session id.
func (c *CookieCodec) Encode(sid string) (string, error) {
	now := c.now()
	claims := sessionClaims{
		SID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.cfg.MaxAge)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.cfg.Secret)
}

// Decode verifies a cookie value and returns the session id it carries and
// the cookie's expiry.
func (c *CookieCodec) Decode(value string) (string, time.Time, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(value, &claims, func(t *jwt.Token) (any, error) {
		return c.cfg.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(c.now), jwt.WithExpirationRequired())
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %w", ErrInvalidCookie, err)
	}
	if claims.SID == "" {
		return "", time.Time{}, ErrInvalidCookie
	}
	return claims.SID, claims.ExpiresAt.Time, nil
}

// NeedsRefresh reports whether a cookie expiring at exp is past half of its
// lifetime and should be re-issued.
func (c *CookieCodec) NeedsRefresh(exp time.Time) bool {
	return exp.Sub(c.now()) < c.cfg.MaxAge/2
}

// Cookie builds the http.Cookie carrying value.
func (c *CookieCodec) Cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(c.cfg.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Clear builds a cookie that deletes the session cookie in the browser.
func (c *CookieCodec) Clear() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
