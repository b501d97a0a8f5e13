// Package supabase is a minimal client for the Supabase Auth (GoTrue) REST
// API covering password sign-in and sign-out.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Sama2911arth/Travisco/internal/auth/entity"
)

var ErrNotConfigured = errors.New("supabase url and anon key are required")

type Config struct {
	URL     string
	AnonKey string
	Timeout time.Duration
}

// ConfigFromEnv reads SUPABASE_URL, SUPABASE_ANON_KEY and SUPABASE_TIMEOUT.
func ConfigFromEnv() Config {
	timeout := 10 * time.Second
	if v, err := time.ParseDuration(os.Getenv("SUPABASE_TIMEOUT")); err == nil && v > 0 {
		timeout = v
	}
	return Config{
		URL:     strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
		AnonKey: os.Getenv("SUPABASE_ANON_KEY"),
		Timeout: timeout,
	}
}

// AuthError is the failure reported by the Auth API, carried as-is. Error
// returns the service's own message so it can be shown to the user.
type AuthError struct {
	Status  int
	Code    string
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// Client talks to {URL}/auth/v1.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
}

func New(cfg Config) (*Client, error) {
	if cfg.URL == "" || cfg.AnonKey == "" {
		return nil, ErrNotConfigured
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/") + "/auth/v1",
		anonKey:    cfg.AnonKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type passwordRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
	ExpiresAt    int64        `json:"expires_at"`
	RefreshToken string       `json:"refresh_token"`
	User         *entity.User `json:"user"`
}

// errorResponse covers both error body shapes GoTrue has used.
type errorResponse struct {
	Code             json.RawMessage `json:"code"`
	ErrorCode        string          `json:"error_code"`
	Msg              string          `json:"msg"`
	Message          string          `json:"message"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
}

// SignInWithPassword exchanges email and password for a session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*entity.Grant, error) {
	body, err := json.Marshal(passwordRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token?grant_type=password", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, decodeError(resp)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if tr.User == nil {
		return nil, &AuthError{Status: resp.StatusCode, Message: "response carried no user"}
	}

	g := &entity.Grant{User: tr.User, AccessToken: tr.AccessToken, RefreshToken: tr.RefreshToken}
	switch {
	case tr.ExpiresAt > 0:
		g.ExpiresAt = time.Unix(tr.ExpiresAt, 0)
	case tr.ExpiresIn > 0:
		g.ExpiresAt = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return g, nil
}

// SignOut revokes the session behind accessToken on every device. An empty
// token has nothing to revoke and returns nil.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/logout?scope=global", nil)
	if err != nil {
		return err
	}
	c.setHeaders(req, accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return decodeError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) setHeaders(req *http.Request, accessToken string) {
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Accept", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
}

func decodeError(resp *http.Response) error {
	ae := &AuthError{Status: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var er errorResponse
	if err := json.Unmarshal(raw, &er); err != nil {
		ae.Message = strings.TrimSpace(string(raw))
		if ae.Message == "" {
			ae.Message = http.StatusText(resp.StatusCode)
		}
		return ae
	}

	ae.Code = er.ErrorCode
	if ae.Code == "" {
		ae.Code = er.Error
	}
	if ae.Code == "" && len(er.Code) > 0 {
		var s string
		if json.Unmarshal(er.Code, &s) == nil {
			ae.Code = s
		}
	}
	for _, m := range []string{er.Msg, er.Message, er.ErrorDescription, er.Error} {
		if m != "" {
			ae.Message = m
			break
		}
	}
	if ae.Message == "" {
		ae.Message = http.StatusText(resp.StatusCode)
	}
	return ae
}
