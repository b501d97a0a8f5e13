package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Sama2911arth/Travisco/internal/auth"
	"github.com/Sama2911arth/Travisco/internal/supabase"
)

// DataSource is the backend data API as seen by the pages.
type DataSource interface {
	Monuments(ctx context.Context) (json.RawMessage, error)
	Community(ctx context.Context) (json.RawMessage, error)
	CommunityByMonument(ctx context.Context, name string) (json.RawMessage, error)
}

// Sessions signs the browser in and out, replacing its session cookie.
type Sessions interface {
	Login(w http.ResponseWriter, r *http.Request, email, password string) error
	Logout(w http.ResponseWriter, r *http.Request)
}

// Handler renders the pages and handles the login/logout form posts.
type Handler struct {
	data     DataSource
	sessions Sessions
	logger   *zap.SugaredLogger
	views    *renderer
}

func NewHandler(data DataSource, sessions Sessions, logger *zap.SugaredLogger) (*Handler, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	views, err := newRenderer()
	if err != nil {
		return nil, err
	}
	return &Handler{data: data, sessions: sessions, logger: logger, views: views}, nil
}

func (h *Handler) page(r *http.Request, name, title string) PageData {
	d := PageData{Title: title, Page: name, Nav: navFor(r.URL.Path)}
	if s := auth.FromContext(r.Context()); s != nil {
		d.User = s.User()
	}
	return d
}

func (h *Handler) write(w http.ResponseWriter, r *http.Request, status int, data PageData) {
	if err := h.views.render(w, status, data); err != nil {
		h.logger.Errorw("render page", "page", data.Page, "path", r.URL.Path, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, http.StatusOK, h.page(r, "home", "Home"))
}

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, http.StatusOK, h.page(r, "login", "Login"))
}

func (h *Handler) Monuments(w http.ResponseWriter, r *http.Request) {
	payload, err := h.data.Monuments(r.Context())
	if err != nil {
		h.upstreamFailed(w, r, "monuments", err)
		return
	}
	d := h.page(r, "monuments", "Monuments")
	describe(payload, &d)
	h.write(w, r, http.StatusOK, d)
}

func (h *Handler) Community(w http.ResponseWriter, r *http.Request) {
	monument := strings.TrimSpace(r.URL.Query().Get("monument"))

	var (
		payload json.RawMessage
		err     error
	)
	if monument != "" {
		payload, err = h.data.CommunityByMonument(r.Context(), monument)
	} else {
		payload, err = h.data.Community(r.Context())
	}
	if err != nil {
		h.upstreamFailed(w, r, "community", err)
		return
	}
	d := h.page(r, "community", "Community")
	d.Monument = monument
	describe(payload, &d)
	h.write(w, r, http.StatusOK, d)
}

func (h *Handler) upstreamFailed(w http.ResponseWriter, r *http.Request, what string, err error) {
	h.logger.Warnw("data api request failed", "what", what, "path", r.URL.Path, "err", err)
	d := h.page(r, "error", "Something went wrong")
	d.Error = "Could not load " + what + " right now. Please try again later."
	h.write(w, r, http.StatusBadGateway, d)
}

// NotFound renders the error page for paths outside the route table.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	d := h.page(r, "error", "Page not found")
	d.Error = "There is no page at " + r.URL.Path + "."
	h.write(w, r, http.StatusNotFound, d)
}

// Login handles the login form post. Messages from the identity provider are
// shown as received; any other failure gets a generic message.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("email"))
	password := r.PostForm.Get("password")

	err := h.sessions.Login(w, r, email, password)
	if err == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	d := h.page(r, "login", "Login")
	d.Email = email
	status := http.StatusUnauthorized
	var authErr *supabase.AuthError
	if errors.As(err, &authErr) {
		d.Error = authErr.Error()
	} else {
		h.logger.Errorw("login request failed", "path", r.URL.Path, "err", err)
		d.Error = "Sign-in is unavailable right now. Please try again later."
		status = http.StatusBadGateway
	}
	h.write(w, r, status, d)
}

// Logout handles the logout form post. It always ends signed out.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
