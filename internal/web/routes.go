package web

import (
	"net/http"
	"os"
	"strings"

	"github.com/Sama2911arth/Travisco/internal/auth"
)

type Config struct {
	// GuardedRoutes lists page paths that require a signed-in session.
	GuardedRoutes []string
}

// ConfigFromEnv reads WEB_GUARDED_ROUTES, a comma separated list of paths.
func ConfigFromEnv() Config {
	var guarded []string
	for _, p := range strings.Split(os.Getenv("WEB_GUARDED_ROUTES"), ",") {
		if p = strings.TrimSpace(p); p != "" {
			guarded = append(guarded, p)
		}
	}
	return Config{GuardedRoutes: guarded}
}

// Route maps one fixed path to one page.
type Route struct {
	Path    string
	Name    string
	Handler http.HandlerFunc
	Guarded bool
}

// Routes returns the page route table. Only paths listed in
// cfg.GuardedRoutes require a signed-in session.
func (h *Handler) Routes(cfg Config) []Route {
	routes := []Route{
		{Path: "/", Name: "home", Handler: h.Home},
		{Path: "/login", Name: "login", Handler: h.LoginPage},
		{Path: "/monuments", Name: "monuments", Handler: h.Monuments},
		{Path: "/community", Name: "community", Handler: h.Community},
	}
	for i := range routes {
		for _, g := range cfg.GuardedRoutes {
			if routes[i].Path == g && routes[i].Path != "/login" {
				routes[i].Guarded = true
			}
		}
	}
	return routes
}

// Mount registers the route table, the login/logout actions and a
// catch-all not-found page on mux.
func (h *Handler) Mount(mux *http.ServeMux, routes []Route) {
	for _, rt := range routes {
		pattern := "GET " + rt.Path
		if rt.Path == "/" {
			pattern = "GET /{$}"
		}
		var handler http.Handler = rt.Handler
		if rt.Guarded {
			handler = RequireSignedIn(handler)
		}
		mux.Handle(pattern, handler)
	}
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("POST /logout", h.Logout)
	mux.HandleFunc("/", h.NotFound)
}

// RequireSignedIn redirects signed-out sessions to the login page.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := auth.FromContext(r.Context())
		if s == nil || !s.SignedIn() {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
