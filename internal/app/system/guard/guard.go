// internal/app/system/guard/guard.go

// Package guard is the per-request gate every inbound request passes
// through before any feature handler runs. It does two unrelated but
// order-sensitive jobs:
//
//  1. CSRF: every response carries a fresh token in the X-CSRF-Token
//     header; a csrf-token cookie is set once and then left stable.
//     Mutating requests with a JSON body must echo the cookie value back
//     in the header or they are rejected with 403 before any handler runs.
//
//  2. Route-prefix authorization: /admin/* needs a session with the admin
//     role, /profile/* needs any session. Unauthenticated requests are
//     redirected to the login page, authenticated-but-unauthorized ones
//     to the site root.
//
// Any failure resolving the session is treated as "no session"; the
// guard fails closed.
package guard

import (
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/dalemusser/communityhub/internal/app/system/auth"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

const (
	// HeaderName carries the token in both directions: fresh server→client
	// on every response, echoed client→server on mutating JSON requests.
	HeaderName = "X-CSRF-Token"

	// CookieName is the client's half of the double-submit pair.
	CookieName = "csrf-token"

	tokenBytes = 32
)

// Route prefixes with elevated requirements.
const (
	adminPrefix   = "/admin"
	profilePrefix = "/profile"

	loginPath = "/login"
)

// Guard holds the middleware configuration.
type Guard struct {
	secure bool // mark the csrf cookie Secure (prod)
	log    *zap.Logger
}

// New constructs a Guard. secure should be true when serving over HTTPS.
func New(secure bool, logger *zap.Logger) *Guard {
	return &Guard{secure: secure, log: logger}
}

// Middleware returns the chi middleware. It must run after
// auth.LoadSessionUser so the session user is already in context.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookieToken := g.ensureCSRF(w, r)

		if isMutatingJSON(r) && !g.csrfValid(r, cookieToken) {
			g.log.Warn("csrf rejection",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Invalid CSRF token"})
			return
		}

		if !g.authorize(w, r) {
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ensureCSRF attaches a fresh token header to the response and sets the
// cookie if the client doesn't hold one yet. It returns the value the
// client is expected to echo back: the existing cookie if present,
// otherwise the one just issued.
func (g *Guard) ensureCSRF(w http.ResponseWriter, r *http.Request) string {
	fresh := hex.EncodeToString(securecookie.GenerateRandomKey(tokenBytes))
	w.Header().Set(HeaderName, fresh)

	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    fresh,
		Path:     "/",
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteStrictMode,
	})
	return fresh
}

// csrfValid compares the request's token header against the cookie value.
// Header name matching is case-insensitive (net/http canonicalizes).
func (g *Guard) csrfValid(r *http.Request, cookieToken string) bool {
	sent := r.Header.Get(HeaderName)
	if sent == "" || cookieToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(sent), []byte(cookieToken)) == 1
}

// authorize applies the route-prefix rules. It returns false after writing
// a redirect when the request must not reach a handler.
func (g *Guard) authorize(w http.ResponseWriter, r *http.Request) bool {
	path := r.URL.Path

	switch {
	case underPrefix(path, adminPrefix):
		u, ok := auth.CurrentUser(r)
		if !ok {
			redirectToLogin(w, r)
			return false
		}
		if !strings.EqualFold(u.Role, "admin") {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return false
		}
	case underPrefix(path, profilePrefix):
		if _, ok := auth.CurrentUser(r); !ok {
			redirectToLogin(w, r)
			return false
		}
	}

	return true
}

// isMutatingJSON reports whether the request has create/update/delete
// semantics with a JSON body. Form posts are covered by SameSite=Strict on
// the session cookie; the double-submit check targets fetch()-style calls.
func isMutatingJSON(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return false
	}
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(ct)), "application/json")
}

func underPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	ret := url.QueryEscape(r.URL.RequestURI())
	http.Redirect(w, r, loginPath+"?return="+ret, http.StatusSeeOther)
}
