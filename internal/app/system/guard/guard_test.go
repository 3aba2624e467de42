package guard

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/communityhub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newGuarded(called *bool) http.Handler {
	g := New(false, zap.NewNop())
	return g.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	}))
}

func adminRequest(method, target string) *http.Request {
	r := httptest.NewRequest(method, target, nil)
	return auth.WithTestUser(r, &auth.SessionUser{
		ID: primitive.NewObjectID().Hex(), Name: "Admin", Role: "admin",
	})
}

func userRequest(method, target string) *http.Request {
	r := httptest.NewRequest(method, target, nil)
	return auth.WithTestUser(r, &auth.SessionUser{
		ID: primitive.NewObjectID().Hex(), Name: "User", Role: "user",
	})
}

func TestCSRF_HeaderAndCookieIssued(t *testing.T) {
	var called bool
	h := newGuarded(&called)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if !called {
		t.Fatal("handler not invoked for plain GET")
	}
	if rec.Header().Get(HeaderName) == "" {
		t.Error("no fresh token in response header")
	}

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("csrf cookie not set")
	}
	if !cookie.HttpOnly {
		t.Error("csrf cookie not HttpOnly")
	}
	if cookie.SameSite != http.SameSiteStrictMode {
		t.Error("csrf cookie not SameSite=Strict")
	}
}

func TestCSRF_CookieNotReissued(t *testing.T) {
	var called bool
	h := newGuarded(&called)

	r := httptest.NewRequest("GET", "/", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "tok-1"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName {
			t.Errorf("cookie reissued with value %q; existing cookie must stay stable", c.Value)
		}
	}
}

func TestCSRF_MutatingJSON(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		cookie     string
		header     string
		wantStatus int
		wantRun    bool
	}{
		{"matching pair", "POST", "tok", "tok", http.StatusOK, true},
		{"missing header", "POST", "tok", "", http.StatusForbidden, false},
		{"mismatched header", "POST", "tok", "other", http.StatusForbidden, false},
		{"no cookie at all", "POST", "", "tok", http.StatusForbidden, false},
		{"delete mismatch", "DELETE", "tok", "nope", http.StatusForbidden, false},
		{"put match", "PUT", "tok", "tok", http.StatusOK, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool
			h := newGuarded(&called)

			r := httptest.NewRequest(tt.method, "/events/123/register", strings.NewReader(`{}`))
			r.Header.Set("Content-Type", "application/json")
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: CookieName, Value: tt.cookie})
			}
			if tt.header != "" {
				r.Header.Set(HeaderName, tt.header)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, r)

			if called != tt.wantRun {
				t.Errorf("handler ran = %v, want %v", called, tt.wantRun)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusForbidden {
				if body := strings.TrimSpace(rec.Body.String()); body != `{"error":"Invalid CSRF token"}` {
					t.Errorf("body = %q", body)
				}
			}
		})
	}
}

func TestCSRF_LowercaseHeaderAccepted(t *testing.T) {
	var called bool
	h := newGuarded(&called)

	r := httptest.NewRequest("POST", "/x", strings.NewReader(`{}`))
	r.Header.Set("Content-Type", "application/json")
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "tok"})
	r.Header.Set("x-csrf-token", "tok") // net/http canonicalizes header names

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	if !called || rec.Code != http.StatusOK {
		t.Errorf("lowercase header rejected: run=%v status=%d", called, rec.Code)
	}
}

func TestCSRF_FormPostSkipsCheck(t *testing.T) {
	var called bool
	h := newGuarded(&called)

	r := httptest.NewRequest("POST", "/login", strings.NewReader("a=b"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	if !called {
		t.Error("form post blocked; only JSON bodies are double-submit checked")
	}
}

func TestRouteAuthorization(t *testing.T) {
	tests := []struct {
		name        string
		req         *http.Request
		wantRun     bool
		wantStatus  int
		wantLocPfx  string
	}{
		{"admin area anonymous", httptest.NewRequest("GET", "/admin/events", nil), false, http.StatusSeeOther, "/login"},
		{"admin area non-admin", userRequest("GET", "/admin/events"), false, http.StatusSeeOther, "/"},
		{"admin area admin", adminRequest("GET", "/admin/events"), true, http.StatusOK, ""},
		{"admin prefix exact", httptest.NewRequest("GET", "/admin", nil), false, http.StatusSeeOther, "/login"},
		{"adminish path not guarded", httptest.NewRequest("GET", "/administrivia", nil), true, http.StatusOK, ""},
		{"profile anonymous", httptest.NewRequest("GET", "/profile", nil), false, http.StatusSeeOther, "/login"},
		{"profile signed in", userRequest("GET", "/profile"), true, http.StatusOK, ""},
		{"public path", httptest.NewRequest("GET", "/events", nil), true, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool
			h := newGuarded(&called)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, tt.req)

			if called != tt.wantRun {
				t.Errorf("handler ran = %v, want %v", called, tt.wantRun)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantLocPfx != "" {
				loc := rec.Header().Get("Location")
				if !strings.HasPrefix(loc, tt.wantLocPfx) {
					t.Errorf("Location = %q, want prefix %q", loc, tt.wantLocPfx)
				}
			}
		})
	}
}

func TestFreshTokenPerResponse(t *testing.T) {
	var called bool
	h := newGuarded(&called)

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
		tok := rec.Header().Get(HeaderName)
		if tok == "" {
			t.Fatal("missing response token")
		}
		if seen[tok] {
			t.Error("token repeated across responses")
		}
		seen[tok] = true
	}
}
