// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/communityhub/internal/app/features/errors"
	userstore "github.com/dalemusser/communityhub/internal/app/store/users"
	"github.com/dalemusser/communityhub/internal/app/system/auth"
	"github.com/dalemusser/communityhub/internal/app/system/normalize"
	"github.com/dalemusser/communityhub/internal/app/system/ratelimit"
	"github.com/dalemusser/communityhub/internal/app/system/timeouts"
	"github.com/dalemusser/communityhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Handler serves password sign-in.
type Handler struct {
	Users         *userstore.Store
	Limiter       *ratelimit.Limiter
	ErrLog        *uierrors.ErrorLogger
	Log           *zap.Logger
	GoogleEnabled bool
}

func NewHandler(db *mongo.Database, limiter *ratelimit.Limiter, errLog *uierrors.ErrorLogger, googleEnabled bool, logger *zap.Logger) *Handler {
	return &Handler{
		Users:         userstore.New(db),
		Limiter:       limiter,
		ErrLog:        errLog,
		Log:           logger,
		GoogleEnabled: googleEnabled,
	}
}

type loginFormData struct {
	viewdata.BaseVM
	Error         string
	Email         string
	ReturnURL     string
	GoogleEnabled bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Sign in", "/"),
		ReturnURL:     SafeReturn(r.URL.Query().Get("return")),
		GoogleEnabled: h.GoogleEnabled,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "login: parse form", err, "Invalid form data.", "/login")
		return
	}

	email := normalize.Email(r.FormValue("email"))
	password := r.FormValue("password")
	ret := SafeReturn(r.FormValue("return"))

	if email == "" || password == "" {
		h.renderFormWithError(w, r, "Please enter your email and password.", email, ret, http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	// One shared attempt budget per account, regardless of source IP.
	if !h.Limiter.CheckAndRecord(ctx, ratelimit.EmailKey(email)) {
		h.Log.Warn("login throttled",
			zap.String("email", email),
			zap.String("ip", ratelimit.ClientIP(r)))
		h.renderFormWithError(w, r, "Too many attempts. Please wait a few minutes and try again.", email, ret, http.StatusTooManyRequests)
		return
	}

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			h.renderFormWithError(w, r, "Incorrect email or password.", email, ret, http.StatusUnauthorized)
			return
		}
		h.ErrLog.LogServerError(w, r, "login: load user", err, "A server error occurred.", "/login")
		return
	}

	if normalize.AuthMethod(u.AuthMethod) == "google" {
		h.renderFormWithError(w, r, "This account uses Google sign-in.", email, ret, http.StatusUnauthorized)
		return
	}
	if u.Status == "disabled" {
		h.renderFormWithError(w, r, "Your account is currently disabled. Please contact an administrator.", email, ret, http.StatusForbidden)
		return
	}
	if u.PasswordHash == nil ||
		bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(password)) != nil {
		h.renderFormWithError(w, r, "Incorrect email or password.", email, ret, http.StatusUnauthorized)
		return
	}

	// Successful sign-in clears the attempt history.
	h.Limiter.Reset(ctx, ratelimit.EmailKey(email))

	if err := auth.SignIn(w, r, auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
		Role:  u.Role,
	}); err != nil {
		h.ErrLog.LogServerError(w, r, "login: save session", err, "A server error occurred.", "/login")
		return
	}

	h.Log.Info("user signed in", zap.String("user_id", u.ID.Hex()))

	if ret == "" {
		ret = "/"
	}
	http.Redirect(w, r, ret, http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, email, ret string, status int) {
	w.WriteHeader(status)
	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Sign in", "/"),
		Error:         msg,
		Email:         email,
		ReturnURL:     ret,
		GoogleEnabled: h.GoogleEnabled,
	})
}

// SafeReturn keeps redirects on-site: only rooted paths pass through, so a
// crafted return parameter cannot bounce users to another origin.
func SafeReturn(ret string) string {
	ret = strings.TrimSpace(ret)
	if ret == "" || !strings.HasPrefix(ret, "/") || strings.HasPrefix(ret, "//") {
		return ""
	}
	return ret
}
