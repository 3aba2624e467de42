// internal/app/features/signup/handler.go
package signup

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/communityhub/internal/app/features/errors"
	userstore "github.com/dalemusser/communityhub/internal/app/store/users"
	"github.com/dalemusser/communityhub/internal/app/system/auth"
	"github.com/dalemusser/communityhub/internal/app/system/normalize"
	"github.com/dalemusser/communityhub/internal/app/system/ratelimit"
	"github.com/dalemusser/communityhub/internal/app/system/timeouts"
	"github.com/dalemusser/communityhub/internal/app/system/viewdata"
	"github.com/dalemusser/communityhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

// Handler serves account creation.
type Handler struct {
	Users   *userstore.Store
	Limiter *ratelimit.Limiter
	ErrLog  *uierrors.ErrorLogger
	Log     *zap.Logger
}

func NewHandler(db *mongo.Database, limiter *ratelimit.Limiter, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:   userstore.New(db),
		Limiter: limiter,
		ErrLog:  errLog,
		Log:     logger,
	}
}

type signupFormData struct {
	viewdata.BaseVM
	Error    string
	FullName string
	Email    string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /signup                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeSignup(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "signup", signupFormData{
		BaseVM: viewdata.NewBaseVM(r, "Sign up", "/"),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /signup                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleSignupPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "signup: parse form", err, "Invalid form data.", "/signup")
		return
	}

	fullName := normalize.Name(r.FormValue("full_name"))
	email := normalize.Email(r.FormValue("email"))
	password := r.FormValue("password")

	if fullName == "" || email == "" {
		h.renderFormWithError(w, r, "Please fill in your name and email.", fullName, email, http.StatusBadRequest)
		return
	}
	if len(password) < minPasswordLen {
		h.renderFormWithError(w, r, "Password must be at least 8 characters.", fullName, email, http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	// Signup shares the login limiter so account creation cannot be used
	// to probe which emails exist at an unbounded rate.
	if !h.Limiter.CheckAndRecord(ctx, ratelimit.EmailKey(email)) {
		h.Log.Warn("signup throttled",
			zap.String("email", email),
			zap.String("ip", ratelimit.ClientIP(r)))
		h.renderFormWithError(w, r, "Too many attempts. Please wait a few minutes and try again.", fullName, email, http.StatusTooManyRequests)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "signup: hash password", err, "A server error occurred.", "/signup")
		return
	}
	hashStr := string(hash)

	u, err := h.Users.Create(ctx, models.User{
		FullName:     fullName,
		Email:        email,
		AuthMethod:   "password",
		PasswordHash: &hashStr,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			h.renderFormWithError(w, r, "An account with this email already exists.", fullName, email, http.StatusConflict)
			return
		}
		h.ErrLog.LogServerError(w, r, "signup: create user", err, "A server error occurred.", "/signup")
		return
	}

	h.Limiter.Reset(ctx, ratelimit.EmailKey(email))

	if err := auth.SignIn(w, r, auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
		Role:  u.Role,
	}); err != nil {
		h.ErrLog.LogServerError(w, r, "signup: save session", err, "A server error occurred.", "/login")
		return
	}

	h.Log.Info("account created", zap.String("user_id", u.ID.Hex()))
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, fullName, email string, status int) {
	w.WriteHeader(status)
	templates.Render(w, r, "signup", signupFormData{
		BaseVM:   viewdata.NewBaseVM(r, "Sign up", "/"),
		Error:    msg,
		FullName: fullName,
		Email:    email,
	})
}
