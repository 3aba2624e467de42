// internal/app/features/profile/handler.go
package profile

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/communityhub/internal/app/features/errors"
	userstore "github.com/dalemusser/communityhub/internal/app/store/users"
	"github.com/dalemusser/communityhub/internal/app/system/authz"
	"github.com/dalemusser/communityhub/internal/app/system/profilesync"
	"github.com/dalemusser/communityhub/internal/app/system/timeouts"
	"github.com/dalemusser/communityhub/internal/app/system/viewdata"
	"github.com/dalemusser/communityhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the signed-in user's own profile. The request guard
// enforces a session for everything under /profile.
type Handler struct {
	Users  *userstore.Store
	Sync   *profilesync.Syncer
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, sync *profilesync.Syncer, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:  userstore.New(db),
		Sync:   sync,
		ErrLog: errLog,
		Log:    logger,
	}
}

type profileData struct {
	viewdata.BaseVM
	User    models.User
	Saved   bool
	Error   string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /profile                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Session references a deleted account.
			uierrors.RenderUnauthorized(w, r, "")
			return
		}
		h.ErrLog.LogServerError(w, r, "profile: load user", err, "Could not load your profile.", "/")
		return
	}

	templates.Render(w, r, "profile", profileData{
		BaseVM: viewdata.NewBaseVM(r, "My profile", "/"),
		User:   *u,
		Saved:  r.URL.Query().Get("saved") == "1",
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /profile                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "profile: parse form", err, "Invalid form data.", "/profile")
		return
	}

	upd := userstore.ProfileUpdate{}
	if r.Form.Has("full_name") {
		v := r.FormValue("full_name")
		upd.FullName = &v
	}
	if r.Form.Has("phone") {
		v := r.FormValue("phone")
		upd.Phone = &v
	}
	if r.Form.Has("bio") {
		v := r.FormValue("bio")
		upd.Bio = &v
	}
	if r.Form.Has("avatar") {
		v := r.FormValue("avatar")
		upd.Avatar = &v
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Sync.UpdateProfile(ctx, userID, upd)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "profile: update", err, "Could not save your profile.", "/profile")
		return
	}

	h.Log.Info("profile updated", zap.String("user_id", u.ID.Hex()))
	http.Redirect(w, r, "/profile?saved=1", http.StatusSeeOther)
}
