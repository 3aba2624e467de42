// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/communityhub/internal/app/system/auth"
	"go.uber.org/zap"
)

type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

// ServeLogout handles GET /logout.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	if err := auth.SignOut(w, r); err != nil {
		// Still redirect; the cookie deletion header was the best we could do.
		h.Log.Error("logout: clear session", zap.Error(err))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
