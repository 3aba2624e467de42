// internal/app/features/admin/registrations.go
package admin

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/communityhub/internal/app/store/queries/regdetails"
	"github.com/dalemusser/communityhub/internal/app/system/normalize"
	"github.com/dalemusser/communityhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| GET /admin/registrations – moderation queue                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleListRegistrations(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	regs, err := regdetails.ListForModeration(ctx, h.Resolver)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "admin: list registrations", err, "Could not load registrations.", "/admin")
		return
	}

	// Optional status filter, e.g. /admin/registrations?status=pending.
	if want := r.URL.Query().Get("status"); want != "" {
		want = normalize.Status(want)
		filtered := regs[:0]
		for _, reg := range regs {
			if reg.Status == want {
				filtered = append(filtered, reg)
			}
		}
		regs = filtered
	}

	writeJSON(w, http.StatusOK, regs)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /admin/registrations/{regID}/approve | /reject                         |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleApproveRegistration(w http.ResponseWriter, r *http.Request) {
	h.setRegistrationStatus(w, r, normalize.StatusApproved)
}

func (h *Handler) HandleRejectRegistration(w http.ResponseWriter, r *http.Request) {
	h.setRegistrationStatus(w, r, normalize.StatusRejected)
}

func (h *Handler) setRegistrationStatus(w http.ResponseWriter, r *http.Request, status string) {
	regID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "regID"))
	if err != nil {
		h.ErrLog.LogNotFound(w, r, "admin: bad registration id", "Registration not found.", "/admin")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Registrations.SetStatus(ctx, regID, status); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			h.ErrLog.LogNotFound(w, r, "admin: registration not found", "Registration not found.", "/admin")
			return
		}
		h.ErrLog.LogServerError(w, r, "admin: set registration status", err, "Could not update the registration.", "/admin")
		return
	}

	h.Log.Info("registration moderated",
		zap.String("registration_id", regID.Hex()),
		zap.String("status", status))
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}
