// internal/app/features/admin/handler.go
package admin

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/communityhub/internal/app/features/errors"
	eventstore "github.com/dalemusser/communityhub/internal/app/store/events"
	"github.com/dalemusser/communityhub/internal/app/store/queries/regdetails"
	registrationstore "github.com/dalemusser/communityhub/internal/app/store/registrations"
	"github.com/dalemusser/communityhub/internal/app/store/resolve"
	"github.com/dalemusser/communityhub/internal/app/system/timeouts"
	"github.com/dalemusser/communityhub/internal/app/system/viewdata"
	"github.com/dalemusser/communityhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the admin area: event management and registration
// moderation. Route-level admin enforcement happens in the request guard;
// handlers here can assume an admin session.
type Handler struct {
	Events        *eventstore.Store
	Registrations *registrationstore.Store
	Resolver      *resolve.Resolver
	ErrLog        *uierrors.ErrorLogger
	Log           *zap.Logger
}

func NewHandler(db *mongo.Database, resolver *resolve.Resolver, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Events:        eventstore.New(db),
		Registrations: registrationstore.New(db),
		Resolver:      resolver,
		ErrLog:        errLog,
		Log:           logger,
	}
}

type dashboardData struct {
	viewdata.BaseVM
	Events  []models.Event
	Pending []regdetails.RegistrationDetail
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /admin – dashboard                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	events, err := h.Events.ListAll(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "admin: list events", err, "Could not load the dashboard.", "/")
		return
	}

	all, err := regdetails.ListForModeration(ctx, h.Resolver)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "admin: list registrations", err, "Could not load the dashboard.", "/")
		return
	}

	var pending []regdetails.RegistrationDetail
	for _, reg := range all {
		if reg.Status == "pending" {
			pending = append(pending, reg)
		}
	}

	templates.Render(w, r, "admin_dashboard", dashboardData{
		BaseVM:  viewdata.NewBaseVM(r, "Admin", "/"),
		Events:  events,
		Pending: pending,
	})
}
