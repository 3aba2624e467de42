// internal/app/features/home/handler.go
package home

import (
	"context"
	"net/http"

	eventstore "github.com/dalemusser/communityhub/internal/app/store/events"
	"github.com/dalemusser/communityhub/internal/app/system/timeouts"
	"github.com/dalemusser/communityhub/internal/app/system/viewdata"
	"github.com/dalemusser/communityhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler holds dependencies needed to serve the home page.
type Handler struct {
	Events *eventstore.Store
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Events: eventstore.New(db),
		Log:    logger,
	}
}

// upcomingShown caps how many events the landing page lists.
const upcomingShown = 6

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	var upcoming []models.Event
	events, err := h.Events.ListActive(ctx)
	if err != nil {
		// The landing page still renders without the event strip.
		h.Log.Error("home: list active events", zap.Error(err))
	} else {
		if len(events) > upcomingShown {
			events = events[:upcomingShown]
		}
		upcoming = events
	}

	data := struct {
		viewdata.BaseVM
		Upcoming []models.Event
	}{
		BaseVM:   viewdata.NewBaseVM(r, "Welcome", "/"),
		Upcoming: upcoming,
	}

	templates.Render(w, r, "home", data)
}
