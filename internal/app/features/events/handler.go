// internal/app/features/events/handler.go
package events

import (
	"context"
	"errors"
	"html/template"
	"net/http"

	uierrors "github.com/dalemusser/communityhub/internal/app/features/errors"
	eventstore "github.com/dalemusser/communityhub/internal/app/store/events"
	registrationstore "github.com/dalemusser/communityhub/internal/app/store/registrations"
	"github.com/dalemusser/communityhub/internal/app/system/timeouts"
	"github.com/dalemusser/communityhub/internal/app/system/viewdata"
	"github.com/dalemusser/communityhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the public event pages.
type Handler struct {
	Events        *eventstore.Store
	Registrations *registrationstore.Store
	ErrLog        *uierrors.ErrorLogger
	Log           *zap.Logger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Events:        eventstore.New(db),
		Registrations: registrationstore.New(db),
		ErrLog:        errLog,
		Log:           logger,
	}
}

type listData struct {
	viewdata.BaseVM
	Events []models.Event
}

type detailData struct {
	viewdata.BaseVM
	Event models.Event

	// Description is sanitized at the store boundary, so it is safe to
	// mark for raw rendering here.
	DescriptionHTML template.HTML

	SpotsTaken int64
	Full       bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /events – published events                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	evs, err := h.Events.ListActive(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "events: list active", err, "Could not load events.", "/")
		return
	}

	templates.Render(w, r, "events_list", listData{
		BaseVM: viewdata.NewBaseVM(r, "Events", "/"),
		Events: evs,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /events/{eventID} – detail                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "eventID"))
	if err != nil {
		h.ErrLog.LogNotFound(w, r, "events: bad event id", "Event not found.", "/events")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ev, err := h.Events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			h.ErrLog.LogNotFound(w, r, "events: not found", "Event not found.", "/events")
			return
		}
		h.ErrLog.LogServerError(w, r, "events: load event", err, "Could not load the event.", "/events")
		return
	}
	if !ev.Active {
		h.ErrLog.LogNotFound(w, r, "events: inactive event", "Event not found.", "/events")
		return
	}

	taken, err := h.Registrations.CountActiveForEvent(ctx, ev.ID)
	if err != nil {
		// Capacity display is best effort; the page still renders.
		h.Log.Warn("events: count registrations", zap.Error(err))
	}

	full := ev.Capacity != nil && taken >= int64(*ev.Capacity)

	data := detailData{
		BaseVM:          viewdata.NewBaseVM(r, ev.Title, "/events"),
		Event:           *ev,
		DescriptionHTML: template.HTML(ev.Description),
		SpotsTaken:      taken,
		Full:            full,
	}

	templates.Render(w, r, "event_detail", data)
}
