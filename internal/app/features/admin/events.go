// internal/app/features/admin/events.go
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dalemusser/communityhub/internal/app/system/authz"
	"github.com/dalemusser/communityhub/internal/app/system/timeouts"
	"github.com/dalemusser/communityhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	eventstore "github.com/dalemusser/communityhub/internal/app/store/events"
)

// eventRequest is the JSON body for creating or updating an event.
type eventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartsAt    time.Time `json:"starts_at"`
	Location    string    `json:"location"`
	Categories  []string  `json:"categories"`
	Capacity    *int      `json:"capacity"`
	ImageRef    string    `json:"image_ref"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /admin/events                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	events, err := h.Events.ListAll(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "admin: list events", err, "Could not load events.", "/admin")
		return
	}
	writeJSON(w, http.StatusOK, events)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /admin/events                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "admin: parse event", err, "Invalid event data.", "/admin")
		return
	}

	_, _, adminID, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ev, err := h.Events.Create(ctx, models.Event{
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		Location:    req.Location,
		Categories:  req.Categories,
		Capacity:    req.Capacity,
		ImageRef:    req.ImageRef,
		CreatedBy:   adminID,
	})
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "admin: create event", err, err.Error(), "/admin")
		return
	}

	h.Log.Info("event created",
		zap.String("event_id", ev.ID.Hex()),
		zap.String("created_by", adminID.Hex()))
	writeJSON(w, http.StatusCreated, ev)
}

/*─────────────────────────────────────────────────────────────────────────────*
| PUT /admin/events/{eventID}                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "eventID"))
	if err != nil {
		h.ErrLog.LogNotFound(w, r, "admin: bad event id", "Event not found.", "/admin")
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "admin: parse event", err, "Invalid event data.", "/admin")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err = h.Events.Update(ctx, id, eventstore.Update{
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		Location:    req.Location,
		Categories:  req.Categories,
		Capacity:    req.Capacity,
		ImageRef:    req.ImageRef,
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			h.ErrLog.LogNotFound(w, r, "admin: event not found", "Event not found.", "/admin")
			return
		}
		h.ErrLog.LogServerError(w, r, "admin: update event", err, "Could not update the event.", "/admin")
		return
	}

	ev, err := h.Events.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "admin: reload event", err, "Could not update the event.", "/admin")
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

/*─────────────────────────────────────────────────────────────────────────────*
| DELETE /admin/events/{eventID} – soft deactivate                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleDeactivateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "eventID"))
	if err != nil {
		h.ErrLog.LogNotFound(w, r, "admin: bad event id", "Event not found.", "/admin")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Events.Deactivate(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			h.ErrLog.LogNotFound(w, r, "admin: event not found", "Event not found.", "/admin")
			return
		}
		h.ErrLog.LogServerError(w, r, "admin: deactivate event", err, "Could not remove the event.", "/admin")
		return
	}

	h.Log.Info("event deactivated", zap.String("event_id", id.Hex()))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
