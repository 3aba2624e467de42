// internal/app/features/register/handler.go
package register

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/communityhub/internal/app/features/errors"
	eventstore "github.com/dalemusser/communityhub/internal/app/store/events"
	"github.com/dalemusser/communityhub/internal/app/store/queries/regdetails"
	registrationstore "github.com/dalemusser/communityhub/internal/app/store/registrations"
	"github.com/dalemusser/communityhub/internal/app/store/resolve"
	"github.com/dalemusser/communityhub/internal/app/store/storeerr"
	userstore "github.com/dalemusser/communityhub/internal/app/store/users"
	"github.com/dalemusser/communityhub/internal/app/system/authz"
	"github.com/dalemusser/communityhub/internal/app/system/normalize"
	"github.com/dalemusser/communityhub/internal/app/system/timeouts"
	"github.com/dalemusser/communityhub/internal/app/system/viewdata"
	"github.com/dalemusser/communityhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves event registration: creating, listing and cancelling a
// signed-in user's registrations.
type Handler struct {
	Events        *eventstore.Store
	Registrations *registrationstore.Store
	Users         *userstore.Store
	Resolver      *resolve.Resolver
	ErrLog        *uierrors.ErrorLogger
	Log           *zap.Logger
}

func NewHandler(db *mongo.Database, resolver *resolve.Resolver, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Events:        eventstore.New(db),
		Registrations: registrationstore.New(db),
		Users:         userstore.New(db),
		Resolver:      resolver,
		ErrLog:        errLog,
		Log:           logger,
	}
}

type myRegistrationsData struct {
	viewdata.BaseVM
	Registrations []regdetails.RegistrationDetail
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /registrations – my registrations                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	regs, err := regdetails.ListForUser(ctx, h.Resolver, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "register: list my registrations", err, "Could not load your registrations.", "/")
		return
	}

	templates.Render(w, r, "my_registrations", myRegistrationsData{
		BaseVM:        viewdata.NewBaseVM(r, "My registrations", "/"),
		Registrations: regs,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /registrations – register for an event                                 |
*─────────────────────────────────────────────────────────────────────────────*/

type createRequest struct {
	EventID string `json:"event_id"`
	Role    string `json:"role"`
	Notes   string `json:"notes"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "")
		return
	}

	req, err := decodeCreate(r)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "register: parse request", err, "Invalid registration data.", "/events")
		return
	}

	eventID, err := primitive.ObjectIDFromHex(req.EventID)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "register: bad event id", err, "Invalid registration data.", "/events")
		return
	}

	role := normalize.RegRole(req.Role)
	if role == normalize.RoleVolunteer && !authz.IsVolunteerEligible(r) {
		h.ErrLog.LogBadRequest(w, r, "register: not volunteer eligible", errors.New("role not permitted"),
			"Your account is not eligible to volunteer.", "/events")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ev, err := h.Events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			h.ErrLog.LogNotFound(w, r, "register: event not found", "Event not found.", "/events")
			return
		}
		h.ErrLog.LogServerError(w, r, "register: load event", err, "Could not register.", "/events")
		return
	}
	if !ev.Active {
		h.ErrLog.LogNotFound(w, r, "register: inactive event", "Event not found.", "/events")
		return
	}

	if ev.Capacity != nil {
		taken, err := h.Registrations.CountActiveForEvent(ctx, ev.ID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "register: count registrations", err, "Could not register.", "/events")
			return
		}
		if taken >= int64(*ev.Capacity) {
			h.ErrLog.LogBadRequest(w, r, "register: event full", errors.New("capacity reached"),
				"This event is full.", "/events/"+ev.ID.Hex())
			return
		}
	}

	// Snapshot contact details so later profile edits don't rewrite what
	// the organizer was told.
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "register: load profile", err, "Could not register.", "/events")
		return
	}

	reg, err := h.Registrations.Create(ctx, models.Registration{
		EventID:      ev.ID,
		UserID:       userID,
		Role:         role,
		Notes:        req.Notes,
		ContactName:  u.FullName,
		ContactPhone: u.Phone,
	})
	if err != nil {
		if storeerr.IsConflict(err) {
			h.ErrLog.LogBadRequest(w, r, "register: duplicate", err,
				"You are already registered for this event.", "/registrations")
			return
		}
		h.ErrLog.LogServerError(w, r, "register: create", err, "Could not register.", "/events")
		return
	}

	h.Log.Info("registration created",
		zap.String("event_id", ev.ID.Hex()),
		zap.String("user_id", userID.Hex()),
		zap.String("role", reg.Role))

	if isJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(reg)
		return
	}
	http.Redirect(w, r, "/registrations", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /registrations/{regID}/cancel                                          |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "")
		return
	}

	regID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "regID"))
	if err != nil {
		h.ErrLog.LogNotFound(w, r, "register: bad registration id", "Registration not found.", "/registrations")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	reg, err := h.Registrations.GetByID(ctx, regID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			h.ErrLog.LogNotFound(w, r, "register: not found", "Registration not found.", "/registrations")
			return
		}
		h.ErrLog.LogServerError(w, r, "register: load registration", err, "Could not cancel.", "/registrations")
		return
	}

	// Users may only cancel their own registrations.
	if reg.UserID != userID {
		h.ErrLog.LogNotFound(w, r, "register: cancel foreign registration", "Registration not found.", "/registrations")
		return
	}

	if err := h.Registrations.SetStatus(ctx, regID, normalize.StatusCancelled); err != nil {
		h.ErrLog.LogServerError(w, r, "register: cancel", err, "Could not cancel.", "/registrations")
		return
	}

	if isJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": normalize.StatusCancelled})
		return
	}
	http.Redirect(w, r, "/registrations", http.StatusSeeOther)
}

// decodeCreate accepts either a JSON body or a classic form post.
func decodeCreate(r *http.Request) (createRequest, error) {
	var req createRequest
	if isJSON(r) {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, err
		}
		return req, nil
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.EventID = r.FormValue("event_id")
	req.Role = r.FormValue("role")
	req.Notes = r.FormValue("notes")
	return req, nil
}

func isJSON(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "application/json")
}
