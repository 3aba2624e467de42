package admin

import (
	"net/http"
	"testing"

	uierrors "github.com/dalemusser/communityhub/internal/app/features/errors"
	"github.com/dalemusser/communityhub/internal/testutil"
	"go.uber.org/zap"
)

func testHandler() *Handler {
	return &Handler{
		ErrLog: uierrors.NewErrorLogger(zap.NewNop()),
		Log:    zap.NewNop(),
	}
}

func TestSetRegistrationStatus_BadID(t *testing.T) {
	h := testHandler()

	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/admin/registrations/not-a-hex-id/approve", testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "regID", "not-a-hex-id")
	req.Header.Set("Accept", "application/json")
	rec := testutil.NewRecorder()

	h.HandleApproveRegistration(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusNotFound)
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}
	rec.AssertContains(t, "Registration not found")
}

func TestRejectRegistration_BadID(t *testing.T) {
	h := testHandler()

	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/admin/registrations/zzz/reject", testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "regID", "zzz")
	req.Header.Set("Accept", "application/json")
	rec := testutil.NewRecorder()

	h.HandleRejectRegistration(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusNotFound)
}

func TestCreateEvent_InvalidJSON(t *testing.T) {
	h := testHandler()

	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/admin/events", testutil.AdminUser())
	req.Header.Set("Content-Type", "application/json")
	rec := testutil.NewRecorder()

	h.HandleCreateEvent(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "Invalid event data")
}

func TestUpdateEvent_BadID(t *testing.T) {
	h := testHandler()

	req := testutil.NewAuthenticatedRequest(http.MethodPut, "/admin/events/nope", testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "eventID", "nope")
	req.Header.Set("Accept", "application/json")
	rec := testutil.NewRecorder()

	h.HandleUpdateEvent(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertContains(t, "Event not found")
}
