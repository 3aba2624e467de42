package gallery

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	uierrors "github.com/dalemusser/communityhub/internal/app/features/errors"
	"github.com/dalemusser/communityhub/internal/testutil"
	"go.uber.org/zap"
)

func testHandler(t *testing.T) *Handler {
	t.Helper()
	return &Handler{
		ErrLog:     uierrors.NewErrorLogger(zap.NewNop()),
		Log:        zap.NewNop(),
		UploadsDir: t.TempDir(),
	}
}

// multipartUpload builds a multipart body with the given photo bytes and
// extra form fields.
func multipartUpload(t *testing.T, photo []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if photo != nil {
		fw, err := mw.CreateFormFile("photo", "photo.bin")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(photo); err != nil {
			t.Fatalf("write photo: %v", err)
		}
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func uploadRequest(t *testing.T, photo []byte, fields map[string]string) *http.Request {
	t.Helper()
	body, contentType := multipartUpload(t, photo, fields)
	req := httptest.NewRequest(http.MethodPost, "/gallery", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	return testutil.WithUser(req, testutil.RegularUser())
}

func TestHandleUpload_RejectsNonImage(t *testing.T) {
	h := testHandler(t)

	req := uploadRequest(t, []byte("definitely not an image"), nil)
	rec := testutil.NewRecorder()

	h.HandleUpload(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "Only JPEG, PNG and WebP images are accepted")
}

func TestHandleUpload_MissingFile(t *testing.T) {
	h := testHandler(t)

	req := uploadRequest(t, nil, map[string]string{"caption": "no photo"})
	rec := testutil.NewRecorder()

	h.HandleUpload(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "Please choose a photo to upload")
}

func TestHandleUpload_BadEventID(t *testing.T) {
	h := testHandler(t)

	// Minimal valid PNG signature so content sniffing passes.
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}
	req := uploadRequest(t, png, map[string]string{"event_id": "not-an-object-id"})
	rec := testutil.NewRecorder()

	h.HandleUpload(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "Invalid event")
}

func TestServeEvent_BadID(t *testing.T) {
	h := testHandler(t)

	req := testutil.NewRequest(http.MethodGet, "/gallery/event/nope")
	req = testutil.WithChiURLParam(req, "eventID", "nope")
	req.Header.Set("Accept", "application/json")
	rec := testutil.NewRecorder()

	h.ServeEvent(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusNotFound)
}
