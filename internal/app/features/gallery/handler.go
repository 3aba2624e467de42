// internal/app/features/gallery/handler.go
package gallery

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	uierrors "github.com/dalemusser/communityhub/internal/app/features/errors"
	eventstore "github.com/dalemusser/communityhub/internal/app/store/events"
	gallerystore "github.com/dalemusser/communityhub/internal/app/store/gallery"
	"github.com/dalemusser/communityhub/internal/app/system/authz"
	"github.com/dalemusser/communityhub/internal/app/system/timeouts"
	"github.com/dalemusser/communityhub/internal/app/system/viewdata"
	"github.com/dalemusser/communityhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// maxUploadBytes caps gallery photo uploads.
const maxUploadBytes = 5 << 20

// allowedImageTypes are the content types accepted for uploads, as
// detected from the file bytes rather than the client-supplied header.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Handler serves the photo gallery.
type Handler struct {
	Gallery    *gallerystore.Store
	Events     *eventstore.Store
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
	UploadsDir string
}

func NewHandler(db *mongo.Database, uploadsDir string, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Gallery:    gallerystore.New(db),
		Events:     eventstore.New(db),
		ErrLog:     errLog,
		Log:        logger,
		UploadsDir: uploadsDir,
	}
}

type galleryData struct {
	viewdata.BaseVM
	EventTitle string
	Items      []models.GalleryItem
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /gallery – general bucket                                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeGeneral(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	items, err := h.Gallery.ListByEvent(ctx, nil)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "gallery: list general", err, "Could not load the gallery.", "/")
		return
	}

	templates.Render(w, r, "gallery", galleryData{
		BaseVM: viewdata.NewBaseVM(r, "Gallery", "/"),
		Items:  items,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /gallery/event/{eventID}                                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "eventID"))
	if err != nil {
		h.ErrLog.LogNotFound(w, r, "gallery: bad event id", "Event not found.", "/gallery")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ev, err := h.Events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			h.ErrLog.LogNotFound(w, r, "gallery: event not found", "Event not found.", "/gallery")
			return
		}
		h.ErrLog.LogServerError(w, r, "gallery: load event", err, "Could not load the gallery.", "/gallery")
		return
	}

	items, err := h.Gallery.ListByEvent(ctx, &eventID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "gallery: list for event", err, "Could not load the gallery.", "/gallery")
		return
	}

	templates.Render(w, r, "gallery", galleryData{
		BaseVM:     viewdata.NewBaseVM(r, ev.Title+" — Gallery", "/gallery"),
		EventTitle: ev.Title,
		Items:      items,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /gallery – photo upload (signed-in users)                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.ErrLog.LogBadRequest(w, r, "gallery: parse upload", err, "The photo is too large (5 MB max).", "/gallery")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "gallery: missing file", err, "Please choose a photo to upload.", "/gallery")
		return
	}
	defer file.Close()

	// Sniff the real content type from the leading bytes.
	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && err != io.EOF {
		h.ErrLog.LogServerError(w, r, "gallery: read upload", err, "Could not read the photo.", "/gallery")
		return
	}
	ext, allowed := allowedImageTypes[http.DetectContentType(head[:n])]
	if !allowed {
		h.ErrLog.LogBadRequest(w, r, "gallery: bad content type", errors.New("unsupported image type"),
			"Only JPEG, PNG and WebP images are accepted.", "/gallery")
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		h.ErrLog.LogServerError(w, r, "gallery: rewind upload", err, "Could not read the photo.", "/gallery")
		return
	}

	var eventID *primitive.ObjectID
	if raw := r.FormValue("event_id"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			h.ErrLog.LogBadRequest(w, r, "gallery: bad event id", err, "Invalid event.", "/gallery")
			return
		}
		eventID = &id
	}

	fileRef := uuid.NewString()
	if err := h.saveFile(file, fileRef+ext); err != nil {
		h.ErrLog.LogServerError(w, r, "gallery: save file", err, "Could not save the photo.", "/gallery")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	item, err := h.Gallery.Create(ctx, models.GalleryItem{
		EventID:    eventID,
		FileRef:    fileRef + ext,
		UploadedBy: userID,
		Caption:    r.FormValue("caption"),
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "gallery: create item", err, "Could not save the photo.", "/gallery")
		return
	}

	h.Log.Info("gallery item uploaded",
		zap.String("item_id", item.ID.Hex()),
		zap.String("uploaded_by", userID.Hex()))

	dest := "/gallery"
	if eventID != nil {
		dest = "/gallery/event/" + eventID.Hex()
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

func (h *Handler) saveFile(src io.Reader, name string) error {
	if err := os.MkdirAll(h.UploadsDir, 0o755); err != nil {
		return err
	}
	dst, err := os.Create(filepath.Join(h.UploadsDir, name))
	if err != nil {
		return err
	}
	defer dst.Close()
	_, err = io.Copy(dst, src)
	return err
}
