// internal/app/features/gallery/routes.go
package gallery

import (
	"github.com/dalemusser/communityhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeGeneral)
	r.Get("/event/{eventID}", h.ServeEvent)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Post("/", h.HandleUpload)
	})

	return r
}
