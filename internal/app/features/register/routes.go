// internal/app/features/register/routes.go
package register

import (
	"github.com/dalemusser/communityhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/", h.ServeMine)
		pr.Post("/", h.HandleCreate)
		pr.Post("/{regID}/cancel", h.HandleCancel)
	})

	return r
}
