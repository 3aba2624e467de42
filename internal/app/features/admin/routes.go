// internal/app/features/admin/routes.go
package admin

import "github.com/go-chi/chi/v5"

// Routes is mounted under /admin. The request guard has already enforced
// the admin role for everything under this prefix.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeDashboard)

	r.Route("/events", func(er chi.Router) {
		er.Get("/", h.HandleListEvents)
		er.Post("/", h.HandleCreateEvent)
		er.Put("/{eventID}", h.HandleUpdateEvent)
		er.Delete("/{eventID}", h.HandleDeactivateEvent)
	})

	r.Route("/registrations", func(rr chi.Router) {
		rr.Get("/", h.HandleListRegistrations)
		rr.Post("/{regID}/approve", h.HandleApproveRegistration)
		rr.Post("/{regID}/reject", h.HandleRejectRegistration)
	})

	return r
}
