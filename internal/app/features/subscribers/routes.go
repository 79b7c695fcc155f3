package subscribers

import (
	"github.com/dalemusser/twfhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeSubscribers)
		pr.Post("/", h.HandleSubscribers)
	})
	return r
}
