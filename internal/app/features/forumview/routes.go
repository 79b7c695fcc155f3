package forumview

import (
	"github.com/dalemusser/twfhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// ForumRoutes is mounted at /twf/forum.
func ForumRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/{id}", h.ServeForum)
	})
	return r
}

// CourseRoutes is mounted at /twf/course.
func CourseRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/{id}", h.ServeCourse)
	})
	return r
}
