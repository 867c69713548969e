package httphandlers

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"net/http"
)

func Routes(h *ApiHandler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/v1", func(rr chi.Router) {
		rr.Post("/auth/signup", h.Signup)
		rr.Post("/auth/login", h.Login)
		rr.Get("/users/{username}/dashboards", h.ListDashboards)
		rr.Get("/pages/{url}", h.GetPage)
		rr.Get("/dashboards/{id}/verification", h.VerificationStatus)

		rr.Group(func(pr chi.Router) {
			pr.Use(h.RequireUser)
			pr.Get("/auth/validate", h.Validate)
			pr.Post("/dashboards", h.CreateDashboard)
			pr.Patch("/dashboards/{id}", h.UpdateDashboard)
			pr.Delete("/dashboards/{id}", h.DeleteDashboard)
			pr.Put("/dashboards/{id}/sections", h.ReplaceSections)
			pr.Post("/dashboards/{id}/verification/token", h.IssueVerificationToken)
			pr.Post("/dashboards/{id}/verification/verify", h.VerifyDomain)
			pr.Get("/dashboards/{id}/verification/events", h.VerificationEvents)
			pr.Get("/media", h.ListMedia)
			pr.Post("/media", h.UploadMedia)
			pr.Delete("/media/{id}", h.DeleteMedia)
		})

		rr.Get("/h", h.Ping)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeNotFound(w)
	})
	return r
}
