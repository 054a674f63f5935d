package accounts

import (
	"net/http"

	"github.com/BarberLink/BL-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()
	sessionFetcher := SessionInfo{}

	r.Post("/login", LoginHandler)
	r.Post("/logout", LogoutHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Get("/me", MeHandler)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Use(middleware.AdminMiddleware(sessionFetcher))
		r.Post("/register", RegisterHandler)
		r.Get("/permissions", ListTogglesHandler)
		r.Post("/permissions", UpsertToggleHandler)
		r.Delete("/permissions/{id}", DeleteToggleHandler)
	})

	return r
}
