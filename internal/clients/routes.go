package clients

import (
	"net/http"

	"github.com/BarberLink/BL-Backend/internal/accounts"
	"github.com/BarberLink/BL-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()
	sessionFetcher := accounts.SessionInfo{}

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Get("/", ListHandler)
		r.Post("/", CreateHandler)
		r.Get("/{id}", GetHandler)
		r.Patch("/{id}", UpdateHandler)
		r.Delete("/{id}", DeleteHandler)
		r.Post("/{id}/comments", AddCommentHandler)
	})

	return r
}
