package playground

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Get("/start", StartSessionHandler)
	r.Get("/", HomeHandler)
	r.Get("/api/styles", StylesHandler)
	r.Post("/api/selfie", SelfieHandler)
	r.Post("/api/generate", GenerateHandler)

	return r
}
