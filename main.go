package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/BarberLink/BL-Backend/internal/accounts"
	"github.com/BarberLink/BL-Backend/internal/appointments"
	"github.com/BarberLink/BL-Backend/internal/auditlog"
	"github.com/BarberLink/BL-Backend/internal/clients"
	"github.com/BarberLink/BL-Backend/internal/db"
	"github.com/BarberLink/BL-Backend/internal/middleware"
	"github.com/BarberLink/BL-Backend/internal/playground"
	"github.com/BarberLink/BL-Backend/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	response := "Server is up!"
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, response)
}

func main() {
	_ = godotenv.Load(".env.local")
	db.Connect()

	port := os.Getenv("PORT")
	if port == "" {
		port = "5050"
	}

	accounts.Init()
	auditlog.Init()
	clients.Init()
	services.Init()
	appointments.Init()
	playground.Init()

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Get("/", RootHandler)

	r.Mount("/accounts", accounts.SetupRoutes())
	r.Mount("/clients", clients.SetupRoutes())
	r.Mount("/services", services.SetupRoutes())
	r.Mount("/appointments", appointments.SetupRoutes())
	r.Mount("/audit", auditlog.SetupRoutes(accounts.SessionInfo{}))
	r.Mount("/playground", playground.SetupRoutes())

	// Stored selfies, style references, and generated previews.
	mediaServer := http.StripPrefix("/media/", http.FileServer(http.Dir(playground.MediaRoot())))
	r.Get("/media/*", func(w http.ResponseWriter, req *http.Request) {
		mediaServer.ServeHTTP(w, req)
	})

	fmt.Println("Server listening on port :" + port + "...")

	http.ListenAndServe("0.0.0.0:"+port, r)
}
