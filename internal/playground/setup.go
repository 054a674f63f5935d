package playground

import (
	"log"

	"github.com/BarberLink/BL-Backend/internal/db"
	"github.com/BarberLink/BL-Backend/internal/playground/provider"

	// Image providers register themselves with the provider registry.
	_ "github.com/BarberLink/BL-Backend/internal/playground/grok"
	_ "github.com/BarberLink/BL-Backend/internal/playground/nanobanana"
)

var (
	cfg         Config
	providerCfg provider.Config
	store       *Storage
	guard       *startGuard
)

// Init loads configuration and migrates the playground schema. Call after
// db.Connect.
func Init() {
	cfg = LoadFromEnv()
	providerCfg = provider.LoadFromEnv()
	store = NewStorage(cfg.MediaRoot)
	guard = newStartGuard(1, 5)

	if cfg.SigningSecret == "" {
		log.Fatal("PLAYGROUND_SIGNING_SECRET is required")
	}

	if err := db.EnsureSchema(db.DB, "app_playground"); err != nil {
		log.Fatal("Failed to ensure schema app_playground: ", err)
	}

	err := db.DB.AutoMigrate(
		&Style{},
		&BeardStyle{},
		&ColorOption{},
		&Session{},
		&Generation{},
		&RateLimitEvent{},
	)
	if err != nil {
		log.Fatalf("Playground migration failed: %v", err)
	}

	log.Printf("Playground initialized (provider=%s, media_root=%s)", providerCfg.Provider, cfg.MediaRoot)
}

// MediaRoot exposes the configured media directory for the static file server.
func MediaRoot() string { return cfg.MediaRoot }
