package main

import (
	"net/http"
	"os"
	"time"

	"safety-inspections/internal/adapters/auth/identity"
	"safety-inspections/internal/adapters/capabilities/plansfeatures"
	"safety-inspections/internal/platform/logger"
	"safety-inspections/internal/ports/auth"
	"safety-inspections/internal/ports/capabilities"
	"safety-inspections/internal/router"
)

// @title safety-inspections API
// @version 1.0
// @description Subsistema de compartición de inspecciones por link con token.
// @BasePath /
func main() {
	log := logger.NewFromEnv()

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	// IdP: solo si está configurado; sin verifier queda el modo dev
	// con X-Debug-User-ID.
	var verifier auth.AuthVerifier
	if base := os.Getenv("IDENTITY_BASE_URL"); base != "" {
		client, err := identity.NewClient(identity.Config{
			BaseURL: base,
			APIKey:  os.Getenv("IDENTITY_API_KEY"),
		})
		if err != nil {
			log.Error("identity client init failed", map[string]any{"err": err.Error()})
			os.Exit(1)
		}
		verifier = identity.NewVerifier(client)
		log.Info("identity verifier enabled", nil)
	}

	// plans-features: gate opcional de la feature de sharing.
	var caps capabilities.CapabilitiesResolver
	if base := os.Getenv("PLANS_BASE_URL"); base != "" {
		client, err := plansfeatures.NewClient(plansfeatures.Config{
			BaseURL: base,
			APIKey:  os.Getenv("PLANS_API_KEY"),
		})
		if err != nil {
			log.Error("plans-features client init failed", map[string]any{"err": err.Error()})
			os.Exit(1)
		}
		caps = plansfeatures.NewResolver(client)
		log.Info("capabilities resolver enabled", nil)
	}

	r := router.NewRouter(router.Options{
		AuthVerifier: verifier,
		Capabilities: caps,
		Logger:       log,
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("starting server", map[string]any{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
}
