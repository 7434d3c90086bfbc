package router

import (
	"database/sql"
	"net/http"
	"os"

	_ "safety-inspections/docs"
	mem "safety-inspections/internal/adapters/storage/memory"
	pg "safety-inspections/internal/adapters/storage/postgres"
	"safety-inspections/internal/domain/inspections"
	"safety-inspections/internal/domain/shares"
	"safety-inspections/internal/middleware"
	"safety-inspections/internal/platform/logger"
	"safety-inspections/internal/ports/auth"
	"safety-inspections/internal/ports/capabilities"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: gate de features por plan en la creación de shares.
	Capabilities capabilities.CapabilitiesResolver

	// Opcional: si viene, usa Postgres. Si no, intenta DB_DSN y cae
	// a in-memory (dev/tests).
	DB *sql.DB

	// Base para armar las URLs públicas de los shares
	// (default: SHARE_BASE_URL o http://localhost:8080).
	ShareBaseURL string

	Logger logger.Logger
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	log := opts.Logger
	if log == nil {
		log = logger.NewFromEnv()
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	var (
		inspRepo   inspections.Repository
		sharesRepo shares.Repository
	)

	// Si no te pasan DB explícita, intenta por env (dev/handoff).
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			} else {
				log.Warn("postgres unavailable, falling back to memory", map[string]any{"err": err.Error()})
			}
		}
	}

	if db != nil {
		inspRepo = pg.NewInspectionsRepo(db)
		sharesRepo = pg.NewSharesRepo(db)
		log.Info("storage: postgres", nil)
	} else {
		inspRepo = mem.NewInspectionsRepo()
		sharesRepo = mem.NewSharesRepo()
		log.Info("storage: in-memory", nil)
	}

	shareBaseURL := opts.ShareBaseURL
	if shareBaseURL == "" {
		shareBaseURL = os.Getenv("SHARE_BASE_URL")
	}
	if shareBaseURL == "" {
		shareBaseURL = "http://localhost:8080"
	}

	inspSvc := inspections.NewService(inspRepo)
	sharesSvc := shares.NewService(sharesRepo, inspSvc)

	inspections.RegisterRoutes(r, inspSvc)
	shares.RegisterRoutes(r, sharesSvc, inspSvc, opts.Capabilities, shareBaseURL)

	return r
}
