package router

import (
	"database/sql"
	"net/http"
	"os"

	mem "athlete-clinical-history/internal/adapters/storage/memory"
	pg "athlete-clinical-history/internal/adapters/storage/postgres"
	"athlete-clinical-history/internal/domain/cases"
	"athlete-clinical-history/internal/domain/consults"
	"athlete-clinical-history/internal/domain/exams"
	"athlete-clinical-history/internal/domain/labs"
	"athlete-clinical-history/internal/domain/users"
	"athlete-clinical-history/internal/middleware"
	"athlete-clinical-history/internal/ports/analysis"
	"athlete-clinical-history/internal/ports/auth"

	_ "athlete-clinical-history/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)
	TokenIssuer  users.TokenIssuer // puede ser nil (login deshabilitado)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcional: cliente CDSS para análisis de exámenes.
	Analyzer analysis.Analyzer

	// Base del frontend para armar el fullLink de los shares.
	FrontendURL string
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	var (
		usersRepo    users.Repository
		casesRepo    cases.Repository
		examsRepo    exams.Repository
		labsRepo     labs.Repository
		consultsRepo consults.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			}
		}
	}

	if db != nil {
		usersRepo = pg.NewUsersRepo(db)
		casesRepo = pg.NewCasesRepo(db)
		examsRepo = pg.NewExamsRepo(db)
		labsRepo = pg.NewLabsRepo(db)
		consultsRepo = pg.NewConsultsRepo(db)
	} else {
		usersRepo = mem.NewUsersRepo()
		memCases := mem.NewCasesRepo()
		casesRepo = memCases
		examsRepo = mem.NewExamsRepo(memCases)
		labsRepo = mem.NewLabsRepo(memCases)
		consultsRepo = mem.NewConsultsRepo()
	}

	// Services por módulo
	usersSvc := users.NewService(usersRepo)
	casesSvc := cases.NewService(casesRepo)
	examsSvc := exams.NewService(examsRepo)
	labsSvc := labs.NewService(labsRepo)
	consultsSvc := consults.NewService(consultsRepo, usersRepo, casesRepo, examsRepo, labsRepo)

	frontendURL := opts.FrontendURL
	if frontendURL == "" {
		frontendURL = "http://localhost:5173"
	}

	// Rutas por módulo
	users.RegisterRoutes(r, usersSvc, opts.TokenIssuer)
	cases.RegisterRoutes(r, casesSvc)
	exams.RegisterRoutes(r, examsSvc, casesSvc, usersSvc, opts.Analyzer)
	labs.RegisterRoutes(r, labsSvc, casesSvc)
	consults.RegisterRoutes(r, consultsSvc, frontendURL)

	return r
}
