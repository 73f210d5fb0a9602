package router

import (
	"errors"
	"net/http"

	_ "medication-dashboard/docs"
	"medication-dashboard/internal/adapters/remote/medapi"
	mem "medication-dashboard/internal/adapters/storage/memory"
	"medication-dashboard/internal/domain/administrations"
	"medication-dashboard/internal/domain/calendar"
	"medication-dashboard/internal/domain/medications"
	"medication-dashboard/internal/domain/patients"
	"medication-dashboard/internal/domain/schedules"
	"medication-dashboard/internal/middleware"
	"medication-dashboard/internal/platform/httpclient"
	"medication-dashboard/internal/platform/querycache"
	"medication-dashboard/internal/platform/respond"
	"medication-dashboard/internal/ports/session"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

type Options struct {
	Logger *zap.Logger

	// API remoto. BaseURL vacío => sandbox en memoria.
	// Tokens y OnUnauthorized los completa el router.
	API httpclient.Config

	// Opcional: sandbox a usar cuando no hay BaseURL (tests). nil => uno nuevo.
	Sandbox *mem.Sandbox
	// SeedSandbox carga datos de ejemplo en el sandbox.
	SeedSandbox bool

	// Opcional: store del token. nil => memoria.
	Tokens session.TokenStore

	LoginURL string
}

// App es el handler HTTP y dueño del cache de la aplicación.
type App struct {
	http.Handler

	Store *querycache.Store
}

// Close cancela los fetches en curso del cache.
func (a *App) Close() {
	a.Store.Close()
}

type repos struct {
	patients        patients.Repository
	medications     medications.Repository
	schedules       schedules.Repository
	administrations administrations.Repository
}

func NewRouter(opts Options) (*App, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	tokens := opts.Tokens
	if tokens == nil {
		tokens = mem.NewSessionRepo()
	}
	rs := respond.New(opts.LoginURL, log)

	rp, err := buildRepos(opts, tokens, log)
	if err != nil {
		return nil, err
	}

	owners := schedules.NewOwners()
	store := querycache.New(querycache.Chain(
		patients.Fetchers(rp.patients),
		medications.Fetchers(rp.medications),
		schedules.Fetchers(rp.schedules, owners),
		administrations.Fetchers(rp.administrations),
	), log)

	// Services por módulo
	patientsSvc := patients.NewService(rp.patients, store, log)
	medsSvc := medications.NewService(rp.medications, store, log)
	schedulesSvc := schedules.NewService(rp.schedules, store, owners, log)
	adminsSvc := administrations.NewService(rp.administrations, store, log)
	calendarSvc := calendar.NewService(schedulesSvc, adminsSvc)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog(log))
	r.Use(middleware.Recover(log))
	r.Use(middleware.SessionBootstrap(tokens, log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	registerSessionRoutes(r, tokens, store, rs)

	// Rutas por módulo
	patients.RegisterRoutes(r, patientsSvc, rs)
	medications.RegisterRoutes(r, medsSvc, rs)
	schedules.RegisterRoutes(r, schedulesSvc, rs)
	administrations.RegisterRoutes(r, adminsSvc, rs)
	calendar.RegisterRoutes(r, calendarSvc, rs)

	return &App{Handler: r, Store: store}, nil
}

func buildRepos(opts Options, tokens session.TokenStore, log *zap.Logger) (repos, error) {
	if opts.API.BaseURL == "" {
		sb := opts.Sandbox
		if sb == nil {
			sb = mem.NewSandbox()
		}
		if opts.SeedSandbox {
			p := sb.Seed()
			log.Info("sandbox api seeded", zap.String("patient_id", p.PatientID))
		}
		log.Info("using in-memory sandbox api")
		return repos{
			patients:        sb.Patients(),
			medications:     sb.Medications(),
			schedules:       sb.Schedules(),
			administrations: sb.Administrations(),
		}, nil
	}

	cfg := opts.API
	cfg.Tokens = tokens
	cfg.Logger = log
	cfg.OnUnauthorized = func() {
		log.Info("session cleared, login required")
	}
	hc, err := httpclient.New(cfg)
	if err != nil {
		return repos{}, err
	}
	api := medapi.New(hc)
	if !api.IsConfigured() {
		return repos{}, errors.New("medapi: base url not configured")
	}
	return repos{
		patients:        medapi.NewPatientsRepo(api),
		medications:     medapi.NewMedicationsRepo(api),
		schedules:       medapi.NewSchedulesRepo(api),
		administrations: medapi.NewAdministrationsRepo(api),
	}, nil
}
