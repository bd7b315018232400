package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "vet-registry/docs"
	mem "vet-registry/internal/adapters/storage/memory"
	"vet-registry/internal/domain/appointments"
	"vet-registry/internal/domain/audit"
	"vet-registry/internal/domain/stats"
	"vet-registry/internal/domain/tutors"
	"vet-registry/internal/domain/visits"
	"vet-registry/internal/middleware"
	"vet-registry/internal/platform/logger"
	"vet-registry/internal/platform/metrics"
	"vet-registry/internal/ports/auth"
)

// Store lo cumplen memory.Store y sqlstore.Store.
type Store interface {
	visits.Store
	Appointments() appointments.Repository
}

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (sin login)
	// DebugUserHeader acepta X-Debug-User-ID como actor cuando no hay
	// verifier. Sólo para desarrollo local (AUTH_DEBUG_HEADER).
	DebugUserHeader bool

	// Opcional: si no viene, in-memory.
	Store Store

	Logger       logger.Logger
	TutorMode    tutors.Mode
	DefaultActor string
	Location     *time.Location
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	store := opts.Store
	if store == nil {
		log.Warn("no store configured, using in-memory storage", nil)
		store = mem.NewStore()
	}
	if opts.DefaultActor == "" {
		opts.DefaultActor = audit.SystemActor
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover(log))
	r.Use(middleware.AccessLog(log))
	r.Use(metrics.Middleware)

	r.Use(middleware.AuthContext(opts.AuthVerifier, opts.DebugUserHeader))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Services por módulo
	auditSvc := audit.NewService(store.Audit(), log.With(map[string]any{"module": "audit"}))
	tutorsSvc := tutors.NewService(store.Tutors(), opts.TutorMode)
	visitsSvc := visits.NewService(
		store,
		tutorsSvc.Resolver(),
		auditSvc,
		log.With(map[string]any{"module": "visits"}),
	)
	appointmentsSvc := appointments.NewService(
		store.Appointments(),
		opts.Location,
		log.With(map[string]any{"module": "appointments"}),
	)
	engine := stats.NewEngine(visitsSvc, appointmentsSvc, opts.Location)

	// Rutas por módulo
	r.Group(func(api chi.Router) {
		if opts.AuthVerifier != nil {
			api.Use(middleware.RequireAuth)
		}
		visits.RegisterRoutes(api, visitsSvc, opts.DefaultActor)
		tutors.RegisterRoutes(api, tutorsSvc)
		appointments.RegisterRoutes(api, appointmentsSvc)
		audit.RegisterRoutes(api, auditSvc)
		stats.RegisterRoutes(api, engine)
	})

	return r
}
