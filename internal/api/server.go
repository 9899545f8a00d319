package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/limbo/fittrack/internal/service"
	"github.com/limbo/fittrack/pkg/httputil"
	"github.com/limbo/fittrack/pkg/metrics"
	"github.com/limbo/fittrack/pkg/ratelimit"
)

const defaultAuthRatePerMin = 20

type Server struct {
	mx               *chi.Mux
	srv              *http.Server
	userService      service.UserServiceI
	workoutsService  service.WorkoutsServiceI
	dashboardService service.DashboardServiceI
	jwtService       JWTServiceI
	limiter          ratelimit.RequestRateLimiter
	authRatePerMin   int
	metrics          *metrics.Manager
	// closed by Shutdown, ends long-lived streams
	shutdown     chan struct{}
	shutdownOnce sync.Once
}

type ServicesList struct {
	UserService      service.UserServiceI
	WorkoutsService  service.WorkoutsServiceI
	DashboardService service.DashboardServiceI
	JWTService       JWTServiceI
	// Optional. Auth endpoints are not limited when nil
	Limiter        ratelimit.RequestRateLimiter
	AuthRatePerMin int
	// Optional
	Metrics        *metrics.Manager
	MetricsHandler http.Handler
}

func New(servicesOptions *ServicesList) *Server {
	s := &Server{
		mx:               chi.NewMux(),
		userService:      servicesOptions.UserService,
		workoutsService:  servicesOptions.WorkoutsService,
		dashboardService: servicesOptions.DashboardService,
		jwtService:       servicesOptions.JWTService,
		limiter:          servicesOptions.Limiter,
		authRatePerMin:   servicesOptions.AuthRatePerMin,
		metrics:          servicesOptions.Metrics,
		shutdown:         make(chan struct{}),
	}
	if s.authRatePerMin <= 0 {
		s.authRatePerMin = defaultAuthRatePerMin
	}
	s.mountRoutes(servicesOptions.MetricsHandler)
	return s
}

func (s *Server) mountRoutes(metricsHandler http.Handler) {
	s.mx.Use(middleware.Recoverer)
	s.mx.Use(s.RequestIDMiddleware)
	s.mx.Use(s.SettingUpLoggerMiddleware)
	s.mx.Use(s.MetricsMiddleware)

	s.mx.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{"status": "ok"})
	})
	if metricsHandler != nil {
		s.mx.Handle("/metrics", metricsHandler)
	}

	s.mx.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(ratelimit.Middleware(s.limiter, "auth", s.authRatePerMin, s.onRateLimited))
				r.Post("/signup", s.SignUp)
				r.Post("/login", s.Login)
				r.Post("/social", s.SocialLogin)
			})
			r.With(s.AuthMiddleware, s.LoggerExtensionMiddleware).Get("/session", s.Session)
		})

		r.Get("/catalog", s.GetLevels)
		r.Get("/catalog/{level}", s.GetGroups)
		r.Get("/catalog/{level}/{group}", s.GetExercises)

		r.Group(func(r chi.Router) {
			r.Use(s.AuthMiddleware)
			r.Use(s.LoggerExtensionMiddleware)

			r.Post("/workouts", s.LogWorkout)
			r.Get("/workouts", s.GetWorkouts)
			r.Get("/workouts/completed", s.GetCompletedWorkouts)

			r.Get("/dashboard", s.GetDashboard)
			r.Get("/dashboard/stream", s.StreamDashboard)

			r.Get("/profile", s.GetProfile)
			r.Put("/profile", s.UpdateProfile)

			r.Post("/progress/fat-loss", s.EstimateFatLoss)
		})
	})
}

func (s *Server) onRateLimited() {
	if s.metrics != nil {
		s.metrics.CounterRateLimited.Inc()
	}
}

func (s *Server) Handler() http.Handler {
	return s.mx
}

// Run blocks until the server stops. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Run(addr string) error {
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.mx,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// No write timeout: dashboard streams are long-lived
		IdleTimeout: 60 * time.Second,
	}
	slog.Info("api server listening", slog.String("address", addr))
	return s.srv.ListenAndServe()
}

// Shutdown ends open dashboard streams first, since http.Server.Shutdown
// waits for active handlers without cancelling their contexts.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() { close(s.shutdown) })
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
