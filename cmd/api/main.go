package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/limbo/fittrack/internal/api"
	"github.com/limbo/fittrack/internal/notify"
	"github.com/limbo/fittrack/internal/repository"
	"github.com/limbo/fittrack/internal/service"
	"github.com/limbo/fittrack/pkg/cleanup"
	"github.com/limbo/fittrack/pkg/config"
	jwtservice "github.com/limbo/fittrack/pkg/jwt_service"
	"github.com/limbo/fittrack/pkg/logging"
	"github.com/limbo/fittrack/pkg/metrics"
	"github.com/limbo/fittrack/pkg/ratelimit"
	"github.com/pressly/goose"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func init() {
	service.InitValidator()
}

func main() {
	cfg := config.New()
	logging.Setup(logging.SetupParams{
		LogFileName: cfg.GetString("LOG_FILE"),
		LogLevel:    cfg.GetString("LOG_LEVEL"),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbCfg := repository.PGCfg{
		Address:  cfg.GetString("POSTGRES_DB_ADDRESS"),
		Username: cfg.GetString("POSTGRES_USER"),
		Password: cfg.GetString("POSTGRES_PASSWORD"),
		DB:       cfg.GetString("POSTGRES_DB"),
	}
	pool, err := repository.NewPool(ctx, &dbCfg)
	if err != nil {
		log.Fatal("connecting to postgres error: ", err)
	}
	if cfg.GetBool("RUN_MIGRATIONS", false) {
		if err = migrate(pool, cfg.GetStringOr("MIGRATIONS_DIR", "./migrations")); err != nil {
			log.Fatal("applying migrations error: ", err)
		}
	}

	secret := cfg.GetString("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	policy, err := service.ParseStreakPolicy(cfg.GetString("STREAK_POLICY"))
	if err != nil {
		log.Fatal(err)
	}
	loc := cfg.GetLocation("APP_TIMEZONE")
	verifier, err := providerVerifier(cfg)
	if err != nil {
		log.Fatal("configuring identity providers error: ", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metricsManager := metrics.NewManager("fittrack", "api", reg)

	hub := notify.NewHub()
	usersRepo := repository.NewUsersRepoWithConn(pool)
	workoutsRepo := repository.NewWorkoutsRepoWithConn(pool)

	listenCtx, stopListening := context.WithCancel(ctx)
	listenerDone := make(chan struct{})
	go func() {
		defer close(listenerDone)
		err := repository.NewWorkoutsListener(pool).Listen(listenCtx, hub.Publish)
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("workouts listener stopped", slog.String("error", err.Error()))
		}
	}()

	servicesList := &api.ServicesList{
		UserService: service.NewUserService(usersRepo, verifier),
		WorkoutsService: service.NewWorkoutsService(workoutsRepo, service.WorkoutsOptions{
			Policy:    policy,
			Location:  loc,
			Publisher: hub,
			Metrics:   metricsManager,
		}),
		DashboardService: service.NewDashboardService(workoutsRepo, loc, hub),
		JWTService:       jwtservice.New(secret),
		AuthRatePerMin:   cfg.GetInt("AUTH_RATE_PER_MIN", 20),
		Metrics:          metricsManager,
		MetricsHandler:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	}
	if addr := cfg.GetString("REDIS_ADDRESS"); addr != "" {
		limiter, err := ratelimit.NewRedisLimiter(ctx, addr, cfg.GetString("REDIS_PASSWORD"))
		if err != nil {
			log.Fatal(err)
		}
		servicesList.Limiter = limiter
	} else {
		slog.Warn("REDIS_ADDRESS is not set, auth endpoints are not rate limited")
	}
	serv := api.New(servicesList)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- serv.Run(cfg.GetStringOr("API_ADDRESS", ":8080"))
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err = <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.String("error", err.Error()))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err = serv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", slog.String("error", err.Error()))
	}
	stopListening()
	<-listenerDone
	if err = cleanup.CleanUp(); err != nil {
		slog.Error("cleanup finished with errors", slog.String("error", err.Error()))
	}
}

func migrate(pool *pgxpool.Pool, dir string) error {
	db := stdlib.OpenDBFromPool(pool)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(db, dir)
}

// providerVerifier builds the verifier from <PROVIDER>_PUBLIC_KEY_FILE, _ISSUER and _AUDIENCE.
// Providers without a key file are disabled.
func providerVerifier(cfg *config.Config) (*jwtservice.ProviderVerifier, error) {
	var configs []jwtservice.ProviderConfig
	for _, name := range []string{jwtservice.ProviderGoogle, jwtservice.ProviderFacebook, jwtservice.ProviderApple} {
		prefix := strings.ToUpper(name)
		keyFile := cfg.GetString(prefix + "_PUBLIC_KEY_FILE")
		if keyFile == "" {
			continue
		}
		pem, err := os.ReadFile(keyFile)
		if err != nil {
			return nil, errors.New("reading " + name + " public key error: " + err.Error())
		}
		configs = append(configs, jwtservice.ProviderConfig{
			Name:         name,
			Issuer:       cfg.GetString(prefix + "_ISSUER"),
			Audience:     cfg.GetString(prefix + "_AUDIENCE"),
			PublicKeyPEM: pem,
		})
	}
	verifier, err := jwtservice.NewProviderVerifier(configs...)
	if err != nil {
		return nil, err
	}
	slog.Info("identity providers configured", slog.Any("providers", verifier.Providers()))
	return verifier, nil
}
