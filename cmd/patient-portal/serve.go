package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/medrecords/patient-portal/internal/api"
	"github.com/medrecords/patient-portal/internal/api/handler"
	"github.com/medrecords/patient-portal/internal/core/service"
	"github.com/medrecords/patient-portal/internal/infrastructure/db/mongo"
	"github.com/medrecords/patient-portal/internal/infrastructure/db/redis"
	"github.com/medrecords/patient-portal/internal/infrastructure/turnstile"
	"github.com/medrecords/patient-portal/internal/pkg/config"
	"github.com/medrecords/patient-portal/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

// loadRuntime reads the configuration and initialises the global logger,
// available afterwards through logger.Get.
func loadRuntime(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	logger.Init(logger.ForEnv(cfg.Env, cfg.LogLevel))
	return cfg, nil
}

func runServer(ctx context.Context) error {
	cfg, err := loadRuntime(ctx)
	if err != nil {
		return err
	}
	log := logger.Get()

	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.MongoURI(), Database: cfg.Mongo.Database})
	if err != nil {
		log.Error().Err(err).Msg("failed to connect to mongo")
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}()
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongo")

	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		log.Error().Err(err).Msg("failed to ensure indexes")
		return err
	}

	deps := api.Dependencies{
		AuthService:     service.NewAuthService(mongo.NewUserRepository(db), cfg.JWTSecret, service.DefaultSessionTTL, log),
		PatientService:  service.NewPatientService(mongo.NewPatientRepository(db), log),
		BotVerifier:     turnstile.NewVerifier(cfg.Turnstile.SecretKey, cfg.Turnstile.VerifyURL, log),
		RateLimitMax:    cfg.RateLimit.Max,
		RateLimitWindow: cfg.RateLimit.Window,
		Readiness:       map[string]handler.Pinger{"mongo": handler.MongoPinger(db)},
		SessionTTL:      service.DefaultSessionTTL,
		FrontendURL:     cfg.FrontendURL,
		APIURL:          cfg.APIURL,
		Log:             log,
	}

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	switch {
	case errors.Is(err, redis.ErrNoAddress):
		log.Info().Msg("redis not configured, rate limiting in memory")
	case err != nil:
		log.Error().Err(err).Msg("failed to connect to redis")
		return err
	default:
		defer rdb.Close()
		deps.RateLimitStore = redis.NewRateLimitStore(rdb, cfg.RateLimit.Max, cfg.RateLimit.Window, log)
		deps.Readiness["redis"] = handler.RedisPinger(rdb)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("rate limiting in redis")
	}

	e := api.NewRouter(deps)

	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
