package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"totestore/internal/auth"
	"totestore/internal/catalog"
	"totestore/internal/config"
	mydb "totestore/internal/db"
	"totestore/internal/handlers"
	"totestore/internal/logging"
	"totestore/internal/storage"
)

func openStorage(cfg config.Config) (storage.Storage, error) {
	switch cfg.StorageBackend {
	case "local":
		return storage.NewLocal(cfg.MediaRoot, cfg.MediaURL)
	case "s3":
		return storage.NewS3(storage.S3Config{
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
	}
	return nil, errors.New("STORAGE_BACKEND must be local or s3")
}

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(cfg.GinMode)

	db := mydb.MustOpen(cfg, log)
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to get sql.DB")
	}

	store, err := openStorage(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StorageBackend).Msg("failed to open storage")
	}

	routerCfg := handlers.RouterConfig{
		Catalog:        catalog.NewService(db, store, log, cfg.MaxImageBytes),
		Auth:           auth.NewService(db),
		Log:            log,
		SessionSecret:  cfg.SessionSecret,
		MaxImageBytes:  cfg.MaxImageBytes,
		Ping:           sqlDB.PingContext,
		AllowedOrigins: cfg.AllowedOrigins,
	}
	if local, ok := store.(*storage.Local); ok {
		routerCfg.MediaURL = cfg.MediaURL
		routerCfg.MediaRoot = local.Root()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(routerCfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("storage", cfg.StorageBackend).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				log.Info().Msg("shutting down")
				return srv.Shutdown(ctx)
			},
		},
	)

	exitCode := <-wait
	log.WithLevel(levelFor(exitCode)).Int("code", exitCode).Msg("server exited")
	sqlDB.Close()
	os.Exit(exitCode)
}

func levelFor(code int) zerolog.Level {
	if code != 0 {
		return zerolog.ErrorLevel
	}
	return zerolog.InfoLevel
}
