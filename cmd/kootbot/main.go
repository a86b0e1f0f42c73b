// Command kootbot runs the moderation bot gateway.
//
// It loads configuration from the environment (optionally seeded from a
// .env file), opens the SQLite tally store, reads the webhook credential
// from the token file, and serves the HTTP API until interrupted.
package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kootkounter/kootbot/internal/config"
	httpapi "github.com/kootkounter/kootbot/internal/http"
	"github.com/kootkounter/kootbot/internal/observability"
	"github.com/kootkounter/kootbot/internal/repo"
	"github.com/kootkounter/kootbot/internal/sysutil"
)

const shutdownGrace = 10 * time.Second

// version is stamped via -ldflags "-X main.version=..." on release builds.
var version = "dev"

func main() {
	// Best effort; the file is optional outside development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	closeLog := setupLogging(cfg)
	defer closeLog()

	token, err := readToken(cfg.TokenFile)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.TokenFile).Msg("could not read token file")
	}

	otelShutdown, err := observability.SetupOTel(context.Background(), cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("could not set up tracing")
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("could not open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, cfg, token)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("db", cfg.DBPath).
			Str("trigger", cfg.Trigger).
			Dur("warn_interval", cfg.WarnInterval).
			Bool("auto_register", cfg.AutoRegister).
			Msg("kootbot gateway listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	// Let in-flight tally writes commit before the database handle closes.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown incomplete")
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error().Err(err).Msg("closing database")
		}
	}
	if err := otelShutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("flushing traces")
	}
	log.Info().Msg("kootbot stopped")
}

// setupLogging configures zerolog per cfg and returns a cleanup func that
// closes the log file, if one was opened.
func setupLogging(cfg config.Config) func() {
	sysutil.SetLogLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var console io.Writer = os.Stderr
	if cfg.LogPretty {
		console = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	if cfg.LogDir == "" {
		log.Logger = zerolog.New(console).With().Timestamp().Logger()
		return func() {}
	}

	f, err := sysutil.OpenLogFile(cfg.LogDir, "kootbot.log")
	if err != nil {
		log.Logger = zerolog.New(console).With().Timestamp().Logger()
		log.Warn().Err(err).Str("dir", cfg.LogDir).Msg("log file unavailable, console only")
		return func() {}
	}
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(console, f)).With().Timestamp().Logger()
	return func() { _ = f.Close() }
}

// readToken loads the webhook credential from path and trims surrounding
// whitespace, so trailing newlines in secret files are harmless.
func readToken(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(b))
	if token == "" {
		return "", errors.New("token file is empty")
	}
	return token, nil
}
