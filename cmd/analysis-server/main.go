package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/tiptopassets/analysis-engine/internal/analysis"
	"github.com/tiptopassets/analysis-engine/internal/geocode"
	"github.com/tiptopassets/analysis-engine/internal/httpapi"
	"github.com/tiptopassets/analysis-engine/internal/resultcache"
)

func main() {
	_ = godotenv.Load()

	addrFlag := flag.String("addr", "", "listen address (overrides LISTEN_ADDR env var)")
	dbFlag := flag.String("db", "", "path to SQLite cache file (overrides CACHE_DB_PATH env var)")
	flag.Parse()

	log := newLogger()

	addr := firstNonEmpty(*addrFlag, os.Getenv("LISTEN_ADDR"), ":8080")

	geocoderURL := strings.TrimSpace(os.Getenv("GEOCODER_BASE_URL"))
	if geocoderURL == "" {
		log.Fatal().Msg("GEOCODER_BASE_URL is required")
	}

	caller, err := analysis.NewAnthropicCallerFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("anthropic caller init failed")
	}
	narrator, err := analysis.NewAnthropicNarratorFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("anthropic narrator init failed")
	}

	var cache *resultcache.Store
	dbPath := firstNonEmpty(*dbFlag, os.Getenv("CACHE_DB_PATH"))
	if dbPath != "" {
		cache, err = resultcache.Open(dbPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", dbPath).Msg("result cache open failed")
		}
		defer cache.Close()
		log.Info().Str("path", dbPath).Msg("result cache enabled")
	}

	orch := analysis.NewOrchestrator(analysis.OrchestratorConfig{
		Runner:   analysis.NewLLMStageRunner(analysis.NewStageExecutor(caller)),
		Narrator: narrator,
		Geocoder: geocode.NewHTTPResolver(geocoderURL),
		Cache:    cacheOrNil(cache),
		Logger:   log,
	})

	var reader httpapi.Reader
	if cache != nil {
		reader = cache
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           httpapi.NewServer(orch, reader, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("analysis server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func newLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "console") {
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return log
}

func cacheOrNil(c *resultcache.Store) analysis.Cache {
	if c == nil {
		return nil
	}
	return c
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
