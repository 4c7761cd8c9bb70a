package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/reelquiz/reelquiz/internal/cache"
	"github.com/reelquiz/reelquiz/internal/config"
	"github.com/reelquiz/reelquiz/internal/httpapi"
	"github.com/reelquiz/reelquiz/internal/library"
	"github.com/reelquiz/reelquiz/internal/logging"
	"github.com/reelquiz/reelquiz/internal/metadata"
	"github.com/reelquiz/reelquiz/internal/pathmap"
	"github.com/reelquiz/reelquiz/internal/quote"
	"github.com/reelquiz/reelquiz/internal/session"
	"github.com/reelquiz/reelquiz/internal/trivia"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatal("failed to load configuration: ", err)
	}

	logging.Configure(logging.Config{Level: cfg.Server.LogLevel})
	logger := logging.Base()

	colorStore := cache.NewStore(filepath.Join(cfg.Cache.Dir, "frame_colors"), "frame_colors")
	stillStore := cache.NewStore(filepath.Join(cfg.Cache.Dir, "still_frames"), "still_frames")
	tmdbStore := cache.NewStore(filepath.Join(cfg.Cache.Dir, "tmdb_data"), "tmdb_data")
	stores := map[string]*cache.Store{
		"frame_colors": colorStore,
		"still_frames": stillStore,
		"tmdb_data":    tmdbStore,
	}

	lib := library.NewPlexClient(cfg.Plex.BaseURL, cfg.Plex.Token)

	var meta metadata.Client
	if cfg.TMDb.APIKey != "" {
		meta = metadata.NewCachedClient(
			metadata.NewTMDbClient(cfg.TMDb.APIKey, cfg.TMDb.APIURL, cfg.TMDb.ImageURL),
			tmdbStore,
		)
	} else {
		logger.Warn().Msg("TMDB_API_KEY is not set, questions will carry library data only")
	}

	rules := pathmap.DefaultRules(cfg.Media.BasePath)
	if cfg.Media.RewriteRules != "" {
		rules = pathmap.ParseRules(cfg.Media.RewriteRules)
	}
	resolver := pathmap.NewResolver(rules)

	sessions := session.NewRegistry()

	engine := trivia.NewEngine(lib, meta, resolver, sessions, colorStore, stillStore, trivia.Options{
		FrameSampleTarget: cfg.Trivia.FrameSampleTarget,
		StillFrameCount:   cfg.Trivia.StillFrameCount,
		Quote: quote.Options{
			MinLines:   cfg.Trivia.QuoteMinLines,
			MaxLines:   cfg.Trivia.QuoteMaxLines,
			MinLineLen: cfg.Trivia.QuoteMinLineLen,
			MaxLineLen: cfg.Trivia.QuoteMaxLineLen,
			MaxGap:     cfg.Trivia.QuoteMaxGap,
		},
	})

	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every 5m", func() {
		if n := sessions.Sweep(cfg.Session.MaxAge); n > 0 {
			logger.Info().Int("removed", n).Msg("session sweep")
		}
	}); err != nil {
		log.Fatal("failed to schedule session sweep: ", err)
	}
	if cfg.Cache.MaxAge > 0 {
		if _, err := scheduler.AddFunc("@every 1h", func() {
			for name, store := range stores {
				n, err := store.Clear(cfg.Cache.MaxAge)
				if err != nil {
					logger.Error().Err(err).Str("domain", name).Msg("cache sweep failed")
					continue
				}
				if n > 0 {
					logger.Info().Str("domain", name).Int("removed", n).Msg("cache sweep")
				}
			}
		}); err != nil {
			log.Fatal("failed to schedule cache sweep: ", err)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	server := httpapi.NewServer(engine, sessions, stores, stillStore, httpapi.WithLibrary(lib))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Server.ListenAddr).Msg("listening")
		errCh <- server.ListenAndServe(cfg.Server.ListenAddr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed: ", err)
		}
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown failed")
		}
	}
}
