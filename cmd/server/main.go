package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/salespulse/backend/internal/ai"
	"github.com/salespulse/backend/internal/config"
	httpapi "github.com/salespulse/backend/internal/http"
	"github.com/salespulse/backend/internal/kvstore"
	"github.com/salespulse/backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "salespulse-backend").Logger()

	var cache kvstore.Store
	if cfg.CacheDir != "" {
		fileCache, err := kvstore.NewFile(cfg.CacheDir)
		if err != nil {
			logger.Fatal().Err(err).Str("dir", cfg.CacheDir).Msg("failed to open cache dir")
		}
		cache = fileCache
	} else {
		cache = kvstore.NewMemory()
	}

	var assistant ai.Assistant
	if cfg.AssistantBaseURL == "" {
		assistant = ai.MockAssistant{ModelVersion: "mock-v1"}
		logger.Info().Msg("using mock assistant")
	} else {
		assistant = &ai.OpenAICompatAssistant{
			BaseURL:   cfg.AssistantBaseURL,
			Model:     cfg.AssistantModel,
			APIKey:    cfg.AssistantAPIKey,
			MaxTokens: cfg.AssistantMaxToken,
		}
	}

	router := httpapi.Router(cfg, store.New(), assistant, cache, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
