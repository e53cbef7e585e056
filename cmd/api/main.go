package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"server/internal/assistant"
	"server/internal/history"
	"server/internal/http/handlers"
	httpapi "server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/infra/geoip"
	"server/internal/middleware"
	"server/internal/providers/llm"
	"server/internal/providers/speech"
	"server/internal/storage"
	"server/internal/video"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	// Interaction history is optional: no DATABASE_URL means a nil repo that
	// swallows writes.
	var hist *history.Repo
	if cfg.DatabaseURL != "" {
		dbpool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer dbpool.Close()
		hist = history.NewRepo(infra.NewSQLRunner(dbpool, logger), logger)
	}

	var countryLookup middleware.CountryLookup
	if cfg.GeoIPDBPath != "" {
		resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
		if err != nil {
			logger.Warn().Err(err).Str("path", cfg.GeoIPDBPath).Msg("geoip database unavailable, falling back to headers")
		} else if resolver != nil {
			defer resolver.Close()
			countryLookup = resolver.CountryCode
		}
	}

	files, err := storage.NewFileStore(cfg.MediaDir)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.MediaDir).Msg("failed to prepare media directory")
	}
	artifacts, err := video.NewArtifactStore(files, cfg.BaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare artifact store")
	}

	httpClient := &http.Client{Timeout: 90 * time.Second}

	sarvam := speech.NewClient(speech.Options{
		APIKey:     cfg.SarvamAPIKey,
		TTSModel:   cfg.SarvamTTSModel,
		TTSSpeaker: cfg.SarvamTTSSpeaker,
		HTTPClient: httpClient,
		Logger:     logger,
	})
	chatter := llm.NewOpenRouterClient(llm.Options{
		APIKey:     cfg.OpenRouterAPIKey,
		Model:      cfg.OpenRouterModel,
		BaseURL:    cfg.OpenRouterBaseURL,
		HTTPClient: httpClient,
		Logger:     logger,
	})

	orch := assistant.NewOrchestrator(sarvam, chatter, sarvam, logger)

	videoSvc := video.NewService(video.ServiceOptions{
		Store:    artifacts,
		Scenes:   video.NewSceneSelector(files, logger),
		Encoder:  video.NewFFmpegEncoder(logger, cfg.EncodeWorkers, cfg.ProbeTimeout, cfg.EncodeTimeout),
		Narrator: sarvam,
		Logger:   logger,
		OnTerminal: func(hash string, req video.Request, st video.JobState) {
			hist.RecordVideoEvent(context.Background(), hash, req.SiteID, string(st.Status), st.Message)
		},
	})

	app := handlers.NewApp(cfg, logger, orch, videoSvc, hist)
	router := httpapi.NewRouter(app, countryLookup)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	if err := videoSvc.Close(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("video pipelines did not drain")
	}
	logger.Info().Msg("server stopped")
}
