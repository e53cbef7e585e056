// Command overviews pre-renders the per-site overview videos served at
// /static/videos/overview/{site}.mp4. It reads a narration script from each
// site's image directory, synthesizes the audio, and encodes the slideshow,
// so the API never generates overview videos on the request path.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"server/internal/infra"
	"server/internal/providers/speech"
	"server/internal/storage"
	"server/internal/video"
)

const scriptFilename = "overview.txt"

func main() {
	var (
		sitesFlag = flag.String("sites", "", "comma-separated site ids (default: every site with a script)")
		lang      = flag.String("lang", "en-IN", "narration language (BCP-47)")
		force     = flag.Bool("force", false, "re-render sites that already have an overview video")
		upload    = flag.Bool("upload", false, "also upload finished videos to remote storage")
	)
	flag.Parse()
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	files, err := storage.NewFileStore(cfg.MediaDir)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.MediaDir).Msg("overviews: failed to configure storage")
	}
	artifacts, err := video.NewArtifactStore(files, cfg.BaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("overviews: failed to prepare artifact store")
	}

	narrator := speech.NewClient(speech.Options{
		APIKey:     cfg.SarvamAPIKey,
		TTSModel:   cfg.SarvamTTSModel,
		TTSSpeaker: cfg.SarvamTTSSpeaker,
		HTTPClient: &http.Client{Timeout: 90 * time.Second},
		Logger:     logger,
	})
	scenes := video.NewSceneSelector(files, logger)
	encoder := video.NewFFmpegEncoder(logger, cfg.EncodeWorkers, cfg.ProbeTimeout, cfg.EncodeTimeout)

	var remote *storage.RemoteStore
	if *upload {
		remote = storage.NewRemoteStore(storage.RemoteOptions{
			BaseURL:    cfg.SupabaseURL,
			ServiceKey: cfg.SupabaseServiceKey,
			Bucket:     cfg.SupabaseBucket,
			HTTPClient: &http.Client{Timeout: 2 * time.Minute},
			Logger:     logger,
		})
	}

	sites, err := resolveSites(files, *sitesFlag)
	if err != nil {
		logger.Fatal().Err(err).Msg("overviews: failed to enumerate sites")
	}
	if len(sites) == 0 {
		logger.Warn().Msg("overviews: no sites with narration scripts found")
		return
	}

	var failed int
	for _, siteID := range sites {
		if ctx.Err() != nil {
			logger.Warn().Msg("overviews: interrupted")
			break
		}
		if err := renderSite(ctx, siteID, *lang, *force, files, artifacts, narrator, scenes, encoder, remote, logger); err != nil {
			logger.Error().Err(err).Str("site_id", siteID).Msg("overviews: render failed")
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// resolveSites expands the -sites flag, or scans images/ for directories that
// carry a narration script.
func resolveSites(files *storage.FileStore, sitesFlag string) ([]string, error) {
	if sitesFlag != "" {
		var sites []string
		for _, s := range strings.Split(sitesFlag, ",") {
			if s = strings.TrimSpace(s); s != "" {
				sites = append(sites, s)
			}
		}
		return sites, nil
	}

	imagesDir, err := files.Abs("images")
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(imagesDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var sites []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), "_") {
			continue
		}
		if files.Exists("images/" + e.Name() + "/" + scriptFilename) {
			sites = append(sites, e.Name())
		}
	}
	sort.Strings(sites)
	return sites, nil
}

func renderSite(
	ctx context.Context,
	siteID, lang string,
	force bool,
	files *storage.FileStore,
	artifacts *video.ArtifactStore,
	narrator *speech.Client,
	scenes *video.SceneSelector,
	encoder video.Encoder,
	remote *storage.RemoteStore,
	logger infra.Logger,
) error {
	if artifacts.OverviewExists(siteID) && !force {
		logger.Info().Str("site_id", siteID).Msg("overviews: already rendered, skipping")
		return nil
	}

	scriptPath, err := files.Abs("images/" + siteID + "/" + scriptFilename)
	if err != nil {
		return err
	}
	script, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("read narration script: %w", err)
	}
	text := strings.TrimSpace(string(script))
	if text == "" {
		return fmt.Errorf("narration script %s is empty", scriptPath)
	}

	logger.Info().Str("site_id", siteID).Int("chars", len(text)).Msg("overviews: synthesizing narration")
	audio, err := narrator.Synthesize(ctx, text, lang)
	if err != nil {
		return fmt.Errorf("synthesize narration: %w", err)
	}

	outputPath, err := files.Abs("videos/overview/" + siteID + ".mp4")
	if err != nil {
		return err
	}
	if err := encoder.Encode(ctx, scenes.Select(siteID), audio, outputPath); err != nil {
		return fmt.Errorf("encode overview: %w", err)
	}
	logger.Info().Str("site_id", siteID).Str("output", filepath.Base(outputPath)).Msg("overviews: rendered")

	if remote != nil {
		url, err := remote.Upload(ctx, outputPath, "overview-"+siteID)
		if err != nil {
			return fmt.Errorf("upload overview: %w", err)
		}
		logger.Info().Str("site_id", siteID).Str("url", url).Msg("overviews: uploaded")
	}
	return nil
}
