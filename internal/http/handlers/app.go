package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"server/internal/assistant"
	"server/internal/history"
	"server/internal/infra"
	"server/internal/video"
)

// App bundles the dependencies the HTTP handlers need.
type App struct {
	Config    *infra.Config
	Logger    zerolog.Logger
	Assistant *assistant.Orchestrator
	Video     *video.Service
	History   *history.Repo
}

func NewApp(cfg *infra.Config, logger zerolog.Logger, orch *assistant.Orchestrator, vs *video.Service, hist *history.Repo) *App {
	return &App{
		Config:    cfg,
		Logger:    logger,
		Assistant: orch,
		Video:     vs,
		History:   hist,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}
