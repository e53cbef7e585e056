package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"server/internal/history"
	"server/internal/middleware"
	"server/internal/providers/llm"
)

type chatRequest struct {
	Message  string        `json:"message"`
	SiteName string        `json:"site_name"`
	SiteID   string        `json:"site_id"`
	History  []llm.Message `json:"history"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// Chat answers a typed visitor question about the current heritage site.
func (a *App) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "message is required")
		return
	}

	reply, err := a.Assistant.Answer(r.Context(), req.SiteName, req.Message, req.History)
	if err != nil {
		a.Logger.Error().Err(err).Str("site_id", req.SiteID).Msg("chat: llm call failed")
		a.error(w, http.StatusBadGateway, "upstream", "language model unavailable")
		return
	}

	a.History.RecordInteraction(r.Context(), history.Interaction{
		Kind:     history.KindChat,
		SiteID:   req.SiteID,
		SiteName: req.SiteName,
		UserText: req.Message,
		BotText:  reply,
		Language: middleware.LocaleFromContext(r.Context()),
	})

	a.json(w, http.StatusOK, chatResponse{Reply: reply})
}
