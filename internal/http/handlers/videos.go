package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"server/internal/video"
)

type generateVideoRequest struct {
	Prompt   string `json:"prompt"`
	BotText  string `json:"bot_text"`
	SiteID   string `json:"site_id"`
	SiteName string `json:"site_name"`
}

type generateVideoResponse struct {
	Hash   string `json:"hash"`
	Status string `json:"status"`
	URL    string `json:"url,omitempty"`
}

// GenerateVideo accepts a generation request and returns immediately with a
// fingerprint to poll. Identical requests collapse onto one job or one cached
// artifact; the endpoint never waits for encoding.
func (a *App) GenerateVideo(w http.ResponseWriter, r *http.Request) {
	var req generateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	req.Prompt = strings.TrimSpace(req.Prompt)
	req.BotText = strings.TrimSpace(req.BotText)
	req.SiteID = strings.TrimSpace(req.SiteID)
	req.SiteName = strings.TrimSpace(req.SiteName)
	if req.Prompt == "" || req.BotText == "" || req.SiteID == "" || req.SiteName == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "prompt, bot_text, site_id and site_name are required")
		return
	}

	res := a.Video.Submit(video.Request{
		Prompt:   req.Prompt,
		BotText:  req.BotText,
		SiteID:   req.SiteID,
		SiteName: req.SiteName,
	})

	a.json(w, http.StatusOK, generateVideoResponse{
		Hash:   res.Hash,
		Status: string(res.Status),
		URL:    res.URL,
	})
}

// VideoStatus answers a poll for a fingerprint or a site id. Unknown ids are
// not an error; they report not_started so the client can decide to submit.
func (a *App) VideoStatus(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "id is required")
		return
	}

	st := a.Video.Resolve(id)
	a.json(w, http.StatusOK, st)
}
