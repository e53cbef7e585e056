package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"server/internal/assistant"
	"server/internal/history"
	"server/internal/middleware"
)

// minVoiceBytes rejects uploads too short to hold ~1 second of speech.
const minVoiceBytes = 1000

// maxVoiceUpload caps the multipart form held in memory.
const maxVoiceUpload = 32 << 20

type voiceResponse struct {
	UserText    string `json:"user_text"`
	BotText     string `json:"bot_text"`
	AudioBase64 string `json:"audio_base64"`
	AudioFormat string `json:"audio_format"`
}

// VoiceChat runs the full voice pipeline: uploaded WAV through STT, the LLM,
// and TTS. The handler stays thin; the pipeline lives in the assistant
// package.
func (a *App) VoiceChat(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxVoiceUpload); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "expected multipart form")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "audio file is required")
		return
	}
	defer file.Close()

	// Content-type guard saves a round trip to STT for accidental uploads;
	// the provider rejects non-audio anyway.
	if ct := header.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "audio/") {
		a.error(w, http.StatusUnsupportedMediaType, "unsupported_media", "expected audio/*, received "+ct)
		return
	}

	audio, err := io.ReadAll(file)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "failed to read audio")
		return
	}
	if len(audio) < minVoiceBytes {
		a.error(w, http.StatusUnprocessableEntity, "audio_too_short", "audio too short, minimum ~1 second required")
		return
	}

	siteName := r.FormValue("site_name")
	siteID := r.FormValue("site_id")
	langCode := r.FormValue("language")
	if langCode == "" {
		langCode = middleware.LocaleFromContext(r.Context())
	}
	langName := strings.ToUpper(r.FormValue("lang_name"))
	if langName == "" {
		langName = "ENGLISH"
	}

	result, err := a.Assistant.Run(r.Context(), assistant.VoiceRequest{
		Audio:        audio,
		SiteName:     siteName,
		SiteID:       siteID,
		LanguageCode: langCode,
		LangName:     langName,
	})
	if err != nil {
		var stageErr *assistant.StageError
		if errors.As(err, &stageErr) {
			a.Logger.Error().Err(err).Str("stage", stageErr.Stage).Str("site_id", siteID).Msg("voice: pipeline failed")
			a.error(w, http.StatusBadGateway, "upstream", stageErr.Error())
			return
		}
		a.Logger.Error().Err(err).Str("site_id", siteID).Msg("voice: pipeline failed")
		a.error(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}

	a.History.RecordInteraction(r.Context(), history.Interaction{
		Kind:     history.KindVoice,
		SiteID:   siteID,
		SiteName: siteName,
		UserText: result.UserText,
		BotText:  result.BotText,
		Language: langCode,
	})

	a.json(w, http.StatusOK, voiceResponse{
		UserText:    result.UserText,
		BotText:     result.BotText,
		AudioBase64: result.AudioBase64,
		AudioFormat: "wav",
	})
}
