package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrMissingAPIKey reports an absent Sarvam credential. It is raised at the
// first invocation rather than at startup, so a misconfigured deployment
// fails per-request instead of refusing to boot.
var ErrMissingAPIKey = errors.New("speech: SARVAM_API_KEY is not set")

// Synthesizer converts text into narration audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, languageCode string) ([]byte, error)
}

// Transcriber converts recorded speech into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, languageCode string) (string, error)
}

const (
	defaultBaseURL = "https://api.sarvam.ai"
	defaultModel   = "bulbul:v3"
	defaultSpeaker = "anushka"
	sttModel       = "saarika:v2.5"

	ttsTimeout = 30 * time.Second
	sttTimeout = 60 * time.Second

	// maxTTSChars is Sarvam's input clamp; longer text is cut at a word
	// boundary before the request.
	maxTTSChars = 500
)

type Options struct {
	APIKey     string
	BaseURL    string
	TTSModel   string
	TTSSpeaker string
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Client talks to the Sarvam speech APIs. It implements both Synthesizer and
// Transcriber.
type Client struct {
	apiKey     string
	baseURL    string
	ttsModel   string
	ttsSpeaker string
	httpClient *http.Client
	logger     zerolog.Logger
}

func NewClient(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	model := strings.TrimSpace(opts.TTSModel)
	if model == "" {
		model = defaultModel
	}
	speaker := strings.TrimSpace(opts.TTSSpeaker)
	if speaker == "" {
		speaker = defaultSpeaker
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    base,
		ttsModel:   model,
		ttsSpeaker: speaker,
		httpClient: client,
		logger:     opts.Logger,
	}
}

type ttsResponse struct {
	Audios []string `json:"audios"`
}

// Synthesize renders text into WAV bytes in the requested language.
func (c *Client) Synthesize(ctx context.Context, text, languageCode string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	text = clampText(text, maxTTSChars)

	payload := map[string]any{
		"inputs":               []string{text},
		"target_language_code": languageCode,
		"speaker":              c.ttsSpeaker,
		"model":                c.ttsModel,
	}
	// Advanced tuning parameters are rejected by bulbul:v3.
	if c.ttsModel != "bulbul:v3" {
		payload["pitch"] = 0
		payload["pace"] = 1.05
		payload["loudness"] = 1.5
		payload["speech_sample_rate"] = 16000
		payload["enable_preprocessing"] = true
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("speech: marshal tts request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, ttsTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+"/text-to-speech", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("speech: build tts request: %w", err)
	}
	req.Header.Set("api-subscription-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech: tts request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("speech: tts error %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed ttsResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("speech: decode tts response: %w", err)
	}
	if len(parsed.Audios) == 0 {
		return nil, errors.New("speech: tts returned empty audio list")
	}

	wav, err := base64.StdEncoding.DecodeString(parsed.Audios[0])
	if err != nil {
		return nil, fmt.Errorf("speech: decode tts audio: %w", err)
	}

	c.logger.Debug().Int("chars", len(text)).Int("bytes", len(wav)).Str("lang", languageCode).Msg("speech: synthesized narration")
	return wav, nil
}

type sttResponse struct {
	Transcript string `json:"transcript"`
}

// Transcribe sends WAV bytes to Sarvam STT and returns the transcript.
func (c *Client) Transcribe(ctx context.Context, audio []byte, languageCode string) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "recording.wav")
	if err != nil {
		return "", fmt.Errorf("speech: build stt form: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("speech: write stt audio: %w", err)
	}
	_ = mw.WriteField("language_code", languageCode)
	_ = mw.WriteField("model", sttModel)
	_ = mw.WriteField("with_timestamps", "false")
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("speech: finish stt form: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, sttTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+"/speech-to-text", &body)
	if err != nil {
		return "", fmt.Errorf("speech: build stt request: %w", err)
	}
	req.Header.Set("api-subscription-key", c.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("speech: stt request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("speech: stt error %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed sttResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("speech: decode stt response: %w", err)
	}
	transcript := strings.TrimSpace(parsed.Transcript)
	if transcript == "" {
		return "", errors.New("speech: stt returned empty transcript, audio may be silent or too short")
	}

	c.logger.Debug().Int("bytes", len(audio)).Int("chars", len(transcript)).Str("lang", languageCode).Msg("speech: transcribed audio")
	return transcript, nil
}

// clampText cuts text at the last word boundary under limit and marks the cut
// with an ellipsis.
func clampText(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	cut := string(runes[:limit])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "…"
}

var (
	_ Synthesizer = (*Client)(nil)
	_ Transcriber = (*Client)(nil)
)
