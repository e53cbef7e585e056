package assistant

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/rs/zerolog"

	"server/internal/providers/llm"
	"server/internal/providers/speech"
)

// Stage names used as error prefixes so the handler can map a failure to the
// right upstream.
const (
	StageSTT = "STT_FAILED"
	StageLLM = "LLM_FAILED"
	StageTTS = "TTS_FAILED"
)

// VoiceResult is the outcome of one full voice exchange.
type VoiceResult struct {
	UserText    string
	BotText     string
	AudioBytes  []byte
	AudioBase64 string
}

// StageError wraps a pipeline stage failure so the transport layer can map it
// to an upstream-error response without string matching.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return e.Stage + ": " + e.Err.Error() }
func (e *StageError) Unwrap() error { return e.Err }

// Orchestrator runs the voice pipeline: STT, then LLM, then TTS. The stages
// are inherently sequential; each output feeds the next.
type Orchestrator struct {
	transcriber speech.Transcriber
	chatter     llm.Chatter
	synthesizer speech.Synthesizer
	logger      zerolog.Logger
}

func NewOrchestrator(t speech.Transcriber, c llm.Chatter, s speech.Synthesizer, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{transcriber: t, chatter: c, synthesizer: s, logger: logger}
}

// VoiceRequest carries one spoken question and its context.
type VoiceRequest struct {
	Audio        []byte
	SiteName     string
	SiteID       string
	LanguageCode string // BCP-47, e.g. "en-IN"
	LangName     string // ENGLISH | HINDI | HINGLISH
}

// Run executes the pipeline. Failures come back as *StageError.
func (o *Orchestrator) Run(ctx context.Context, req VoiceRequest) (*VoiceResult, error) {
	logger := o.logger.With().Str("site_id", req.SiteID).Str("lang", req.LanguageCode).Logger()

	logger.Info().Int("audio_bytes", len(req.Audio)).Msg("voice: stt start")
	userText, err := o.transcriber.Transcribe(ctx, req.Audio, req.LanguageCode)
	if err != nil {
		return nil, &StageError{Stage: StageSTT, Err: err}
	}

	messages := []llm.Message{
		{Role: "system", Content: VoiceSystemPrompt(req.SiteName, req.LangName)},
		{Role: "user", Content: userText},
	}
	logger.Info().Int("chars", len(userText)).Msg("voice: llm start")
	botText, err := o.chatter.Chat(ctx, messages)
	if err != nil {
		return nil, &StageError{Stage: StageLLM, Err: err}
	}

	logger.Info().Int("chars", len(botText)).Msg("voice: tts start")
	audio, err := o.synthesizer.Synthesize(ctx, botText, req.LanguageCode)
	if err != nil {
		return nil, &StageError{Stage: StageTTS, Err: err}
	}

	logger.Info().
		Int("user_chars", len(userText)).
		Int("bot_chars", len(botText)).
		Int("audio_bytes", len(audio)).
		Msg("voice: pipeline complete")

	return &VoiceResult{
		UserText:    userText,
		BotText:     botText,
		AudioBytes:  audio,
		AudioBase64: base64.StdEncoding.EncodeToString(audio),
	}, nil
}

// Answer runs the text-only chat path with optional prior history.
func (o *Orchestrator) Answer(ctx context.Context, siteName, message string, history []llm.Message) (string, error) {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: ChatSystemPrompt(siteName)})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: "user", Content: message})

	reply, err := o.chatter.Chat(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("assistant: answer: %w", err)
	}
	return reply, nil
}
