package handlers

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/rs/zerolog"

	"server/internal/assistant"
	"server/internal/infra"
	"server/internal/providers/llm"
	"server/internal/storage"
	"server/internal/video"
)

type stubChatter struct {
	reply string
	err   error
	last  []llm.Message
}

func (s *stubChatter) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	s.last = messages
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

type stubSpeech struct {
	text   string
	audio  []byte
	sttErr error
	ttsErr error
}

func (s *stubSpeech) Transcribe(ctx context.Context, audio []byte, languageCode string) (string, error) {
	if s.sttErr != nil {
		return "", s.sttErr
	}
	return s.text, nil
}

func (s *stubSpeech) Synthesize(ctx context.Context, text, languageCode string) ([]byte, error) {
	if s.ttsErr != nil {
		return nil, s.ttsErr
	}
	return s.audio, nil
}

type stubEncoder struct{ err error }

func (s *stubEncoder) Encode(ctx context.Context, images []string, audio []byte, outputPath string) error {
	if s.err != nil {
		return s.err
	}
	return os.WriteFile(outputPath, []byte("mp4"), 0o644)
}

type testApp struct {
	app     *App
	chatter *stubChatter
	speech  *stubSpeech
	encoder *stubEncoder
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	files, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	store, err := video.NewArtifactStore(files, "http://localhost:8080")
	if err != nil {
		t.Fatalf("NewArtifactStore: %v", err)
	}

	ta := &testApp{
		chatter: &stubChatter{reply: "The dome rises 35 metres."},
		speech:  &stubSpeech{text: "what is the dome height", audio: []byte("RIFFwav")},
		encoder: &stubEncoder{},
	}

	logger := zerolog.Nop()
	svc := video.NewService(video.ServiceOptions{
		Store:    store,
		Scenes:   video.NewSceneSelector(files, logger),
		Encoder:  ta.encoder,
		Narrator: ta.speech,
		Logger:   logger,
	})

	cfg := &infra.Config{
		AppEnv:         "test",
		BaseURL:        "http://localhost:8080",
		AllowedOrigins: []string{"*"},
	}

	ta.app = NewApp(cfg, logger,
		assistant.NewOrchestrator(ta.speech, ta.chatter, ta.speech, logger),
		svc, nil)
	return ta
}

var errUpstream = errors.New("upstream unavailable")
