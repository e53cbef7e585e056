package video

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"server/internal/metrics"
)

// Failure taxonomy. Every variant surfaces as a terminal failed job state
// with a human-readable message; none of them crash the process.
var (
	ErrNarrationFailed = errors.New("narration synthesis failed")
	ErrEncodingFailed  = errors.New("video encoding failed")
	ErrArtifactMissing = errors.New("encoder reported success but output file is missing")
)

// Narrator produces narration audio for the bot's answer text. Satisfied by
// the Sarvam TTS client.
type Narrator interface {
	Synthesize(ctx context.Context, text, languageCode string) ([]byte, error)
}

// Request carries the inputs of one generation attempt. Immutable once
// submitted; it lives only long enough to be fingerprinted and dispatched.
type Request struct {
	Prompt   string
	BotText  string
	SiteID   string
	SiteName string
}

// SubmitResult is what the submission endpoint reports back immediately.
type SubmitResult struct {
	Hash   string
	Status Status
	URL    string
}

// Service owns the on-demand video subsystem: request dedup, the in-flight
// job registry, the generation pipeline and the status resolver.
type Service struct {
	registry Registry
	store    *ArtifactStore
	scenes   *SceneSelector
	encoder  Encoder
	narrator Narrator
	logger   zerolog.Logger

	// narrationLang is the BCP-47 code used for pipeline narration.
	narrationLang string

	// onTerminal, when set, observes every terminal pipeline outcome.
	onTerminal func(hash string, req Request, st JobState)

	wg sync.WaitGroup
}

type ServiceOptions struct {
	Registry      Registry
	Store         *ArtifactStore
	Scenes        *SceneSelector
	Encoder       Encoder
	Narrator      Narrator
	Logger        zerolog.Logger
	NarrationLang string
	OnTerminal    func(hash string, req Request, st JobState)
}

func NewService(opts ServiceOptions) *Service {
	lang := opts.NarrationLang
	if lang == "" {
		lang = "en-IN"
	}
	reg := opts.Registry
	if reg == nil {
		reg = NewMemoryRegistry()
	}
	return &Service{
		registry:      reg,
		store:         opts.Store,
		scenes:        opts.Scenes,
		encoder:       opts.Encoder,
		narrator:      opts.Narrator,
		logger:        opts.Logger,
		narrationLang: lang,
		onTerminal:    opts.OnTerminal,
	}
}

// Submit deduplicates the request by fingerprint and either answers from the
// artifact store, reports the in-flight job, or dispatches a fresh pipeline
// run. It never blocks on generation and never returns an error: pipeline
// failures surface later through polling.
func (s *Service) Submit(req Request) SubmitResult {
	hash := Fingerprint(req.Prompt, req.BotText, req.SiteID)

	if s.store.PromptExists(hash) {
		s.logger.Info().Str("hash", hash).Msg("video: cache hit")
		return SubmitResult{Hash: hash, Status: StatusReady, URL: s.store.PromptURL(hash)}
	}

	if st, ok := s.registry.Get(hash); ok {
		if st.Status == StatusFailed {
			s.logger.Info().Str("hash", hash).Msg("video: retrying failed job")
			s.registry.Delete(hash)
		} else {
			return SubmitResult{Hash: hash, Status: st.Status, URL: st.URL}
		}
	}

	// Atomic check-and-insert: if a concurrent submission won the race,
	// report its state instead of dispatching a second pipeline.
	if !s.registry.Insert(hash, JobState{Status: StatusGenerating, Progress: 0}) {
		st, _ := s.registry.Get(hash)
		return SubmitResult{Hash: hash, Status: st.Status, URL: st.URL}
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(hash, req)
	}()

	s.logger.Info().Str("hash", hash).Str("site", req.SiteName).Msg("video: generation enqueued")
	return SubmitResult{Hash: hash, Status: StatusGenerating}
}

// Resolve answers a status poll for either a fingerprint or a site id. A
// completed artifact is always trusted over registry state, so a finished
// video stays ready even after the in-memory entry is lost.
func (s *Service) Resolve(id string) JobState {
	if s.store.PromptExists(id) {
		return JobState{Status: StatusReady, Progress: 100, URL: s.store.PromptURL(id)}
	}
	if s.store.OverviewExists(id) {
		return JobState{Status: StatusReady, Progress: 100, URL: s.store.OverviewURL(id)}
	}
	if st, ok := s.registry.Get(id); ok {
		return st
	}
	return JobState{Status: StatusNotStarted, Progress: 0}
}

// Close waits for in-flight pipelines to drain or the context to expire.
func (s *Service) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("video: shutdown with pipelines still running: %w", ctx.Err())
	}
}

// run executes the five pipeline stages sequentially, mutating the registry
// entry by key as it goes. The caller has already received its response; all
// failure reporting happens through the registry.
func (s *Service) run(hash string, req Request) {
	metrics.VideoJobsInFlight.Inc()
	defer metrics.VideoJobsInFlight.Dec()

	ctx := context.Background()
	logger := s.logger.With().Str("hash", hash).Str("site_id", req.SiteID).Logger()

	progress := func(pct int, message string) {
		s.registry.Update(hash, JobState{Status: StatusGenerating, Progress: pct, Message: message})
		logger.Info().Int("progress", pct).Msg("video: " + message)
	}

	finish := func(st JobState) {
		s.registry.Update(hash, st)
		metrics.VideoJobs.WithLabelValues(string(st.Status)).Inc()
		if s.onTerminal != nil {
			s.onTerminal(hash, req, st)
		}
	}

	fail := func(err error) {
		logger.Error().Err(err).Msg("video: generation failed")
		finish(JobState{Status: StatusFailed, Progress: 0, Message: err.Error()})
	}

	progress(5, "analyzing request")

	progress(10, "generating narration")
	audio, err := s.narrator.Synthesize(ctx, req.BotText, s.narrationLang)
	if err != nil {
		fail(fmt.Errorf("%w: %v", ErrNarrationFailed, err))
		return
	}
	progress(40, "narration ready")

	progress(45, "selecting scenes")
	images := s.scenes.Select(req.SiteID)
	progress(60, "scenes composed")

	progress(65, "encoding video")
	outputPath, err := s.store.PromptPath(hash)
	if err != nil {
		fail(fmt.Errorf("%w: %v", ErrEncodingFailed, err))
		return
	}
	if err := s.encoder.Encode(ctx, images, audio, outputPath); err != nil {
		// Artifact presence outranks registry state, so anything a failed
		// encode left at the output path must go before the job reads failed.
		os.Remove(outputPath)
		fail(fmt.Errorf("%w: %v", ErrEncodingFailed, err))
		return
	}

	progress(95, "finalizing")
	if _, err := os.Stat(outputPath); err != nil {
		fail(ErrArtifactMissing)
		return
	}

	finish(JobState{Status: StatusReady, Progress: 100, URL: s.store.PromptURL(hash)})
	logger.Info().Msg("video: generation complete")
}
