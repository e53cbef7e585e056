package video

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// minImageSeconds is the floor on per-image display time. The floor keeps a
// ten-image slideshow from flashing frames on a short narration; when it
// applies, -shortest truncates the video to the audio track anyway.
const minImageSeconds = 2.0

// fallbackAudioSeconds is assumed when ffprobe cannot read the narration.
const fallbackAudioSeconds = 30.0

// stderrTailBytes bounds how much encoder diagnostic output ends up in the
// failed job message.
const stderrTailBytes = 2000

// Encoder muxes an ordered image list and narration audio into a single
// video file at outputPath.
type Encoder interface {
	Encode(ctx context.Context, images []string, audio []byte, outputPath string) error
}

// FFmpegEncoder shells out to ffmpeg/ffprobe. Encoding is the only blocking
// CPU-heavy operation in the service, so all runs pass through a bounded slot
// pool; with the default single slot, concurrent pipelines serialize on this
// stage only.
type FFmpegEncoder struct {
	logger        zerolog.Logger
	probeTimeout  time.Duration
	encodeTimeout time.Duration
	slots         chan struct{}
}

func NewFFmpegEncoder(logger zerolog.Logger, workers int, probeTimeout, encodeTimeout time.Duration) *FFmpegEncoder {
	if workers <= 0 {
		workers = 1
	}
	if probeTimeout <= 0 {
		probeTimeout = 15 * time.Second
	}
	if encodeTimeout <= 0 {
		encodeTimeout = 5 * time.Minute
	}
	return &FFmpegEncoder{
		logger:        logger,
		probeTimeout:  probeTimeout,
		encodeTimeout: encodeTimeout,
		slots:         make(chan struct{}, workers),
	}
}

// Encode writes the narration audio and an ffmpeg concat list into a fresh
// temp dir, then renders a 1920x1080 30fps H.264 video. Image paths must be
// absolute so the concat list stays valid wherever the temp dir lives.
func (e *FFmpegEncoder) Encode(ctx context.Context, images []string, audio []byte, outputPath string) error {
	if len(images) == 0 {
		return fmt.Errorf("video: encode called with no images")
	}

	select {
	case e.slots <- struct{}{}:
		defer func() { <-e.slots }()
	case <-ctx.Done():
		return ctx.Err()
	}

	tmp, err := os.MkdirTemp("", "videogen-*")
	if err != nil {
		return fmt.Errorf("video: create temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	audioPath := filepath.Join(tmp, "narration.wav")
	if err := os.WriteFile(audioPath, audio, 0o644); err != nil {
		return fmt.Errorf("video: write narration audio: %w", err)
	}

	total := e.probeDuration(ctx, audioPath)
	perImage := perImageDuration(total, len(images))

	concatPath := filepath.Join(tmp, "images.txt")
	if err := os.WriteFile(concatPath, concatList(images, perImage), 0o644); err != nil {
		return fmt.Errorf("video: write concat list: %w", err)
	}

	e.logger.Info().
		Int("images", len(images)).
		Float64("audio_seconds", total).
		Float64("per_image_seconds", perImage).
		Str("output", outputPath).
		Msg("encoder: starting ffmpeg")

	encCtx, cancel := context.WithTimeout(ctx, e.encodeTimeout)
	defer cancel()

	// ffmpeg renders into a sibling temp path; the artifact only appears at
	// outputPath through the rename below, so a failed or killed encode never
	// leaves a partial file where a status poll would find it.
	partPath := outputPath + ".part"
	cmd := exec.CommandContext(encCtx, "ffmpeg", "-y",
		"-f", "concat", "-safe", "0", "-i", concatPath,
		"-i", audioPath,
		"-vf", "scale=1920:1080:force_original_aspect_ratio=decrease,"+
			"pad=1920:1080:(ow-iw)/2:(oh-ih)/2:black,"+
			"setsar=1",
		"-c:v", "libx264", "-preset", "fast", "-crf", "23",
		"-c:a", "aac", "-b:a", "128k",
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		"-shortest",
		"-r", "30",
		"-f", "mp4",
		partPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.Remove(partPath)
		tail := stderrTail(stderr.Bytes())
		e.logger.Error().Err(err).Str("stderr", tail).Msg("encoder: ffmpeg failed")
		return fmt.Errorf("video: ffmpeg: %v: %s", err, tail)
	}

	if err := os.Rename(partPath, outputPath); err != nil {
		os.Remove(partPath)
		return fmt.Errorf("video: finalize output: %w", err)
	}

	if info, err := os.Stat(outputPath); err == nil {
		e.logger.Info().Str("output", outputPath).Int64("bytes", info.Size()).Msg("encoder: done")
	}
	return nil
}

// probeDuration asks ffprobe for the audio length in seconds. Probing is
// best-effort; any failure substitutes a fixed assumption instead of failing
// the pipeline.
func (e *FFmpegEncoder) probeDuration(ctx context.Context, audioPath string) float64 {
	probeCtx, cancel := context.WithTimeout(ctx, e.probeTimeout)
	defer cancel()

	out, err := exec.CommandContext(probeCtx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "csv=p=0",
		audioPath,
	).Output()
	if err != nil {
		e.logger.Warn().Err(err).Msgf("encoder: ffprobe failed, assuming %.0fs", fallbackAudioSeconds)
		return fallbackAudioSeconds
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil || seconds <= 0 {
		e.logger.Warn().Err(err).Msgf("encoder: unparsable ffprobe output, assuming %.0fs", fallbackAudioSeconds)
		return fallbackAudioSeconds
	}
	return seconds
}

// perImageDuration spreads the narration across the images but never shows a
// frame for less than minImageSeconds.
func perImageDuration(totalSeconds float64, imageCount int) float64 {
	if imageCount <= 0 {
		return minImageSeconds
	}
	d := totalSeconds / float64(imageCount)
	if d < minImageSeconds {
		return minImageSeconds
	}
	return d
}

// concatList renders the ffmpeg concat demuxer input. The demuxer requires
// the final entry to repeat without a duration line.
func concatList(images []string, perImage float64) []byte {
	var b strings.Builder
	for _, img := range images {
		fmt.Fprintf(&b, "file '%s'\n", img)
		fmt.Fprintf(&b, "duration %.2f\n", perImage)
	}
	fmt.Fprintf(&b, "file '%s'\n", images[len(images)-1])
	return []byte(b.String())
}

func stderrTail(out []byte) string {
	if len(out) > stderrTailBytes {
		out = out[len(out)-stderrTailBytes:]
	}
	return string(out)
}
