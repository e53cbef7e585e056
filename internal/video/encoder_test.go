package video

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestPerImageDuration(t *testing.T) {
	cases := []struct {
		name   string
		total  float64
		images int
		want   float64
	}{
		{"even split above floor", 30, 5, 6},
		{"short narration hits floor", 4, 10, 2},
		{"exactly at floor", 10, 5, 2},
		{"single image", 45, 1, 45},
		{"zero images", 30, 0, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := perImageDuration(tc.total, tc.images); got != tc.want {
				t.Fatalf("perImageDuration(%v, %d) = %v, want %v", tc.total, tc.images, got, tc.want)
			}
		})
	}
}

func TestConcatListRepeatsFinalEntry(t *testing.T) {
	out := string(concatList([]string{"/a/1.jpg", "/a/2.jpg"}, 2.5))

	want := "file '/a/1.jpg'\n" +
		"duration 2.50\n" +
		"file '/a/2.jpg'\n" +
		"duration 2.50\n" +
		"file '/a/2.jpg'\n"
	if out != want {
		t.Fatalf("concat list =\n%s\nwant\n%s", out, want)
	}
}

func TestConcatListSingleImage(t *testing.T) {
	out := string(concatList([]string{"/only.jpg"}, 30))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3: %q", len(lines), out)
	}
	if lines[0] != lines[2] {
		t.Fatalf("final entry should repeat the image: %q vs %q", lines[0], lines[2])
	}
	if !strings.HasPrefix(lines[1], "duration ") {
		t.Fatalf("middle line should be a duration, got %q", lines[1])
	}
}

func TestEncodeFailureLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	badImage := filepath.Join(dir, "scene.jpg")
	if err := os.WriteFile(badImage, []byte("not a jpeg"), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
	outputPath := filepath.Join(dir, "out.mp4")

	enc := NewFFmpegEncoder(zerolog.Nop(), 1, time.Second, 10*time.Second)
	err := enc.Encode(context.Background(), []string{badImage}, []byte("not audio"), outputPath)
	if err == nil {
		t.Fatalf("Encode should fail on unreadable inputs")
	}
	if _, statErr := os.Stat(outputPath); statErr == nil {
		t.Fatalf("failed encode left a file at the output path")
	}
	if _, statErr := os.Stat(outputPath + ".part"); statErr == nil {
		t.Fatalf("failed encode left its temp render behind")
	}
}

func TestStderrTail(t *testing.T) {
	long := strings.Repeat("x", stderrTailBytes+500) + "END"
	tail := stderrTail([]byte(long))
	if len(tail) != stderrTailBytes {
		t.Fatalf("tail length = %d, want %d", len(tail), stderrTailBytes)
	}
	if !strings.HasSuffix(tail, "END") {
		t.Fatalf("tail should keep the end of the output")
	}

	short := "only a little output"
	if got := stderrTail([]byte(short)); got != short {
		t.Fatalf("short output should pass through unchanged, got %q", got)
	}
}
