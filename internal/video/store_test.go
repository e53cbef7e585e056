package video

import (
	"context"
	"testing"

	"server/internal/storage"
)

func newTestStore(t *testing.T) (*ArtifactStore, *storage.FileStore) {
	t.Helper()
	files, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	store, err := NewArtifactStore(files, "http://localhost:8080/")
	if err != nil {
		t.Fatalf("NewArtifactStore: %v", err)
	}
	return store, files
}

func TestArtifactURLs(t *testing.T) {
	store, _ := newTestStore(t)

	if got, want := store.PromptURL("abc123"), "http://localhost:8080/static/videos/prompt/abc123.mp4"; got != want {
		t.Fatalf("PromptURL = %q, want %q", got, want)
	}
	if got, want := store.OverviewURL("taj-mahal"), "http://localhost:8080/static/videos/overview/taj-mahal.mp4"; got != want {
		t.Fatalf("OverviewURL = %q, want %q", got, want)
	}
}

func TestArtifactExistence(t *testing.T) {
	store, files := newTestStore(t)

	if store.PromptExists("abc123") {
		t.Fatalf("PromptExists should be false before any write")
	}
	if _, err := files.Write(context.Background(), "videos/prompt/abc123.mp4", []byte("mp4")); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	if !store.PromptExists("abc123") {
		t.Fatalf("PromptExists should be true after write")
	}
	if store.OverviewExists("abc123") {
		t.Fatalf("prompt artifact must not satisfy the overview namespace")
	}

	if _, err := files.Write(context.Background(), "videos/overview/taj-mahal.mp4", []byte("mp4")); err != nil {
		t.Fatalf("write overview: %v", err)
	}
	if !store.OverviewExists("taj-mahal") {
		t.Fatalf("OverviewExists should be true after write")
	}
}

func TestPromptPathStaysUnderMediaRoot(t *testing.T) {
	store, files := newTestStore(t)

	path, err := store.PromptPath("abc123")
	if err != nil {
		t.Fatalf("PromptPath: %v", err)
	}
	want, err := files.Abs("videos/prompt/abc123.mp4")
	if err != nil {
		t.Fatalf("Abs: %v", err)
	}
	if path != want {
		t.Fatalf("PromptPath = %q, want %q", path, want)
	}
}
