package video

import (
	"fmt"
	"strings"

	"server/internal/storage"
)

const (
	promptPrefix   = "videos/prompt"
	overviewPrefix = "videos/overview"
)

// ArtifactStore addresses finished video files under the media root. Two
// address spaces share the identifier namespace: on-demand videos keyed by
// fingerprint under videos/prompt, and precomputed site overview videos keyed
// by site id under videos/overview. Presence of a file is authoritative proof
// of successful generation and always outranks registry state.
type ArtifactStore struct {
	files   *storage.FileStore
	baseURL string
}

// NewArtifactStore roots an ArtifactStore in the given FileStore and
// pre-creates both address spaces.
func NewArtifactStore(files *storage.FileStore, baseURL string) (*ArtifactStore, error) {
	s := &ArtifactStore{
		files:   files,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
	for _, dir := range []string{promptPrefix, overviewPrefix} {
		if err := s.files.EnsureDir(dir); err != nil {
			return nil, fmt.Errorf("video: prepare artifact dir %s: %w", dir, err)
		}
	}
	return s, nil
}

func promptKey(hash string) string { return promptPrefix + "/" + hash + ".mp4" }
func overviewKey(id string) string { return overviewPrefix + "/" + id + ".mp4" }

// PromptExists reports whether an on-demand artifact exists for the hash.
func (s *ArtifactStore) PromptExists(hash string) bool {
	return s.files.Exists(promptKey(hash))
}

// OverviewExists reports whether a precomputed overview artifact exists for
// the site id.
func (s *ArtifactStore) OverviewExists(id string) bool {
	return s.files.Exists(overviewKey(id))
}

// PromptPath returns the absolute output path for an on-demand artifact. The
// pipeline writes here; the path itself is never exposed to clients.
func (s *ArtifactStore) PromptPath(hash string) (string, error) {
	return s.files.Abs(promptKey(hash))
}

// PromptURL returns the public URL for an on-demand artifact, joining the
// configured base URL with the storage-relative path.
func (s *ArtifactStore) PromptURL(hash string) string {
	return s.baseURL + "/static/" + promptKey(hash)
}

// OverviewURL returns the public URL for a site overview artifact.
func (s *ArtifactStore) OverviewURL(id string) string {
	return s.baseURL + "/static/" + overviewKey(id)
}
