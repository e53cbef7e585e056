package video

import (
	"context"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"server/internal/storage"
)

// maxSceneImages caps how many site stills go into one video.
const maxSceneImages = 5

const placeholderKey = "images/_placeholder/blank.jpg"

// SceneSelector resolves the ordered list of still images for a site. It
// never fails: when a site has no imagery on disk it substitutes a single
// embedded placeholder frame, written to the media root on first use.
type SceneSelector struct {
	files  *storage.FileStore
	logger zerolog.Logger

	placeholderOnce sync.Once
	placeholderPath string
}

func NewSceneSelector(files *storage.FileStore, logger zerolog.Logger) *SceneSelector {
	return &SceneSelector{files: files, logger: logger}
}

// Select returns absolute image paths for the site, capped at maxSceneImages
// in deterministic lexicographic order. The result always has at least one
// entry.
func (s *SceneSelector) Select(siteID string) []string {
	dir, err := s.files.Abs("images/" + siteID)
	if err == nil {
		matches, globErr := filepath.Glob(filepath.Join(dir, "*.jpg"))
		if globErr == nil && len(matches) > 0 {
			sort.Strings(matches)
			if len(matches) > maxSceneImages {
				matches = matches[:maxSceneImages]
			}
			s.logger.Debug().Str("site_id", siteID).Int("count", len(matches)).Msg("scenes: using site images")
			return matches
		}
	}
	return []string{s.placeholder()}
}

// placeholder lazily writes the embedded fallback JPEG and returns its
// absolute path. If the file was removed after the first call it is restored.
func (s *SceneSelector) placeholder() string {
	s.placeholderOnce.Do(func() {
		path, err := s.files.Abs(placeholderKey)
		if err != nil {
			return
		}
		s.placeholderPath = path
	})
	if s.placeholderPath != "" && !s.files.Exists(placeholderKey) {
		if _, err := s.files.Write(context.Background(), placeholderKey, placeholderJPEG); err != nil {
			s.logger.Error().Err(err).Msg("scenes: write placeholder image")
		} else {
			s.logger.Info().Str("path", s.placeholderPath).Msg("scenes: created placeholder image")
		}
	}
	return s.placeholderPath
}

// placeholderJPEG is a complete, valid 1x1 black JPEG (JFIF). Embedding the
// bytes avoids pulling in an image encoder for a frame nobody looks at twice.
var placeholderJPEG = []byte{
	0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46, 0x49, 0x46, 0x00, 0x01,
	0x01, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0xFF, 0xDB, 0x00, 0x43,
	0x00, 0x08, 0x06, 0x06, 0x07, 0x06, 0x05, 0x08, 0x07, 0x07, 0x07, 0x09,
	0x09, 0x08, 0x0A, 0x0C, 0x14, 0x0D, 0x0C, 0x0B, 0x0B, 0x0C, 0x19, 0x12,
	0x13, 0x0F, 0x14, 0x1D, 0x1A, 0x1F, 0x1E, 0x1D, 0x1A, 0x1C, 0x1C, 0x20,
	0x24, 0x2E, 0x27, 0x20, 0x22, 0x2C, 0x23, 0x1C, 0x1C, 0x28, 0x37, 0x29,
	0x2C, 0x30, 0x31, 0x34, 0x34, 0x34, 0x1F, 0x27, 0x39, 0x3D, 0x38, 0x32,
	0x3C, 0x2E, 0x33, 0x34, 0x32, 0xFF, 0xC0, 0x00, 0x0B, 0x08, 0x00, 0x01,
	0x00, 0x01, 0x01, 0x01, 0x11, 0x00, 0xFF, 0xC4, 0x00, 0x1F, 0x00, 0x00,
	0x01, 0x05, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
	0x09, 0x0A, 0x0B, 0xFF, 0xC4, 0x00, 0xB5, 0x10, 0x00, 0x02, 0x01, 0x03,
	0x03, 0x02, 0x04, 0x03, 0x05, 0x05, 0x04, 0x04, 0x00, 0x00, 0x01, 0x7D,
	0x01, 0x02, 0x03, 0x00, 0x04, 0x11, 0x05, 0x12, 0x21, 0x31, 0x41, 0x06,
	0x13, 0x51, 0x61, 0x07, 0x22, 0x71, 0x14, 0x32, 0x81, 0x91, 0xA1, 0x08,
	0x23, 0x42, 0xB1, 0xC1, 0x15, 0x52, 0xD1, 0xF0, 0x24, 0x33, 0x62, 0x72,
	0x82, 0x09, 0x0A, 0x16, 0x17, 0x18, 0x19, 0x1A, 0x25, 0x26, 0x27, 0x28,
	0x29, 0x2A, 0x34, 0x35, 0x36, 0x37, 0x38, 0x39, 0x3A, 0x43, 0x44, 0x45,
	0x46, 0x47, 0x48, 0x49, 0x4A, 0x53, 0x54, 0x55, 0x56, 0x57, 0x58, 0x59,
	0x5A, 0x63, 0x64, 0x65, 0x66, 0x67, 0x68, 0x69, 0x6A, 0x73, 0x74, 0x75,
	0x76, 0x77, 0x78, 0x79, 0x7A, 0x83, 0x84, 0x85, 0x86, 0x87, 0x88, 0x89,
	0x8A, 0x92, 0x93, 0x94, 0x95, 0x96, 0x97, 0x98, 0x99, 0x9A, 0xA2, 0xA3,
	0xA4, 0xA5, 0xA6, 0xA7, 0xA8, 0xA9, 0xAA, 0xB2, 0xB3, 0xB4, 0xB5, 0xB6,
	0xB7, 0xB8, 0xB9, 0xBA, 0xC2, 0xC3, 0xC4, 0xC5, 0xC6, 0xC7, 0xC8, 0xC9,
	0xCA, 0xD2, 0xD3, 0xD4, 0xD5, 0xD6, 0xD7, 0xD8, 0xD9, 0xDA, 0xE1, 0xE2,
	0xE3, 0xE4, 0xE5, 0xE6, 0xE7, 0xE8, 0xE9, 0xEA, 0xF1, 0xF2, 0xF3, 0xF4,
	0xF5, 0xF6, 0xF7, 0xF8, 0xF9, 0xFA, 0xFF, 0xDA, 0x00, 0x08, 0x01, 0x01,
	0x00, 0x00, 0x3F, 0x00, 0xF5, 0x7F, 0xFF, 0xD9,
}
