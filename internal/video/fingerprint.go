package video

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// narrationWindow is how many characters of the narration participate in the
// fingerprint. Two narrations sharing the same first 200 characters share a
// cached video.
const narrationWindow = 200

// fingerprintLen is the number of hex characters kept from the digest.
const fingerprintLen = 24

// Fingerprint derives the stable cache key for a generation request. The
// prompt is trimmed and lower-cased, the narration is trimmed and truncated
// to its first 200 characters, and the site id is taken verbatim. Identical
// semantic inputs always map to the same 24-hex-character handle.
func Fingerprint(prompt, narration, siteID string) string {
	p := strings.ToLower(strings.TrimSpace(prompt))
	n := truncateRunes(strings.TrimSpace(narration), narrationWindow)
	sum := sha256.Sum256([]byte(siteID + "::" + p + "::" + n))
	return hex.EncodeToString(sum[:])[:fingerprintLen]
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
