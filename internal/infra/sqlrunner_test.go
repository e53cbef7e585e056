package infra

import (
	"strings"
	"testing"
)

func TestExtractMarker(t *testing.T) {
	cases := []struct {
		name       string
		query      string
		wantMarker string
		wantErr    bool
	}{
		{
			name:       "valid marker",
			query:      "--sql interactions.insert\nINSERT INTO interactions VALUES ($1)",
			wantMarker: "interactions.insert",
		},
		{
			name:       "surrounding whitespace",
			query:      "\n  --sql video_events.insert\nINSERT INTO video_events VALUES ($1)\n",
			wantMarker: "video_events.insert",
		},
		{
			name:    "missing marker",
			query:   "SELECT 1",
			wantErr: true,
		},
		{
			name:    "uppercase marker rejected",
			query:   "--sql Interactions.Insert\nSELECT 1",
			wantErr: true,
		},
		{
			name:    "empty query",
			query:   "   ",
			wantErr: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			marker, trimmed, err := extractMarker(tc.query)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got marker %q", marker)
				}
				return
			}
			if err != nil {
				t.Fatalf("extractMarker: %v", err)
			}
			if marker != tc.wantMarker {
				t.Fatalf("marker = %q, want %q", marker, tc.wantMarker)
			}
			if strings.Contains(trimmed, "--sql") {
				t.Fatalf("marker line should be stripped from the query: %q", trimmed)
			}
		})
	}
}
