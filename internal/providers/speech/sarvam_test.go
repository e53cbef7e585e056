package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Options{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
		Logger:     zerolog.Nop(),
	})
}

func TestSynthesizeSendsExpectedPayload(t *testing.T) {
	wav := []byte("RIFF....WAVEfmt ")
	var got map[string]any

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/text-to-speech" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		if k := r.Header.Get("api-subscription-key"); k != "test-key" {
			t.Fatalf("api-subscription-key = %q", k)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"audios": []string{base64.StdEncoding.EncodeToString(wav)},
		})
	})

	out, err := c.Synthesize(context.Background(), "Welcome to the Taj Mahal.", "en-IN")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if string(out) != string(wav) {
		t.Fatalf("audio mismatch")
	}

	if got["model"] != "bulbul:v3" || got["speaker"] != "anushka" {
		t.Fatalf("payload model/speaker = %v/%v", got["model"], got["speaker"])
	}
	if got["target_language_code"] != "en-IN" {
		t.Fatalf("target_language_code = %v", got["target_language_code"])
	}
	// bulbul:v3 rejects the tuning knobs; they must be absent.
	for _, k := range []string{"pitch", "pace", "loudness", "speech_sample_rate", "enable_preprocessing"} {
		if _, ok := got[k]; ok {
			t.Fatalf("payload carries %q for bulbul:v3", k)
		}
	}
	inputs, ok := got["inputs"].([]any)
	if !ok || len(inputs) != 1 || inputs[0] != "Welcome to the Taj Mahal." {
		t.Fatalf("inputs = %v", got["inputs"])
	}
}

func TestSynthesizeLegacyModelCarriesTuning(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(map[string]any{"audios": []string{""}})
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Options{APIKey: "k", BaseURL: srv.URL, TTSModel: "bulbul:v2", HTTPClient: srv.Client(), Logger: zerolog.Nop()})
	if _, err := c.Synthesize(context.Background(), "hello", "en-IN"); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if _, ok := got["pace"]; !ok {
		t.Fatalf("legacy model payload should carry tuning parameters")
	}
}

func TestSynthesizeErrors(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		c := NewClient(Options{Logger: zerolog.Nop()})
		if _, err := c.Synthesize(context.Background(), "hi", "en-IN"); !errors.Is(err, ErrMissingAPIKey) {
			t.Fatalf("err = %v, want ErrMissingAPIKey", err)
		}
	})

	t.Run("upstream error surfaces body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"quota exhausted"}`, http.StatusTooManyRequests)
		})
		_, err := c.Synthesize(context.Background(), "hi", "en-IN")
		if err == nil || !strings.Contains(err.Error(), "quota exhausted") {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("empty audio list", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"audios": []string{}})
		})
		if _, err := c.Synthesize(context.Background(), "hi", "en-IN"); err == nil {
			t.Fatalf("expected error for empty audio list")
		}
	})
}

func TestTranscribeSendsMultipart(t *testing.T) {
	audio := []byte("RIFFfakewav")

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/speech-to-text" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("model"); got != "saarika:v2.5" {
			t.Fatalf("model = %q", got)
		}
		if got := r.FormValue("language_code"); got != "hi-IN" {
			t.Fatalf("language_code = %q", got)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		data, _ := io.ReadAll(file)
		if string(data) != string(audio) {
			t.Fatalf("uploaded audio mismatch")
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"transcript": "  नमस्ते  "})
	})

	text, err := c.Transcribe(context.Background(), audio, "hi-IN")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "नमस्ते" {
		t.Fatalf("transcript = %q, want trimmed", text)
	}
}

func TestTranscribeEmptyTranscript(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"transcript": "   "})
	})
	if _, err := c.Transcribe(context.Background(), []byte("RIFF"), "en-IN"); err == nil {
		t.Fatalf("expected error for blank transcript")
	}
}

func TestClampText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"short passes through", "hello world", "hello world"},
		{"exactly at limit", strings.Repeat("a", maxTTSChars), strings.Repeat("a", maxTTSChars)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := clampText(tc.in, maxTTSChars); got != tc.want {
				t.Fatalf("clampText = %q, want %q", got, tc.want)
			}
		})
	}

	t.Run("long text cut at word boundary", func(t *testing.T) {
		long := strings.Repeat("word ", 200)
		got := clampText(long, maxTTSChars)
		if utf8.RuneCountInString(got) > maxTTSChars+1 {
			t.Fatalf("clamped length = %d runes", utf8.RuneCountInString(got))
		}
		if !strings.HasSuffix(got, "…") {
			t.Fatalf("clamped text should end with ellipsis: %q", got)
		}
		if strings.HasSuffix(strings.TrimSuffix(got, "…"), " wor") {
			t.Fatalf("cut landed mid-word: %q", got)
		}
	})
}
