package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrRemoteNotConfigured reports missing remote-storage credentials. The
// check runs at call time so the service still starts without a bucket.
var ErrRemoteNotConfigured = errors.New("storage: SUPABASE_URL and SUPABASE_SERVICE_KEY must be set")

// remotePrefix is the object path prefix inside the bucket.
const remotePrefix = "generated"

// RemoteStore pushes finished videos to a Supabase-compatible storage bucket.
// It is a standby collaborator: the generation pipeline serves from local
// disk and does not call it on the request path.
type RemoteStore struct {
	baseURL    string
	serviceKey string
	bucket     string
	httpClient *http.Client
	logger     zerolog.Logger
}

type RemoteOptions struct {
	BaseURL    string
	ServiceKey string
	Bucket     string
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

func NewRemoteStore(opts RemoteOptions) *RemoteStore {
	bucket := strings.TrimSpace(opts.Bucket)
	if bucket == "" {
		bucket = "videos"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &RemoteStore{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		serviceKey: strings.TrimSpace(opts.ServiceKey),
		bucket:     bucket,
		httpClient: client,
		logger:     opts.Logger,
	}
}

func (r *RemoteStore) configured() bool {
	return r != nil && r.baseURL != "" && r.serviceKey != ""
}

func (r *RemoteStore) objectPath(hash string) string {
	return remotePrefix + "/" + hash + ".mp4"
}

// PublicURL returns the public fetch URL for a stored video.
func (r *RemoteStore) PublicURL(hash string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", r.baseURL, r.bucket, r.objectPath(hash))
}

// Upload pushes a local MP4 to the bucket and returns its public URL.
func (r *RemoteStore) Upload(ctx context.Context, localPath, hash string) (string, error) {
	if !r.configured() {
		return "", ErrRemoteNotConfigured
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", fmt.Errorf("storage: read local video: %w", err)
	}

	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", r.baseURL, r.bucket, r.objectPath(hash))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("storage: build upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.serviceKey)
	req.Header.Set("Content-Type", "video/mp4")
	req.Header.Set("x-upsert", "true")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("storage: upload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("storage: upload error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	url := r.PublicURL(hash)
	r.logger.Info().Str("hash", hash).Int("bytes", len(data)).Str("url", url).Msg("storage: remote upload complete")
	return url, nil
}

// Delete removes a video from the bucket. It returns false when the object
// was already gone.
func (r *RemoteStore) Delete(ctx context.Context, hash string) (bool, error) {
	if !r.configured() {
		return false, ErrRemoteNotConfigured
	}
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", r.baseURL, r.bucket, r.objectPath(hash))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("storage: build delete request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.serviceKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("storage: delete: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("storage: delete error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return true, nil
}

type listEntry struct {
	Name string `json:"name"`
}

// Exists checks the bucket for the video and returns its public URL when
// present, or empty string when absent.
func (r *RemoteStore) Exists(ctx context.Context, hash string) (string, error) {
	if !r.configured() {
		return "", ErrRemoteNotConfigured
	}
	payload, err := json.Marshal(map[string]any{
		"prefix": remotePrefix,
		"search": hash + ".mp4",
		"limit":  1,
	})
	if err != nil {
		return "", fmt.Errorf("storage: marshal list request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/storage/v1/object/list/%s", r.baseURL, r.bucket)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("storage: build list request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.serviceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("storage: list: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("storage: list error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var entries []listEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return "", fmt.Errorf("storage: decode list response: %w", err)
	}
	if len(entries) == 0 {
		return "", nil
	}
	return r.PublicURL(hash), nil
}
