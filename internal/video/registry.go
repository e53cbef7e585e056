package video

import "sync"

// Status enumerates the lifecycle states of a generation job. StatusGenerating
// is the only non-terminal state; StatusFailed is terminal but retriable,
// StatusReady is permanently superseded by the artifact store.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusGenerating Status = "generating"
	StatusReady      Status = "ready"
	StatusFailed     Status = "failed"
)

// JobState is the mutable record tracked per fingerprint while a pipeline run
// is in flight or recently finished.
type JobState struct {
	Status   Status `json:"status"`
	Progress int    `json:"progress"`
	Message  string `json:"message,omitempty"`
	URL      string `json:"url,omitempty"`
}

// Registry holds the live state of generation attempts keyed by fingerprint.
// Insert is an atomic check-and-insert so two concurrent submissions of the
// same fingerprint cannot both dispatch a pipeline. Implementations must be
// safe for concurrent use.
type Registry interface {
	Get(id string) (JobState, bool)
	// Insert stores st under id only if no entry exists and reports whether
	// the insert happened.
	Insert(id string, st JobState) bool
	Update(id string, st JobState)
	Delete(id string)
}

// MemoryRegistry is the in-process Registry. State does not survive a
// restart; the artifact store is the durable source of truth for finished
// videos.
type MemoryRegistry struct {
	mu   sync.RWMutex
	jobs map[string]JobState
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{jobs: make(map[string]JobState)}
}

func (r *MemoryRegistry) Get(id string) (JobState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.jobs[id]
	return st, ok
}

func (r *MemoryRegistry) Insert(id string, st JobState) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.jobs[id]; exists {
		return false
	}
	r.jobs[id] = st
	return true
}

func (r *MemoryRegistry) Update(id string, st JobState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[id] = st
}

func (r *MemoryRegistry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, id)
}

var _ Registry = (*MemoryRegistry)(nil)
