package session

import (
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/reelquiz/reelquiz/internal/logging"
	"github.com/reelquiz/reelquiz/internal/metrics"
)

type Status string

const (
	StatusInitializing Status = "initializing"
	StatusProcessing   Status = "processing"
	StatusFinishing    Status = "finishing"
	StatusCompleted    Status = "completed"
	StatusError        Status = "error"
	StatusCancelled    Status = "cancelled"
)

// session is the registry's internal record. The resource handle is owned by
// the registry and is never exposed through snapshots.
type session struct {
	id        string
	progress  int
	total     int
	status    Status
	message   string
	result    any
	err       string
	createdAt time.Time

	handle    io.Closer
	closeOnce sync.Once
}

func (s *session) release(log zerolog.Logger) {
	if s.handle == nil {
		return
	}
	s.closeOnce.Do(func() {
		if err := s.handle.Close(); err != nil {
			log.Warn().Err(err).Str("session", s.id).Msg("failed to release session resource")
		}
	})
}

// Snapshot is the caller-visible view of a session.
type Snapshot struct {
	ID        string    `json:"id"`
	Progress  int       `json:"progress"`
	Total     int       `json:"total"`
	Status    Status    `json:"status"`
	Message   string    `json:"message"`
	Result    any       `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Registry tracks in-flight background processing sessions. The lock guards
// only the map; decode work never runs under it. Workers detect cancellation
// by Update returning false once their session is gone.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*session
	log      zerolog.Logger
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*session),
		log:      logging.WithComponent("session"),
	}
}

// Create registers a new session holding the given resource handle and
// returns its id. The handle may be nil. It is released exactly once, on
// completion, cancellation, or sweep.
func (r *Registry) Create(handle io.Closer) string {
	id := uuid.NewString()

	r.mu.Lock()
	r.sessions[id] = &session{
		id:        id,
		status:    StatusInitializing,
		message:   "initializing",
		createdAt: time.Now(),
		handle:    handle,
	}
	size := len(r.sessions)
	r.mu.Unlock()

	metrics.ActiveSessions.Set(float64(size))
	return id
}

// Update records worker progress. A false return means the session no longer
// exists (cancelled or swept); the worker must stop promptly.
func (r *Registry) Update(id string, progress, total int, message string, status Status) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return false
	}
	if progress > s.progress {
		s.progress = progress
	}
	if total > 0 {
		s.total = total
	}
	if message != "" {
		s.message = message
	}
	if status != "" {
		s.status = status
	}
	return true
}

// Complete marks the session finished with the given result and releases its
// resource handle. The session stays readable until the client polls it.
func (r *Registry) Complete(id string, result any) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		s.status = StatusCompleted
		s.progress = s.total
		s.message = "completed"
		s.result = result
	}
	r.mu.Unlock()

	if ok {
		s.release(r.log)
	}
	return ok
}

// Fail records a worker failure into the session and releases its handle.
// The error stays readable until the client polls it.
func (r *Registry) Fail(id string, message string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		s.status = StatusError
		s.err = message
		s.message = message
	}
	r.mu.Unlock()

	if ok {
		s.release(r.log)
	}
	return ok
}

// Read returns the session's current snapshot. Terminal sessions are removed
// once read, so a finished result is delivered exactly once.
func (r *Registry) Read(id string) (Snapshot, bool) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if !ok {
		r.mu.Unlock()
		return Snapshot{}, false
	}
	snap := snapshotLocked(s)
	terminal := s.status == StatusCompleted || s.status == StatusError
	if terminal {
		delete(r.sessions, id)
	}
	size := len(r.sessions)
	r.mu.Unlock()

	if terminal {
		s.release(r.log)
		metrics.ActiveSessions.Set(float64(size))
	}
	return snap, true
}

// Cancel drops the session and releases its resource handle. Cancelling an
// unknown or already-cancelled id is a no-op.
func (r *Registry) Cancel(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	size := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return false
	}
	s.release(r.log)
	metrics.ActiveSessions.Set(float64(size))
	r.log.Info().Str("session", id).Msg("session cancelled")
	return true
}

// Sweep removes sessions older than maxAge regardless of state, releasing
// their handles. Returns the number of sessions removed.
func (r *Registry) Sweep(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	r.mu.Lock()
	var expired []*session
	for id, s := range r.sessions {
		if s.createdAt.Before(cutoff) {
			delete(r.sessions, id)
			expired = append(expired, s)
		}
	}
	size := len(r.sessions)
	r.mu.Unlock()

	for _, s := range expired {
		s.release(r.log)
		r.log.Info().Str("session", s.id).Msg("session swept")
	}
	if len(expired) > 0 {
		metrics.ActiveSessions.Set(float64(size))
	}
	return len(expired)
}

// Len reports the number of tracked sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func snapshotLocked(s *session) Snapshot {
	return Snapshot{
		ID:        s.id,
		Progress:  s.progress,
		Total:     s.total,
		Status:    s.status,
		Message:   s.message,
		Result:    s.result,
		Error:     s.err,
		CreatedAt: s.createdAt,
	}
}
