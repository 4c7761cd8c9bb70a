package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/reelquiz/reelquiz/internal/logging"
	"github.com/reelquiz/reelquiz/internal/metrics"
)

// envelope is the on-disk entry format: the payload plus its write timestamp.
type envelope struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// Store is a content-addressable, file-per-entry cache for one cache domain.
// All disk access goes through a single mutex so concurrent requests never
// observe partial writes. The directory is created lazily on first use.
type Store struct {
	dir    string
	domain string
	log    zerolog.Logger

	mu      sync.Mutex
	created bool
}

// NewStore returns a store rooted at dir. The domain name is used for logging
// and metrics only.
func NewStore(dir, domain string) *Store {
	return &Store{
		dir:    dir,
		domain: domain,
		log:    logging.WithComponent("cache").With().Str("domain", domain).Logger(),
	}
}

// Dir returns the store's root directory, creating it if necessary.
func (s *Store) Dir() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureDirLocked(); err != nil {
		return "", err
	}
	return s.dir, nil
}

func (s *Store) ensureDirLocked() error {
	if s.created {
		return nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir %s: %w", s.dir, err)
	}
	s.created = true
	return nil
}

// Get loads the payload stored under key into out. A missing entry is not an
// error; a corrupted entry is deleted and reported as a miss.
func (s *Store) Get(key string, out any) (bool, error) {
	if key == "" {
		metrics.CacheMisses.WithLabelValues(s.domain).Inc()
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, key+".json")
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			metrics.CacheMisses.WithLabelValues(s.domain).Inc()
			return false, nil
		}
		return false, fmt.Errorf("read cache entry: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err == nil {
			metrics.CacheHits.WithLabelValues(s.domain).Inc()
			return true, nil
		}
	}

	// Unparseable entry: drop it and treat as a miss.
	s.log.Warn().Str("key", key).Msg("removing corrupted cache entry")
	_ = os.Remove(path)
	metrics.CacheMisses.WithLabelValues(s.domain).Inc()
	return false, nil
}

// Put stores the payload under key, stamping it with the current time.
func (s *Store) Put(key string, payload any) error {
	if key == "" {
		return fmt.Errorf("empty cache key")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal cache payload: %w", err)
	}
	raw, err := json.Marshal(envelope{Data: data, Timestamp: time.Now().Unix()})
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureDirLocked(); err != nil {
		return err
	}
	path := filepath.Join(s.dir, key+".json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// Clear removes entries older than maxAge, and every entry when maxAge is
// zero. Artifact files (e.g. extracted JPEG stills) are swept by the same
// rule. Returns the number of files removed.
func (s *Store) Clear(maxAge time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read cache dir: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if maxAge > 0 {
			info, err := entry.Info()
			if err != nil || info.ModTime().After(cutoff) {
				continue
			}
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			s.log.Warn().Err(err).Str("file", entry.Name()).Msg("failed to remove cache file")
			continue
		}
		removed++
	}
	if removed > 0 {
		metrics.CacheEvictions.WithLabelValues(s.domain).Add(float64(removed))
		s.log.Info().Int("removed", removed).Msg("cache cleared")
	}
	return removed, nil
}

// Stats reports the number of files in the store and their combined size.
func (s *Store) Stats() (count int, bytes int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("read cache dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		count++
		bytes += info.Size()
	}
	return count, bytes, nil
}

// ArtifactPath maps a cache-issued artifact file name (e.g. a still-frame
// JPEG) to its on-disk path. Names containing path separators or traversal
// elements are rejected.
func (s *Store) ArtifactPath(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}
	return filepath.Join(s.dir, name), nil
}
