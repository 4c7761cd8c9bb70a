package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/reelquiz/reelquiz/internal/library"
	"github.com/reelquiz/reelquiz/internal/trivia"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleTrivia(w http.ResponseWriter, r *http.Request) {
	mode := chi.URLParam(r, "mode")

	round, err := s.engine.StartRound(r.Context(), mode)
	if err != nil {
		switch {
		case errors.Is(err, trivia.ErrUnknownMode),
			errors.Is(err, trivia.ErrNoMedia),
			errors.Is(err, trivia.ErrInsufficientMaterial):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			s.log.Error().Err(err).Str("mode", mode).Msg("round failed")
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	if round.SessionID != "" {
		writeJSON(w, http.StatusAccepted, map[string]string{"session_id": round.SessionID})
		return
	}
	writeJSON(w, http.StatusOK, round.Question)
}

func (s *Server) handleSessionRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, ok := s.sessions.Read(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleSessionCancel answers 204 regardless: cancelling a finished or unknown
// session is not an error from the client's point of view.
func (s *Server) handleSessionCancel(w http.ResponseWriter, r *http.Request) {
	s.sessions.Cancel(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

type cacheDomainStats struct {
	Entries int   `json:"entries"`
	Bytes   int64 `json:"bytes"`
}

func (s *Server) handleCacheStats(w http.ResponseWriter, _ *http.Request) {
	stats := make(map[string]cacheDomainStats, len(s.stores))
	for name, store := range s.stores {
		entries, bytes, err := store.Stats()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		stats[name] = cacheDomainStats{Entries: entries, Bytes: bytes}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	var maxAge time.Duration
	if raw := r.URL.Query().Get("max_age"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "invalid max_age")
			return
		}
		maxAge = parsed
	}

	removed := 0
	for name, store := range s.stores {
		n, err := store.Clear(maxAge)
		if err != nil {
			s.log.Error().Err(err).Str("domain", name).Msg("cache clear failed")
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		removed += n
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	path, err := s.stills.ArtifactPath(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid frame name")
		return
	}
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, "frame not found")
		return
	}
	http.ServeFile(w, r, path)
}

type libraryResponse struct {
	Movies []string `json:"movies"`
	Shows  []string `json:"shows"`
}

func (s *Server) handleLibrary(w http.ResponseWriter, r *http.Request) {
	if s.lib == nil {
		writeError(w, http.StatusNotImplemented, "library is not configured")
		return
	}

	var movies, shows []library.MediaItem
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		movies, err = s.lib.Movies(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		shows, err = s.lib.Shows(ctx)
		return err
	})
	// An unreachable library degrades to empty listings, matching the
	// collaborator's own behavior elsewhere in the API.
	if err := g.Wait(); err != nil {
		s.log.Warn().Err(err).Msg("library unavailable")
		movies, shows = nil, nil
	}

	writeJSON(w, http.StatusOK, libraryResponse{
		Movies: titleLines(movies),
		Shows:  titleLines(shows),
	})
}

func titleLines(items []library.MediaItem) []string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		if item.Year > 0 {
			lines = append(lines, fmt.Sprintf("%s (%d)", item.Title, item.Year))
			continue
		}
		lines = append(lines, item.Title)
	}
	return lines
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}
