package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelquiz/reelquiz/internal/cache"
	"github.com/reelquiz/reelquiz/internal/library"
	"github.com/reelquiz/reelquiz/internal/metadata"
	"github.com/reelquiz/reelquiz/internal/pathmap"
	"github.com/reelquiz/reelquiz/internal/session"
	"github.com/reelquiz/reelquiz/internal/trivia"
)

type stubLibrary struct {
	movies []library.MediaItem
	shows  []library.MediaItem
	err    error
}

func (f *stubLibrary) Movies(context.Context) ([]library.MediaItem, error) {
	return f.movies, f.err
}

func (f *stubLibrary) Shows(context.Context) ([]library.MediaItem, error) {
	return f.shows, f.err
}

type stubMetadata struct{}

func (stubMetadata) MovieDetails(context.Context, int64) (*metadata.Details, error) {
	return nil, nil
}

func (stubMetadata) MovieCredits(context.Context, int64) (*metadata.Credits, error) {
	return nil, nil
}

func (stubMetadata) ImageURL(path, _ string) string { return path }

type fixture struct {
	server   *Server
	sessions *session.Registry
	colors   *cache.Store
	stills   *cache.Store
}

func newFixture(t *testing.T, lib library.Client) fixture {
	t.Helper()
	dir := t.TempDir()
	sessions := session.NewRegistry()
	colors := cache.NewStore(filepath.Join(dir, "frame_colors"), "frame_colors")
	stills := cache.NewStore(filepath.Join(dir, "still_frames"), "still_frames")

	engine := trivia.NewEngine(
		lib,
		stubMetadata{},
		pathmap.NewResolver(pathmap.DefaultRules(filepath.Join(dir, "media"))),
		sessions,
		colors,
		stills,
		trivia.Options{},
	)
	stores := map[string]*cache.Store{
		"frame_colors": colors,
		"still_frames": stills,
	}
	srv := NewServer(engine, sessions, stores, stills, WithLibrary(lib))
	return fixture{server: srv, sessions: sessions, colors: colors, stills: stills}
}

func doRequest(t *testing.T, srv *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestTriviaRoundOK(t *testing.T) {
	lib := &stubLibrary{movies: []library.MediaItem{
		{RatingKey: "1", Title: "Alpha", Year: 1999, Summary: "First."},
	}}
	fx := newFixture(t, lib)

	rec := doRequest(t, fx.server, http.MethodGet, "/api/trivia/year")
	require.Equal(t, http.StatusOK, rec.Code)

	var q trivia.Question
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &q))
	assert.Equal(t, "year", q.Mode)
	assert.Equal(t, "Alpha", q.Title)
	assert.Equal(t, 1999, q.Year)
}

func TestTriviaUnknownMode(t *testing.T) {
	fx := newFixture(t, &stubLibrary{})

	rec := doRequest(t, fx.server, http.MethodGet, "/api/trivia/karaoke")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTriviaEmptyLibrary(t *testing.T) {
	fx := newFixture(t, &stubLibrary{})

	rec := doRequest(t, fx.server, http.MethodGet, "/api/trivia/poster")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionLifecycle(t *testing.T) {
	fx := newFixture(t, &stubLibrary{})

	id := fx.sessions.Create(nil)
	fx.sessions.Update(id, 5, 10, "working", session.StatusProcessing)

	rec := doRequest(t, fx.server, http.MethodGet, "/api/session/"+id)
	require.Equal(t, http.StatusOK, rec.Code)
	var snap session.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, session.StatusProcessing, snap.Status)
	assert.Equal(t, 5, snap.Progress)

	fx.sessions.Complete(id, map[string]string{"done": "yes"})

	rec = doRequest(t, fx.server, http.MethodGet, "/api/session/"+id)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, session.StatusCompleted, snap.Status)

	// Completed sessions are consumed by the read.
	rec = doRequest(t, fx.server, http.MethodGet, "/api/session/"+id)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionCancelAlwaysNoContent(t *testing.T) {
	fx := newFixture(t, &stubLibrary{})

	rec := doRequest(t, fx.server, http.MethodDelete, "/api/session/no-such-session")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	id := fx.sessions.Create(nil)
	rec = doRequest(t, fx.server, http.MethodDelete, "/api/session/"+id)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, fx.sessions.Len())
}

func TestCacheStatsAndClear(t *testing.T) {
	fx := newFixture(t, &stubLibrary{})
	require.NoError(t, fx.colors.Put("abc", map[string]int{"x": 1}))

	rec := doRequest(t, fx.server, http.MethodGet, "/api/cache")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats map[string]cacheDomainStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats["frame_colors"].Entries)
	assert.Positive(t, stats["frame_colors"].Bytes)
	assert.Equal(t, 0, stats["still_frames"].Entries)

	rec = doRequest(t, fx.server, http.MethodDelete, "/api/cache?max_age=bogus")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, fx.server, http.MethodDelete, "/api/cache")
	require.Equal(t, http.StatusOK, rec.Code)
	var cleared map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cleared))
	assert.Equal(t, 1, cleared["removed"])
}

func TestFrameArtifact(t *testing.T) {
	fx := newFixture(t, &stubLibrary{})

	dir, err := fx.stills.Dir()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "deadbeef_12.jpg"), []byte("jpeg"), 0o644))

	rec := doRequest(t, fx.server, http.MethodGet, "/api/frames/deadbeef_12.jpg")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jpeg", rec.Body.String())

	rec = doRequest(t, fx.server, http.MethodGet, "/api/frames/missing.jpg")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLibraryListing(t *testing.T) {
	lib := &stubLibrary{
		movies: []library.MediaItem{
			{Title: "Alpha", Year: 1999},
			{Title: "Beta"},
		},
		shows: []library.MediaItem{
			{Title: "Gamma Show", Year: 2005},
		},
	}
	fx := newFixture(t, lib)

	rec := doRequest(t, fx.server, http.MethodGet, "/api/library")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp libraryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Alpha (1999)", "Beta"}, resp.Movies)
	assert.Equal(t, []string{"Gamma Show (2005)"}, resp.Shows)
}

func TestLibraryListingDegradesWhenUnavailable(t *testing.T) {
	lib := &stubLibrary{
		movies: []library.MediaItem{{Title: "Alpha", Year: 1999}},
		err:    errors.New("connection refused"),
	}
	fx := newFixture(t, lib)

	rec := doRequest(t, fx.server, http.MethodGet, "/api/library")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp libraryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Movies)
	assert.Empty(t, resp.Shows)
}

func TestHealthz(t *testing.T) {
	fx := newFixture(t, &stubLibrary{})

	rec := doRequest(t, fx.server, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}
