package library

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sectionsJSON = `{"MediaContainer":{"Directory":[
	{"key":"1","type":"movie"},
	{"key":"2","type":"show"}
]}}`

const moviesJSON = `{"MediaContainer":{"Metadata":[{
	"ratingKey":"101",
	"title":"Alpha",
	"year":1999,
	"summary":"A hacker discovers the truth.",
	"thumb":"/library/metadata/101/thumb",
	"Guid":[{"id":"imdb://tt0133093"},{"id":"tmdb://603"}],
	"Role":[{"tag":"Keanu Reeves"},{"tag":"Carrie-Anne Moss"}],
	"Media":[{"Part":[{"file":"/data/media/Movies/Alpha.mkv"}]}]
}]}}`

func TestPlexClient_MoviesParsesContainer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("X-Plex-Token"))
		switch r.URL.Path {
		case "/library/sections":
			_, _ = w.Write([]byte(sectionsJSON))
		case "/library/sections/1/all":
			_, _ = w.Write([]byte(moviesJSON))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewPlexClient(srv.URL, "token123")
	movies, err := client.Movies(context.Background())
	require.NoError(t, err)
	require.Len(t, movies, 1)

	m := movies[0]
	assert.Equal(t, "Alpha", m.Title)
	assert.Equal(t, 1999, m.Year)
	assert.Equal(t, []string{"/data/media/Movies/Alpha.mkv"}, m.Files)
	assert.Contains(t, m.Thumb, "X-Plex-Token=token123")

	id, ok := m.TMDbID()
	require.True(t, ok)
	assert.Equal(t, int64(603), id)
}

func TestPlexClient_EmptyBaseURLDegrades(t *testing.T) {
	client := NewPlexClient("", "")

	movies, err := client.Movies(context.Background())
	require.NoError(t, err)
	assert.Empty(t, movies)
}

func TestMediaItem_TMDbIDAbsent(t *testing.T) {
	item := MediaItem{GUIDs: []string{"imdb://tt0133093"}}

	_, ok := item.TMDbID()
	assert.False(t, ok)
}
