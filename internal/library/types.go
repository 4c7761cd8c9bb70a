package library

import (
	"context"
	"strconv"
	"strings"
)

// MediaItem is a movie or show record from the media library collaborator.
// The core never mutates items; absent attributes are zero values.
type MediaItem struct {
	RatingKey string   `json:"rating_key"`
	Title     string   `json:"title"`
	Year      int      `json:"year,omitempty"`
	Summary   string   `json:"summary,omitempty"`
	Thumb     string   `json:"thumb,omitempty"`
	Actors    []string `json:"actors,omitempty"`
	GUIDs     []string `json:"guids,omitempty"`
	Files     []string `json:"files,omitempty"`
}

// TMDbID extracts the TMDb identifier from the item's external GUID
// references ("tmdb://603").
func (m MediaItem) TMDbID() (int64, bool) {
	for _, guid := range m.GUIDs {
		rest, found := strings.CutPrefix(guid, "tmdb://")
		if !found {
			continue
		}
		if id, err := strconv.ParseInt(rest, 10, 64); err == nil {
			return id, true
		}
	}
	return 0, false
}

// Client lists the media library's contents. Implementations degrade to an
// empty list when the library is unreachable rather than failing requests.
type Client interface {
	Movies(ctx context.Context) ([]MediaItem, error)
	Shows(ctx context.Context) ([]MediaItem, error)
}
