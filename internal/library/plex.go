package library

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/reelquiz/reelquiz/internal/logging"
)

// PlexClient reads the library over Plex's JSON API. It is deliberately thin:
// section discovery plus item listing, nothing else.
type PlexClient struct {
	baseURL string
	token   string
	http    *http.Client
	log     zerolog.Logger
}

func NewPlexClient(baseURL, token string) *PlexClient {
	return &PlexClient{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     logging.WithComponent("plex"),
	}
}

// mediaContainer mirrors the subset of Plex's response envelope we read.
type mediaContainer struct {
	MediaContainer struct {
		Directory []struct {
			Key  string `json:"key"`
			Type string `json:"type"`
		} `json:"Directory"`
		Metadata []struct {
			RatingKey string `json:"ratingKey"`
			Title     string `json:"title"`
			Year      int    `json:"year"`
			Summary   string `json:"summary"`
			Thumb     string `json:"thumb"`
			Guid      []struct {
				ID string `json:"id"`
			} `json:"Guid"`
			Role []struct {
				Tag string `json:"tag"`
			} `json:"Role"`
			Media []struct {
				Part []struct {
					File string `json:"file"`
				} `json:"Part"`
			} `json:"Media"`
		} `json:"Metadata"`
	} `json:"MediaContainer"`
}

func (c *PlexClient) Movies(ctx context.Context) ([]MediaItem, error) {
	return c.sectionItems(ctx, "movie")
}

func (c *PlexClient) Shows(ctx context.Context) ([]MediaItem, error) {
	return c.sectionItems(ctx, "show")
}

func (c *PlexClient) sectionItems(ctx context.Context, sectionType string) ([]MediaItem, error) {
	if c.baseURL == "" {
		return nil, nil
	}

	var container mediaContainer
	if err := c.get(ctx, "/library/sections", &container); err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}

	var items []MediaItem
	for _, dir := range container.MediaContainer.Directory {
		if dir.Type != sectionType {
			continue
		}
		var section mediaContainer
		if err := c.get(ctx, "/library/sections/"+dir.Key+"/all", &section); err != nil {
			return nil, fmt.Errorf("list section %s: %w", dir.Key, err)
		}
		for _, md := range section.MediaContainer.Metadata {
			item := MediaItem{
				RatingKey: md.RatingKey,
				Title:     md.Title,
				Year:      md.Year,
				Summary:   md.Summary,
				Thumb:     c.absoluteURL(md.Thumb),
			}
			for _, guid := range md.Guid {
				item.GUIDs = append(item.GUIDs, guid.ID)
			}
			for _, role := range md.Role {
				item.Actors = append(item.Actors, role.Tag)
			}
			for _, media := range md.Media {
				for _, part := range media.Part {
					if part.File != "" {
						item.Files = append(item.Files, part.File)
					}
				}
			}
			items = append(items, item)
		}
	}
	return items, nil
}

func (c *PlexClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Plex-Token", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("plex returned %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// absoluteURL turns a thumb reference into a tokenized URL on the Plex host.
func (c *PlexClient) absoluteURL(thumb string) string {
	if thumb == "" {
		return ""
	}
	u, err := url.Parse(c.baseURL + thumb)
	if err != nil {
		return ""
	}
	q := u.Query()
	q.Set("X-Plex-Token", c.token)
	u.RawQuery = q.Encode()
	return u.String()
}
