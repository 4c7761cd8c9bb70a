package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/reelquiz/reelquiz/internal/logging"
)

// TMDbClient is a thin wrapper over the TMDb v3 API.
type TMDbClient struct {
	apiKey   string
	apiURL   string
	imageURL string
	http     *http.Client
	log      zerolog.Logger
}

func NewTMDbClient(apiKey, apiURL, imageURL string) *TMDbClient {
	return &TMDbClient{
		apiKey:   apiKey,
		apiURL:   apiURL,
		imageURL: imageURL,
		http:     &http.Client{Timeout: 15 * time.Second},
		log:      logging.WithComponent("tmdb"),
	}
}

func (c *TMDbClient) MovieDetails(ctx context.Context, id int64) (*Details, error) {
	if c.apiKey == "" {
		return nil, nil
	}
	var details Details
	path := "/movie/" + strconv.FormatInt(id, 10) + "?append_to_response=credits&api_key=" + c.apiKey
	if err := c.get(ctx, path, &details); err != nil {
		return nil, fmt.Errorf("movie details %d: %w", id, err)
	}
	return &details, nil
}

func (c *TMDbClient) MovieCredits(ctx context.Context, id int64) (*Credits, error) {
	if c.apiKey == "" {
		return nil, nil
	}
	var credits Credits
	path := "/movie/" + strconv.FormatInt(id, 10) + "/credits?api_key=" + c.apiKey
	if err := c.get(ctx, path, &credits); err != nil {
		return nil, fmt.Errorf("movie credits %d: %w", id, err)
	}
	return &credits, nil
}

// ImageURL builds a full image URL from a TMDb image path and size token.
// Returns "" for an absent path so templates can treat it as nullable.
func (c *TMDbClient) ImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	if size == "" {
		size = "w500"
	}
	return c.imageURL + "/" + size + path
}

func (c *TMDbClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb returned %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
