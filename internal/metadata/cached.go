package metadata

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/reelquiz/reelquiz/internal/cache"
	"github.com/reelquiz/reelquiz/internal/logging"
)

// CachedClient wraps a metadata client with indefinite on-disk caching of its
// responses. Collaborator failures fall through to the wrapped client's
// degraded (nil) result; cache failures are logged and bypassed.
type CachedClient struct {
	inner Client
	store *cache.Store
	log   zerolog.Logger
}

func NewCachedClient(inner Client, store *cache.Store) *CachedClient {
	return &CachedClient{
		inner: inner,
		store: store,
		log:   logging.WithComponent("metadata-cache"),
	}
}

func (c *CachedClient) MovieDetails(ctx context.Context, id int64) (*Details, error) {
	key := cache.DigestKey("movie_details", strconv.FormatInt(id, 10))

	var cached Details
	if ok, err := c.store.Get(key, &cached); err == nil && ok {
		return &cached, nil
	} else if err != nil {
		c.log.Warn().Err(err).Int64("movie", id).Msg("cache read failed")
	}

	details, err := c.inner.MovieDetails(ctx, id)
	if err != nil || details == nil {
		return details, err
	}
	if err := c.store.Put(key, details); err != nil {
		c.log.Warn().Err(err).Int64("movie", id).Msg("cache write failed")
	}
	return details, nil
}

func (c *CachedClient) MovieCredits(ctx context.Context, id int64) (*Credits, error) {
	key := cache.DigestKey("movie_credits", strconv.FormatInt(id, 10))

	var cached Credits
	if ok, err := c.store.Get(key, &cached); err == nil && ok {
		return &cached, nil
	} else if err != nil {
		c.log.Warn().Err(err).Int64("movie", id).Msg("cache read failed")
	}

	credits, err := c.inner.MovieCredits(ctx, id)
	if err != nil || credits == nil {
		return credits, err
	}
	if err := c.store.Put(key, credits); err != nil {
		c.log.Warn().Err(err).Int64("movie", id).Msg("cache write failed")
	}
	return credits, nil
}

func (c *CachedClient) ImageURL(path, size string) string {
	return c.inner.ImageURL(path, size)
}
