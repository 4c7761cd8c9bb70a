package trivia

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/reelquiz/reelquiz/internal/library"
	"github.com/reelquiz/reelquiz/internal/quote"
	"github.com/reelquiz/reelquiz/internal/session"
	"github.com/reelquiz/reelquiz/internal/video"
)

func (e *Engine) extractQuotes(path string, rng *rand.Rand) ([]quote.Block, error) {
	return quote.Extract(path, e.opts.Quote, e.opts.QuoteRounds, rng)
}

// framed assembles a still-frame question synchronously: a handful of random
// full frames written as cache-backed JPEGs.
func (e *Engine) framed(ctx context.Context) (*Round, error) {
	movies := e.movies(ctx)
	if len(movies) == 0 {
		return nil, ErrNoMedia
	}

	rng := newRNG()
	var movie library.MediaItem
	var path string
	found := false
	for _, i := range titleOrder(len(movies), rng) {
		if p, ok := e.mediaFile(movies[i]); ok {
			movie, path, found = movies[i], p, true
			break
		}
	}
	if !found {
		return nil, ErrInsufficientMaterial
	}

	params := fmt.Sprintf("stills=%d", e.opts.StillFrameCount)
	key, err := fileIdentity(path, params)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	q := &Question{Mode: "framed", Title: movie.Title}
	if details := e.details(ctx, movie); details != nil {
		q.Poster = e.meta.ImageURL(details.PosterPath, "")
		q.Tagline = details.Tagline
	}

	var stills []video.StillFrame
	if ok, err := e.stillCache.Get(key, &stills); err == nil && ok {
		q.Stills = stills
		return &Round{Question: q}, nil
	}

	dec, err := e.openDecoder(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer dec.Close()

	destDir, err := e.stillCache.Dir()
	if err != nil {
		return nil, err
	}
	stills, err = video.ExtractStills(dec, e.opts.StillFrameCount, destDir, key, rng)
	if err != nil {
		return nil, err
	}

	if err := e.stillCache.Put(key, stills); err != nil {
		e.log.Warn().Err(err).Str("title", movie.Title).Msg("still cache write failed")
	}
	q.Stills = stills
	return &Round{Question: q}, nil
}

// frame starts an average-color round. A cache hit answers immediately; a
// miss registers a background session owning the open decoder and returns its
// id for polling. The triggering request never blocks on decode work.
func (e *Engine) frame(ctx context.Context) (*Round, error) {
	movies := e.movies(ctx)
	if len(movies) == 0 {
		return nil, ErrNoMedia
	}

	rng := newRNG()
	var movie library.MediaItem
	var path string
	found := false
	for _, i := range titleOrder(len(movies), rng) {
		if p, ok := e.mediaFile(movies[i]); ok {
			movie, path, found = movies[i], p, true
			break
		}
	}
	if !found {
		return nil, ErrInsufficientMaterial
	}

	params := fmt.Sprintf("colors=%d", e.opts.FrameSampleTarget)
	key, err := fileIdentity(path, params)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	q := Question{Mode: "frame", Title: movie.Title}
	if details := e.details(ctx, movie); details != nil {
		q.Poster = e.meta.ImageURL(details.PosterPath, "")
		q.Tagline = details.Tagline
	}

	var samples []video.ColorSample
	if ok, err := e.colorCache.Get(key, &samples); err == nil && ok {
		q.Frames = samples
		return &Round{Question: &q}, nil
	}

	// The session, not this request, owns the decoder from here on. The
	// worker context is detached: the job outlives the HTTP request and is
	// bounded by cancellation and the registry sweep instead.
	dec, err := e.openDecoder(context.Background(), path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	id := e.sessions.Create(dec)
	go e.sampleWorker(id, dec, key, q)

	return &Round{SessionID: id}, nil
}

// sampleWorker runs the average-color decode in the background, reporting
// progress through the registry. Update returning false means the session was
// cancelled or swept; the worker stops without touching the cache.
func (e *Engine) sampleWorker(id string, dec *video.Decoder, key string, q Question) {
	if !e.sessions.Update(id, 0, 0, "opening video", session.StatusProcessing) {
		return
	}

	samples, err := video.SampleColors(dec, e.opts.FrameSampleTarget, func(done, total int) bool {
		return e.sessions.Update(id, done, total, "sampling frames", session.StatusProcessing)
	})
	if err != nil {
		if errors.Is(err, video.ErrCancelled) {
			e.log.Debug().Str("session", id).Msg("sampling cancelled")
			return
		}
		e.log.Error().Err(err).Str("session", id).Str("title", q.Title).Msg("frame sampling failed")
		e.sessions.Fail(id, "frame sampling failed")
		return
	}

	if !e.sessions.Update(id, len(samples), len(samples), "caching result", session.StatusFinishing) {
		return
	}

	// Cache write happens before the session reports completed.
	if err := e.colorCache.Put(key, samples); err != nil {
		e.log.Warn().Err(err).Str("session", id).Msg("color cache write failed")
	}
	q.Frames = samples
	e.sessions.Complete(id, &q)
}
