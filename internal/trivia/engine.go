package trivia

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/reelquiz/reelquiz/internal/cache"
	"github.com/reelquiz/reelquiz/internal/library"
	"github.com/reelquiz/reelquiz/internal/logging"
	"github.com/reelquiz/reelquiz/internal/metadata"
	"github.com/reelquiz/reelquiz/internal/pathmap"
	"github.com/reelquiz/reelquiz/internal/quote"
	"github.com/reelquiz/reelquiz/internal/session"
	"github.com/reelquiz/reelquiz/internal/video"
)

// retryBudget bounds every retry-by-different-title loop. One consistent
// budget for all modes; cache lookups never retry.
const retryBudget = 10

var (
	// ErrNoMedia means the library collaborator returned no usable items.
	ErrNoMedia = errors.New("no media found")

	// ErrUnknownMode means the requested game mode does not exist.
	ErrUnknownMode = errors.New("unknown game mode")

	// ErrInsufficientMaterial means no title could supply enough material
	// (dialogue blocks, distractors, media files) within the retry budget.
	ErrInsufficientMaterial = errors.New("insufficient material for this mode")
)

// Options carries the per-mode tuning knobs.
type Options struct {
	FrameSampleTarget int
	StillFrameCount   int
	QuoteRounds       int
	Quote             quote.Options
}

func (o Options) withDefaults() Options {
	if o.FrameSampleTarget <= 0 {
		o.FrameSampleTarget = 300
	}
	if o.StillFrameCount <= 0 {
		o.StillFrameCount = 5
	}
	if o.QuoteRounds <= 0 {
		o.QuoteRounds = 3
	}
	return o
}

// Engine assembles trivia questions from the media library, external
// metadata, and on-disk video analysis.
type Engine struct {
	lib      library.Client
	meta     metadata.Client
	resolver *pathmap.Resolver
	sessions *session.Registry

	colorCache *cache.Store
	stillCache *cache.Store

	opts Options
	log  zerolog.Logger

	// openDecoder is swappable for tests; production uses video.Open.
	openDecoder func(ctx context.Context, path string) (*video.Decoder, error)
}

func NewEngine(
	lib library.Client,
	meta metadata.Client,
	resolver *pathmap.Resolver,
	sessions *session.Registry,
	colorCache, stillCache *cache.Store,
	opts Options,
) *Engine {
	return &Engine{
		lib:         lib,
		meta:        meta,
		resolver:    resolver,
		sessions:    sessions,
		colorCache:  colorCache,
		stillCache:  stillCache,
		opts:        opts.withDefaults(),
		log:         logging.WithComponent("trivia"),
		openDecoder: video.Open,
	}
}

// CastEntry is one cast member in a question payload.
type CastEntry struct {
	Name      string `json:"name"`
	Character string `json:"character,omitempty"`
	Profile   string `json:"profile,omitempty"`
}

// TimelineEntry is one title in a timeline-ordering question.
type TimelineEntry struct {
	Title  string `json:"title"`
	Year   int    `json:"year"`
	Poster string `json:"poster,omitempty"`
}

// Question is the uniform per-mode payload. Modes fill only the fields they
// use; absent metadata leaves fields empty rather than failing the round.
type Question struct {
	Mode    string              `json:"mode"`
	Title   string              `json:"title"`
	Year    int                 `json:"year,omitempty"`
	Summary string              `json:"summary,omitempty"`
	Poster  string              `json:"poster,omitempty"`
	Tagline string              `json:"tagline,omitempty"`
	Cast    []CastEntry         `json:"cast,omitempty"`
	Frames  []video.ColorSample `json:"frames,omitempty"`
	Stills  []video.StillFrame  `json:"stills,omitempty"`
	Quotes  [][]string          `json:"quotes,omitempty"`
	Entries []TimelineEntry     `json:"entries,omitempty"`
	Options []string            `json:"options,omitempty"`
	Answer  *int                `json:"answer,omitempty"`
}

// Round is the result of starting a game round: either a finished question or
// a background session handle the client polls.
type Round struct {
	Question  *Question `json:"question,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
}

// StartRound dispatches a game round for the named mode.
func (e *Engine) StartRound(ctx context.Context, mode string) (*Round, error) {
	switch mode {
	case "year":
		return e.year(ctx)
	case "cast":
		return e.cast(ctx)
	case "poster":
		return e.poster(ctx)
	case "timeline":
		return e.timeline(ctx)
	case "castmatch":
		return e.castMatch(ctx)
	case "quote":
		return e.quoteRound(ctx)
	case "framed":
		return e.framed(ctx)
	case "frame":
		return e.frame(ctx)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	}
}

// movies lists the library, degrading an unreachable collaborator to an empty
// result rather than an error.
func (e *Engine) movies(ctx context.Context) []library.MediaItem {
	movies, err := e.lib.Movies(ctx)
	if err != nil {
		e.log.Warn().Err(err).Msg("library unavailable")
		return nil
	}
	return movies
}

func (e *Engine) randomMovie(ctx context.Context) (library.MediaItem, error) {
	movies := e.movies(ctx)
	if len(movies) == 0 {
		return library.MediaItem{}, ErrNoMedia
	}
	return movies[rand.Intn(len(movies))], nil
}

// details fetches collaborator metadata for the item, tolerating an absent
// TMDb reference or an unreachable service.
func (e *Engine) details(ctx context.Context, item library.MediaItem) *metadata.Details {
	if e.meta == nil {
		return nil
	}
	id, ok := item.TMDbID()
	if !ok {
		return nil
	}
	details, err := e.meta.MovieDetails(ctx, id)
	if err != nil {
		e.log.Warn().Err(err).Str("title", item.Title).Msg("metadata unavailable")
		return nil
	}
	return details
}

// mediaFile resolves the item's first locatable file.
func (e *Engine) mediaFile(item library.MediaItem) (string, bool) {
	for _, recorded := range item.Files {
		if path, ok := e.resolver.Resolve(recorded); ok {
			return path, true
		}
	}
	return "", false
}

// fileIdentity stats the file and derives the cache key for the given
// processing parameters.
func fileIdentity(path, params string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	return cache.Key(path, info.Size(), info.ModTime(), params), nil
}

func newRNG() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// titleOrder returns up to retryBudget distinct library indices in random
// order. Retry loops iterate it so each attempt lands on a different title.
func titleOrder(n int, rng *rand.Rand) []int {
	order := rng.Perm(n)
	if len(order) > retryBudget {
		order = order[:retryBudget]
	}
	return order
}
