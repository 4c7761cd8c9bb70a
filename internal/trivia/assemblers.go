package trivia

import (
	"context"
	"errors"
	"math/rand"

	"github.com/reelquiz/reelquiz/internal/library"
	"github.com/reelquiz/reelquiz/internal/metadata"
)

// year assembles a guess-the-year question.
func (e *Engine) year(ctx context.Context) (*Round, error) {
	movie, err := e.randomMovie(ctx)
	if err != nil {
		return nil, err
	}
	details := e.details(ctx, movie)

	q := &Question{
		Mode:    "year",
		Title:   movie.Title,
		Year:    movie.Year,
		Summary: movie.Summary,
	}
	if details != nil {
		q.Poster = e.meta.ImageURL(details.PosterPath, "")
		q.Tagline = details.Tagline
	}
	return &Round{Question: q}, nil
}

// cast assembles a cast-reveal question: the top few credited cast members,
// falling back to the library's actor tags when metadata is absent.
func (e *Engine) cast(ctx context.Context) (*Round, error) {
	movie, err := e.randomMovie(ctx)
	if err != nil {
		return nil, err
	}
	details := e.details(ctx, movie)

	q := &Question{
		Mode:  "cast",
		Title: movie.Title,
		Cast:  e.topCast(movie, details),
	}
	if details != nil {
		q.Poster = e.meta.ImageURL(details.PosterPath, "")
		q.Tagline = details.Tagline
	}
	return &Round{Question: q}, nil
}

const castRevealCount = 7

func (e *Engine) topCast(movie library.MediaItem, details *metadata.Details) []CastEntry {
	if details != nil && details.Credits != nil && len(details.Credits.Cast) > 0 {
		members := details.Credits.Cast
		if len(members) > castRevealCount {
			members = members[:castRevealCount]
		}
		entries := make([]CastEntry, 0, len(members))
		for _, member := range members {
			entries = append(entries, CastEntry{
				Name:      member.Name,
				Character: member.Character,
				Profile:   e.meta.ImageURL(member.ProfilePath, "w185"),
			})
		}
		return entries
	}

	actors := movie.Actors
	if len(actors) > castRevealCount {
		actors = actors[:castRevealCount]
	}
	entries := make([]CastEntry, 0, len(actors))
	for _, name := range actors {
		entries = append(entries, CastEntry{Name: name})
	}
	return entries
}

// poster assembles a poster-reveal question. The library thumbnail is
// preferred; collaborator poster art is the fallback.
func (e *Engine) poster(ctx context.Context) (*Round, error) {
	movie, err := e.randomMovie(ctx)
	if err != nil {
		return nil, err
	}
	details := e.details(ctx, movie)

	q := &Question{
		Mode:    "poster",
		Title:   movie.Title,
		Poster:  movie.Thumb,
		Summary: movie.Summary,
	}
	if details != nil {
		if q.Poster == "" {
			q.Poster = e.meta.ImageURL(details.PosterPath, "")
		}
		q.Tagline = details.Tagline
	}
	return &Round{Question: q}, nil
}

const timelineEntryCount = 4

// timeline assembles an order-by-release-year question from distinct titles
// with known years.
func (e *Engine) timeline(ctx context.Context) (*Round, error) {
	movies := e.movies(ctx)
	if len(movies) == 0 {
		return nil, ErrNoMedia
	}

	var dated []library.MediaItem
	for _, movie := range movies {
		if movie.Year > 0 {
			dated = append(dated, movie)
		}
	}
	if len(dated) < 2 {
		return nil, ErrInsufficientMaterial
	}

	rng := newRNG()
	rng.Shuffle(len(dated), func(i, j int) { dated[i], dated[j] = dated[j], dated[i] })
	count := timelineEntryCount
	if len(dated) < count {
		count = len(dated)
	}

	entries := make([]TimelineEntry, 0, count)
	for _, movie := range dated[:count] {
		entry := TimelineEntry{Title: movie.Title, Year: movie.Year, Poster: movie.Thumb}
		if entry.Poster == "" {
			if details := e.details(ctx, movie); details != nil {
				entry.Poster = e.meta.ImageURL(details.PosterPath, "w185")
			}
		}
		entries = append(entries, entry)
	}

	return &Round{Question: &Question{Mode: "timeline", Title: "Order by release year", Entries: entries}}, nil
}

// castMatch assembles a multiple-choice question: which of these actors
// appears in the subject title? Distractors come from other titles; the
// correct index is computed after shuffling.
func (e *Engine) castMatch(ctx context.Context) (*Round, error) {
	movies := e.movies(ctx)
	if len(movies) < 2 {
		return nil, ErrNoMedia
	}

	rng := newRNG()
	for _, i := range titleOrder(len(movies), rng) {
		subject := movies[i]
		details := e.details(ctx, subject)
		subjectCast := actorNames(subject, details)
		if len(subjectCast) == 0 {
			continue
		}
		correct := subjectCast[rng.Intn(len(subjectCast))]

		distractors := e.collectDistractors(ctx, movies, subject, subjectCast, rng)
		if len(distractors) < 3 {
			continue
		}

		options := append([]string{correct}, distractors[:3]...)
		rng.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })
		answer := indexOf(options, correct)

		q := &Question{
			Mode:    "castmatch",
			Title:   subject.Title,
			Options: options,
			Answer:  &answer,
		}
		if details != nil {
			q.Poster = e.meta.ImageURL(details.PosterPath, "")
			q.Tagline = details.Tagline
		}
		return &Round{Question: q}, nil
	}
	return nil, ErrInsufficientMaterial
}

// collectDistractors gathers actor names from other titles, excluding anyone
// who also appears in the subject's cast.
func (e *Engine) collectDistractors(ctx context.Context, movies []library.MediaItem, subject library.MediaItem, subjectCast []string, rng *rand.Rand) []string {
	exclude := make(map[string]bool, len(subjectCast))
	for _, name := range subjectCast {
		exclude[name] = true
	}

	order := rng.Perm(len(movies))
	var distractors []string
	for _, i := range order {
		other := movies[i]
		if other.RatingKey == subject.RatingKey {
			continue
		}
		for _, name := range actorNames(other, e.details(ctx, other)) {
			if exclude[name] {
				continue
			}
			exclude[name] = true
			distractors = append(distractors, name)
			break // one distractor per title keeps options varied
		}
		if len(distractors) >= 3 {
			break
		}
	}
	return distractors
}

func actorNames(movie library.MediaItem, details *metadata.Details) []string {
	if details != nil && details.Credits != nil && len(details.Credits.Cast) > 0 {
		names := make([]string, 0, len(details.Credits.Cast))
		for _, member := range details.Credits.Cast {
			names = append(names, member.Name)
		}
		return names
	}
	return movie.Actors
}

func indexOf(options []string, value string) int {
	for i, option := range options {
		if option == value {
			return i
		}
	}
	return 0
}

// quoteRound assembles a guess-the-quote question. Any given title's subtitle
// track may not yield enough coherent blocks, so selection retries across
// distinct random titles within the budget.
func (e *Engine) quoteRound(ctx context.Context) (*Round, error) {
	movies := e.movies(ctx)
	if len(movies) == 0 {
		return nil, ErrNoMedia
	}

	rng := newRNG()
	var lastErr error
	for _, i := range titleOrder(len(movies), rng) {
		movie := movies[i]
		path, ok := e.mediaFile(movie)
		if !ok {
			continue
		}

		blocks, err := e.extractQuotes(path, rng)
		if err != nil {
			lastErr = err
			continue
		}

		quotes := make([][]string, 0, len(blocks))
		for _, block := range blocks {
			lines := make([]string, 0, len(block))
			for _, line := range block {
				lines = append(lines, line.Text)
			}
			quotes = append(quotes, lines)
		}

		q := &Question{
			Mode:   "quote",
			Title:  movie.Title,
			Quotes: quotes,
		}
		if details := e.details(ctx, movie); details != nil {
			q.Poster = e.meta.ImageURL(details.PosterPath, "")
			q.Tagline = details.Tagline
		}
		return &Round{Question: q}, nil
	}

	if lastErr != nil {
		return nil, errors.Join(ErrInsufficientMaterial, lastErr)
	}
	return nil, ErrInsufficientMaterial
}
