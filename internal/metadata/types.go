package metadata

import "context"

// Details is the external metadata record for one movie. Fields absent from
// the collaborator response stay at their zero values; consumers must not
// rely on any of them being present.
type Details struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	PosterPath  string   `json:"poster_path"`
	Tagline     string   `json:"tagline"`
	Overview    string   `json:"overview"`
	VoteAverage float64  `json:"vote_average"`
	ReleaseDate string   `json:"release_date"`
	Genres      []Genre  `json:"genres"`
	Credits     *Credits `json:"credits,omitempty"`
}

type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

type CastMember struct {
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
}

type CrewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

// Client is the metadata collaborator surface the assemblers consume.
type Client interface {
	MovieDetails(ctx context.Context, id int64) (*Details, error)
	MovieCredits(ctx context.Context, id int64) (*Credits, error)
	ImageURL(path, size string) string
}
