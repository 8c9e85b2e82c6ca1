package model

import (
	"github.com/google/uuid"
)

// ============ REQUEST DTOs ============

// CreateMovieRequest - POST /api/movies
type CreateMovieRequest struct {
	Title         string   `json:"title"`
	YearOfRelease int      `json:"yearOfRelease"`
	Genres        []string `json:"genres"`
}

// ToMovie assigns a fresh id.
func (r CreateMovieRequest) ToMovie() *Movie {
	return &Movie{
		ID:            uuid.New(),
		Title:         r.Title,
		YearOfRelease: r.YearOfRelease,
		Genres:        r.Genres,
	}
}

// UpdateMovieRequest - PUT /api/movies/:id (full replace)
type UpdateMovieRequest struct {
	Title         string   `json:"title"`
	YearOfRelease int      `json:"yearOfRelease"`
	Genres        []string `json:"genres"`
}

func (r UpdateMovieRequest) ToMovie(id uuid.UUID) *Movie {
	return &Movie{
		ID:            id,
		Title:         r.Title,
		YearOfRelease: r.YearOfRelease,
		Genres:        r.Genres,
	}
}

// ============ RESPONSE DTOs ============

type MovieResponse struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	YearOfRelease int       `json:"yearOfRelease"`
	Genres        []string  `json:"genres"`
	Rating        *float64  `json:"rating"`
	UserRating    *int      `json:"userRating"`
}

// PageMeta describes one page of a list result.
type PageMeta struct {
	Page        int  `json:"page"`
	PageSize    int  `json:"pageSize"`
	Total       int  `json:"total"`
	HasNextPage bool `json:"hasNextPage"`
}

// NewPageMeta reports a next page when rows remain after this one.
// Written as a subtraction so a saturated offset cannot overflow.
func NewPageMeta(opts ListOptions, total int) *PageMeta {
	return &PageMeta{
		Page:        opts.Page,
		PageSize:    opts.PageSize,
		Total:       total,
		HasNextPage: total-opts.PageSize > opts.Offset(),
	}
}

// MoviesResponse is the paged list envelope.
type MoviesResponse struct {
	Items []MovieResponse `json:"items"`
	PageMeta
}

func (m *Movie) ToResponse() MovieResponse {
	genres := m.Genres
	if genres == nil {
		genres = []string{}
	}
	return MovieResponse{
		ID:            m.ID,
		Title:         m.Title,
		Slug:          m.Slug(),
		YearOfRelease: m.YearOfRelease,
		Genres:        genres,
		Rating:        m.Rating,
		UserRating:    m.UserRating,
	}
}

func NewMoviesResponse(movies []Movie, meta *PageMeta) MoviesResponse {
	items := make([]MovieResponse, 0, len(movies))
	for i := range movies {
		items = append(items, movies[i].ToResponse())
	}
	return MoviesResponse{Items: items, PageMeta: *meta}
}
