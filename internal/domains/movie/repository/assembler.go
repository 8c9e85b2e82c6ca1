package repository

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"movies-backend/internal/domains/movie/model"
)

// movieRow is one flat result row of the movie select, in column order.
type movieRow struct {
	ID            uuid.UUID
	Title         string
	YearOfRelease int
	Genres        []string            // array_agg, NULL without genres
	Rating        decimal.NullDecimal // NULL without ratings
	UserRating    *int                // NULL without user or user rating
}

// toMovie assembles the domain entity from a flat row.
func (r movieRow) toMovie() model.Movie {
	return model.Movie{
		ID:            r.ID,
		Title:         r.Title,
		YearOfRelease: r.YearOfRelease,
		Genres:        genresOrEmpty(r.Genres),
		Rating:        ratingValue(r.Rating),
		UserRating:    r.UserRating,
	}
}

// genresOrEmpty turns a NULL aggregate into an empty list. Labels are kept whole,
// commas included.
func genresOrEmpty(genres []string) []string {
	if genres == nil {
		return []string{}
	}
	return genres
}

func ratingValue(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	f := d.Decimal.InexactFloat64()
	return &f
}
