package model

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"movies-backend/internal/shared/apperror"
)

const (
	MinRating = 1
	MaxRating = 5
)

var (
	ErrRatingNotFound = errors.New("rating not found")
	// ErrMovieNotFound - the rated movie is gone, e.g. deleted between check and write
	ErrMovieNotFound = errors.New("movie not found")
)

// Rating - one user's score for one movie, unique per (user, movie)
type Rating struct {
	UserID  uuid.UUID `json:"userId"`
	MovieID uuid.UUID `json:"movieId"`
	Rating  int       `json:"rating"`
}

// MovieRating - entry of a user's rating list
type MovieRating struct {
	MovieID uuid.UUID `json:"movieId"`
	Slug    string    `json:"slug"`
	Rating  int       `json:"rating"`
}

// RateMovieRequest - PUT /api/movies/:id/ratings
type RateMovieRequest struct {
	Rating int `json:"rating"`
}

func (r *Rating) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Rating,
			validation.By(func(interface{}) error {
				if r.Rating < MinRating || r.Rating > MaxRating {
					return validation.NewError("validation_rating_range", "rating must be between 1 and 5")
				}
				return nil
			}),
		),
	)
	return apperror.FromValidation(err)
}
