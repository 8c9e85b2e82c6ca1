package service

import (
	"context"

	"github.com/google/uuid"

	"movies-backend/internal/domains/rating/model"
)

type ServiceInterface interface {
	// Rate reports false when the movie does not exist.
	Rate(ctx context.Context, movieID, userID uuid.UUID, value int) (bool, error)
	DeleteRating(ctx context.Context, movieID, userID uuid.UUID) (bool, error)
	GetUserRatings(ctx context.Context, userID uuid.UUID) ([]model.MovieRating, error)
	GetRating(ctx context.Context, movieID uuid.UUID, userID *uuid.UUID) (*float64, *int, error)
}

// MovieChecker is the slice of the movie repository the rating path needs.
type MovieChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}
