package repository

import (
	"context"

	"github.com/google/uuid"

	"movies-backend/internal/domains/rating/model"
)

type Repository interface {
	// Upsert inserts the rating or replaces the user's previous value for that movie.
	Upsert(ctx context.Context, rating model.Rating) error
	Delete(ctx context.Context, movieID, userID uuid.UUID) (bool, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]model.MovieRating, error)
	// GetRating returns the movie's rounded mean and, when userID is set, that user's own value.
	GetRating(ctx context.Context, movieID uuid.UUID, userID *uuid.UUID) (*float64, *int, error)
}
