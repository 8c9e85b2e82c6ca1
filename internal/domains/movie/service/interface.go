package service

import (
	"context"

	"github.com/google/uuid"

	"movies-backend/internal/domains/movie/model"
)

type ServiceInterface interface {
	List(ctx context.Context, req model.ListMoviesRequest) ([]model.Movie, *model.PageMeta, error)
	Get(ctx context.Context, idOrSlug string, userID *uuid.UUID) (*model.Movie, error)
	Create(ctx context.Context, movie *model.Movie) error
	Update(ctx context.Context, movie *model.Movie, userID *uuid.UUID) (*model.Movie, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// RatingReader supplies the fresh rating figures attached to an updated movie.
type RatingReader interface {
	GetRating(ctx context.Context, movieID uuid.UUID, userID *uuid.UUID) (*float64, *int, error)
}
