package repository

import (
	"context"

	"github.com/google/uuid"

	"movies-backend/internal/domains/movie/model"
)

// Repository - movie data access, implemented over PostgreSQL and over the in-memory store.
type Repository interface {
	// List returns one page of movies matching opts, sorted when opts asks for it.
	List(ctx context.Context, opts model.ListOptions) ([]model.Movie, error)
	// Count returns the number of movies matching filter, ignoring paging and sorting.
	Count(ctx context.Context, filter model.MovieFilter) (int, error)

	GetByID(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (*model.Movie, error)
	GetBySlug(ctx context.Context, slug string, userID *uuid.UUID) (*model.Movie, error)

	Create(ctx context.Context, movie *model.Movie) error
	Update(ctx context.Context, movie *model.Movie) error
	// Delete reports false when no movie with id existed.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}
