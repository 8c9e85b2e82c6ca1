package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"movies-backend/internal/domains/movie/model"
	"movies-backend/internal/domains/movie/repository"
	"movies-backend/internal/shared"
	"movies-backend/internal/shared/apperror"
	"movies-backend/internal/shared/outputcache"
	"movies-backend/pkg/cache"
)

const msgSlugTaken = "This movie already exists in the system"

type MovieService struct {
	repo    repository.Repository
	ratings RatingReader
	cache   cache.Cache
}

// NewService - Constructor with DI. cache may be nil.
func NewService(repo repository.Repository, ratings RatingReader, cache cache.Cache) ServiceInterface {
	return &MovieService{
		repo:    repo,
		ratings: ratings,
		cache:   cache,
	}
}

// List normalizes the request first; nothing reaches storage on a validation failure.
func (s *MovieService) List(ctx context.Context, req model.ListMoviesRequest) ([]model.Movie, *model.PageMeta, error) {
	opts, err := req.Options()
	if err != nil {
		return nil, nil, err
	}

	movies, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, nil, err
	}

	total, err := s.repo.Count(ctx, opts.MovieFilter)
	if err != nil {
		return nil, nil, err
	}

	return movies, model.NewPageMeta(opts, total), nil
}

// Get resolves idOrSlug as an id when it parses as one, as a slug otherwise.
func (s *MovieService) Get(ctx context.Context, idOrSlug string, userID *uuid.UUID) (*model.Movie, error) {
	if id, err := uuid.Parse(idOrSlug); err == nil {
		return s.repo.GetByID(ctx, id, userID)
	}
	return s.repo.GetBySlug(ctx, idOrSlug, userID)
}

func (s *MovieService) Create(ctx context.Context, movie *model.Movie) error {
	if err := s.validate(ctx, movie); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, movie); err != nil {
		return slugConflict(err)
	}

	s.invalidate(ctx)
	return nil
}

// Update replaces title, year and genres. It never creates a missing movie.
func (s *MovieService) Update(ctx context.Context, movie *model.Movie, userID *uuid.UUID) (*model.Movie, error) {
	if err := s.validate(ctx, movie); err != nil {
		return nil, err
	}

	exists, err := s.repo.Exists(ctx, movie.ID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrMovieNotFound
	}

	if err := s.repo.Update(ctx, movie); err != nil {
		return nil, slugConflict(err)
	}
	s.invalidate(ctx)

	rating, userRating, err := s.ratings.GetRating(ctx, movie.ID, userID)
	if err != nil {
		return nil, err
	}
	movie.Rating = rating
	movie.UserRating = userRating

	return movie, nil
}

func (s *MovieService) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.invalidate(ctx)
	}
	return deleted, nil
}

// validate runs the field rules, then checks the derived slug against other movies.
func (s *MovieService) validate(ctx context.Context, movie *model.Movie) error {
	if err := movie.Validate(); err != nil {
		return err
	}

	existing, err := s.repo.GetBySlug(ctx, movie.Slug(), nil)
	switch {
	case errors.Is(err, model.ErrMovieNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != movie.ID:
		return apperror.NewValidationError("slug", msgSlugTaken)
	}
	return nil
}

func (s *MovieService) invalidate(ctx context.Context) {
	outputcache.Evict(ctx, s.cache, shared.CacheTagMovies)
}

// slugConflict turns a lost race on the unique slug index into the same validation failure.
func slugConflict(err error) error {
	if errors.Is(err, model.ErrSlugAlreadyExists) {
		return apperror.NewValidationError("slug", msgSlugTaken)
	}
	return err
}
