package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"movies-backend/internal/domains/rating/model"
	"movies-backend/internal/domains/rating/repository"
	"movies-backend/internal/shared"
	"movies-backend/internal/shared/outputcache"
	"movies-backend/pkg/cache"
)

type RatingService struct {
	repo   repository.Repository
	movies MovieChecker
	cache  cache.Cache
}

func NewService(repo repository.Repository, movies MovieChecker, cache cache.Cache) ServiceInterface {
	return &RatingService{
		repo:   repo,
		movies: movies,
		cache:  cache,
	}
}

func (s *RatingService) Rate(ctx context.Context, movieID, userID uuid.UUID, value int) (bool, error) {
	rating := model.Rating{UserID: userID, MovieID: movieID, Rating: value}
	if err := rating.Validate(); err != nil {
		return false, err
	}

	exists, err := s.movies.Exists(ctx, movieID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}

	// The movie can be deleted between Exists and Upsert.
	if err := s.repo.Upsert(ctx, rating); err != nil {
		if errors.Is(err, model.ErrMovieNotFound) {
			return false, nil
		}
		return false, err
	}

	outputcache.Evict(ctx, s.cache, shared.CacheTagMovies)
	return true, nil
}

func (s *RatingService) DeleteRating(ctx context.Context, movieID, userID uuid.UUID) (bool, error) {
	deleted, err := s.repo.Delete(ctx, movieID, userID)
	if err != nil {
		return false, err
	}
	if deleted {
		outputcache.Evict(ctx, s.cache, shared.CacheTagMovies)
	}
	return deleted, nil
}

func (s *RatingService) GetUserRatings(ctx context.Context, userID uuid.UUID) ([]model.MovieRating, error) {
	return s.repo.ListForUser(ctx, userID)
}

func (s *RatingService) GetRating(ctx context.Context, movieID uuid.UUID, userID *uuid.UUID) (*float64, *int, error) {
	return s.repo.GetRating(ctx, movieID, userID)
}
