package repository

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"movies-backend/internal/domains/rating/model"
	"movies-backend/internal/infrastructure/memdb"
	"movies-backend/internal/metrics"
	"movies-backend/internal/shared/utils"
)

type memoryRepository struct {
	store *memdb.Store
}

func NewMemoryRepository(store *memdb.Store) Repository {
	return &memoryRepository{store: store}
}

func (r *memoryRepository) Upsert(ctx context.Context, rating model.Rating) error {
	start := time.Now()

	err := r.store.Write(ctx, func(t *memdb.Tables) error {
		if t.MovieIndex(rating.MovieID) < 0 {
			return model.ErrMovieNotFound
		}

		if i := t.RatingIndex(rating.UserID, rating.MovieID); i >= 0 {
			t.Ratings[i].Rating = rating.Rating
			return nil
		}
		t.Ratings = append(t.Ratings, memdb.RatingRow{
			UserID:  rating.UserID,
			MovieID: rating.MovieID,
			Rating:  rating.Rating,
		})
		return nil
	})
	return finishMemory("rating.upsert", start, err)
}

func (r *memoryRepository) Delete(ctx context.Context, movieID, userID uuid.UUID) (bool, error) {
	start := time.Now()

	var deleted bool
	err := r.store.Write(ctx, func(t *memdb.Tables) error {
		i := t.RatingIndex(userID, movieID)
		if i < 0 {
			return nil
		}
		t.Ratings = slices.Delete(t.Ratings, i, i+1)
		deleted = true
		return nil
	})
	if err = finishMemory("rating.delete", start, err); err != nil {
		return false, err
	}
	return deleted, nil
}

func (r *memoryRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.MovieRating, error) {
	start := time.Now()

	out := []model.MovieRating{}
	err := r.store.Read(ctx, func(t *memdb.Tables) error {
		for _, rating := range t.Ratings {
			if rating.UserID != userID {
				continue
			}
			i := t.MovieIndex(rating.MovieID)
			if i < 0 {
				continue
			}
			movie := t.Movies[i]
			out = append(out, model.MovieRating{
				MovieID: movie.ID,
				Slug:    utils.GenerateSlug(movie.Title, movie.YearOfRelease),
				Rating:  rating.Rating,
			})
		}
		return nil
	})
	if err = finishMemory("rating.list_for_user", start, err); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *memoryRepository) GetRating(ctx context.Context, movieID uuid.UUID, userID *uuid.UUID) (*float64, *int, error) {
	start := time.Now()

	var (
		avg        *float64
		userRating *int
	)
	err := r.store.Read(ctx, func(t *memdb.Tables) error {
		avg = t.AverageRating(movieID)
		userRating = t.UserRating(movieID, userID)
		return nil
	})
	if err = finishMemory("rating.get", start, err); err != nil {
		return nil, nil, err
	}
	return avg, userRating, nil
}

func finishMemory(op string, start time.Time, err error) error {
	err = classify(op, err)
	metrics.RecordQuery(op, start, err)
	return err
}
