package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	movieModel "movies-backend/internal/domains/movie/model"
	movieRepo "movies-backend/internal/domains/movie/repository"
	"movies-backend/internal/domains/rating/model"
	"movies-backend/internal/domains/rating/repository"
	"movies-backend/internal/infrastructure/memdb"
	"movies-backend/internal/shared/apperror"
	"movies-backend/pkg/cache"
)

type fixture struct {
	svc    ServiceInterface
	movies movieRepo.Repository
	cache  *cache.Memory
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memdb.NewStore()
	movies := movieRepo.NewMemoryRepository(store)
	c := cache.NewMemory()
	return fixture{
		svc:    NewService(repository.NewMemoryRepository(store), movies, c),
		movies: movies,
		cache:  c,
	}
}

func (f fixture) movie(t *testing.T, title string, year int) uuid.UUID {
	t.Helper()
	m := &movieModel.Movie{ID: uuid.New(), Title: title, YearOfRelease: year, Genres: []string{"Drama"}}
	require.NoError(t, f.movies.Create(context.Background(), m))
	return m.ID
}

func TestRate_Upserts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	movieID := f.movie(t, "Heat", 1995)
	userID := uuid.New()

	ok, err := f.svc.Rate(ctx, movieID, userID, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.Rate(ctx, movieID, userID, 5)
	require.NoError(t, err)
	assert.True(t, ok)

	avg, mine, err := f.svc.GetRating(ctx, movieID, &userID)
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.InDelta(t, 5.0, *avg, 1e-9)
	require.NotNil(t, mine)
	assert.Equal(t, 5, *mine)

	ratings, err := f.svc.GetUserRatings(ctx, userID)
	require.NoError(t, err)
	require.Len(t, ratings, 1)
	assert.Equal(t, model.MovieRating{MovieID: movieID, Slug: "heat-1995", Rating: 5}, ratings[0])
}

func TestRate_MissingMovie(t *testing.T) {
	f := newFixture(t)

	ok, err := f.svc.Rate(context.Background(), uuid.New(), uuid.New(), 4)
	require.NoError(t, err)
	assert.False(t, ok)
}

// staleChecker still reports a movie that has already been deleted.
type staleChecker struct{}

func (staleChecker) Exists(context.Context, uuid.UUID) (bool, error) { return true, nil }

func TestRate_MovieDeletedAfterCheck(t *testing.T) {
	store := memdb.NewStore()
	c := cache.NewMemory()
	svc := NewService(repository.NewMemoryRepository(store), staleChecker{}, c)
	require.NoError(t, c.Set(context.Background(), "movies:list", 1, 0))

	ok, err := svc.Rate(context.Background(), uuid.New(), uuid.New(), 4)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())
}

func TestRate_OutOfRange(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	movieID := f.movie(t, "Heat", 1995)

	for _, value := range []int{0, 6, -1} {
		_, err := f.svc.Rate(ctx, movieID, uuid.New(), value)

		var verr *apperror.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "rating")
	}
}

func TestGetRating_Unrated(t *testing.T) {
	f := newFixture(t)
	movieID := f.movie(t, "Heat", 1995)
	userID := uuid.New()

	avg, mine, err := f.svc.GetRating(context.Background(), movieID, &userID)
	require.NoError(t, err)
	assert.Nil(t, avg)
	assert.Nil(t, mine)
}

func TestDeleteRating(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	movieID := f.movie(t, "Heat", 1995)
	userID := uuid.New()

	_, err := f.svc.Rate(ctx, movieID, userID, 2)
	require.NoError(t, err)

	deleted, err := f.svc.DeleteRating(ctx, movieID, userID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = f.svc.DeleteRating(ctx, movieID, userID)
	require.NoError(t, err)
	assert.False(t, deleted)

	ratings, err := f.svc.GetUserRatings(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, ratings)
}

func TestRate_EvictsMovieCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	movieID := f.movie(t, "Heat", 1995)

	require.NoError(t, f.cache.Set(ctx, "movies:list", 1, 0))

	_, err := f.svc.Rate(ctx, movieID, uuid.New(), 4)
	require.NoError(t, err)
	assert.Equal(t, 0, f.cache.Len())
}
