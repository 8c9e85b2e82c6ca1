package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movies-backend/internal/domains/movie/model"
	"movies-backend/internal/domains/movie/repository"
	ratingModel "movies-backend/internal/domains/rating/model"
	ratingRepo "movies-backend/internal/domains/rating/repository"
	"movies-backend/internal/infrastructure/memdb"
	"movies-backend/internal/shared"
	"movies-backend/internal/shared/apperror"
	"movies-backend/pkg/cache"
)

// spyRepository counts storage calls and fails every one of them.
type spyRepository struct {
	calls int
	err   error
}

func (s *spyRepository) List(context.Context, model.ListOptions) ([]model.Movie, error) {
	s.calls++
	return nil, s.err
}

func (s *spyRepository) Count(context.Context, model.MovieFilter) (int, error) {
	s.calls++
	return 0, s.err
}

func (s *spyRepository) GetByID(context.Context, uuid.UUID, *uuid.UUID) (*model.Movie, error) {
	s.calls++
	return nil, s.err
}

func (s *spyRepository) GetBySlug(context.Context, string, *uuid.UUID) (*model.Movie, error) {
	s.calls++
	return nil, s.err
}

func (s *spyRepository) Create(context.Context, *model.Movie) error {
	s.calls++
	return s.err
}

func (s *spyRepository) Update(context.Context, *model.Movie) error {
	s.calls++
	return s.err
}

func (s *spyRepository) Delete(context.Context, uuid.UUID) (bool, error) {
	s.calls++
	return false, s.err
}

func (s *spyRepository) Exists(context.Context, uuid.UUID) (bool, error) {
	s.calls++
	return false, s.err
}

type fixture struct {
	svc     ServiceInterface
	ratings ratingRepo.Repository
	cache   *cache.Memory
}

func newFixture() fixture {
	store := memdb.NewStore()
	ratings := ratingRepo.NewMemoryRepository(store)
	c := cache.NewMemory()
	return fixture{
		svc:     NewService(repository.NewMemoryRepository(store), ratings, c),
		ratings: ratings,
		cache:   c,
	}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestList_DalmationsScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	movie := &model.Movie{ID: uuid.New(), Title: "Dalmations 101!", YearOfRelease: 2024, Genres: []string{"Animation", "Family"}}
	require.NoError(t, f.svc.Create(ctx, movie))

	movies, meta, err := f.svc.List(ctx, model.ListMoviesRequest{
		Title:    strPtr("dalma"),
		Year:     intPtr(2024),
		SortBy:   strPtr("title"),
		Page:     1,
		PageSize: 10,
	})
	require.NoError(t, err)
	require.Len(t, movies, 1)

	got := movies[0]
	assert.Equal(t, "dalmations-101-2024", got.Slug())
	assert.ElementsMatch(t, []string{"Animation", "Family"}, got.Genres)
	assert.Nil(t, got.Rating)
	assert.Nil(t, got.UserRating)

	assert.Equal(t, 1, meta.Total)
	assert.Equal(t, 1, meta.Page)
	assert.Equal(t, 10, meta.PageSize)
	assert.False(t, meta.HasNextPage)
}

func TestList_ValidationHappensBeforeStorage(t *testing.T) {
	spy := &spyRepository{err: errors.New("storage must not be reached")}
	svc := NewService(spy, nil, nil)

	_, _, err := svc.List(context.Background(), model.ListMoviesRequest{
		SortBy:   strPtr("director"),
		Page:     1,
		PageSize: 10,
	})

	var verr *apperror.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "sortBy")
	assert.Equal(t, 0, spy.calls)
}

func TestList_StorageFailureIsNotAnEmptyResult(t *testing.T) {
	spy := &spyRepository{err: apperror.Storage("movie.list", errors.New("connection refused"))}
	svc := NewService(spy, nil, nil)

	movies, meta, err := svc.List(context.Background(), model.ListMoviesRequest{Page: 1, PageSize: 10})
	assert.True(t, apperror.IsStorage(err))
	assert.Nil(t, movies)
	assert.Nil(t, meta)
}

func TestGet_ByIDOrSlug(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	movie := &model.Movie{ID: uuid.New(), Title: "Heat", YearOfRelease: 1995, Genres: []string{"Crime"}}
	require.NoError(t, f.svc.Create(ctx, movie))

	byID, err := f.svc.Get(ctx, movie.ID.String(), nil)
	require.NoError(t, err)
	assert.Equal(t, movie.ID, byID.ID)

	bySlug, err := f.svc.Get(ctx, "heat-1995", nil)
	require.NoError(t, err)
	assert.Equal(t, movie.ID, bySlug.ID)

	_, err = f.svc.Get(ctx, "cold-1995", nil)
	assert.ErrorIs(t, err, model.ErrMovieNotFound)
}

func TestCreate_DuplicateSlugIsValidationFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	require.NoError(t, f.svc.Create(ctx, &model.Movie{ID: uuid.New(), Title: "Heat", YearOfRelease: 1995, Genres: []string{"Crime"}}))

	err := f.svc.Create(ctx, &model.Movie{ID: uuid.New(), Title: "HEAT", YearOfRelease: 1995, Genres: []string{"Drama"}})

	var verr *apperror.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "This movie already exists in the system", verr.Fields["slug"])
}

func TestCreate_InvalidMovieNeverReachesStorage(t *testing.T) {
	spy := &spyRepository{}
	svc := NewService(spy, nil, nil)

	err := svc.Create(context.Background(), &model.Movie{ID: uuid.New(), Title: "", YearOfRelease: 2000})
	assert.True(t, apperror.IsValidation(err))
	assert.Equal(t, 0, spy.calls)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	userID := uuid.New()

	movie := &model.Movie{ID: uuid.New(), Title: "Dalmations 101!", YearOfRelease: 2024, Genres: []string{"Animation"}}
	require.NoError(t, f.svc.Create(ctx, movie))
	require.NoError(t, f.ratings.Upsert(ctx, ratingModel.Rating{UserID: userID, MovieID: movie.ID, Rating: 4}))

	updated, err := f.svc.Update(ctx, &model.Movie{
		ID: movie.ID, Title: "Dalmations 102", YearOfRelease: 2024, Genres: []string{"Comedy", "Family"},
	}, &userID)
	require.NoError(t, err)
	assert.Equal(t, "dalmations-102-2024", updated.Slug())
	require.NotNil(t, updated.Rating)
	assert.InDelta(t, 4.0, *updated.Rating, 1e-9)
	require.NotNil(t, updated.UserRating)
	assert.Equal(t, 4, *updated.UserRating)

	stored, err := f.svc.Get(ctx, "dalmations-102-2024", nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Comedy", "Family"}, stored.Genres)
}

func TestUpdate_MissingMovieIsNotCreated(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	id := uuid.New()
	_, err := f.svc.Update(ctx, &model.Movie{ID: id, Title: "Ghost", YearOfRelease: 2000, Genres: []string{"Horror"}}, nil)
	assert.ErrorIs(t, err, model.ErrMovieNotFound)

	_, err = f.svc.Get(ctx, id.String(), nil)
	assert.ErrorIs(t, err, model.ErrMovieNotFound)
}

func TestUpdate_SlugTakenByAnotherMovie(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	require.NoError(t, f.svc.Create(ctx, &model.Movie{ID: uuid.New(), Title: "Heat", YearOfRelease: 1995, Genres: []string{"Crime"}}))
	other := &model.Movie{ID: uuid.New(), Title: "Cold", YearOfRelease: 1995, Genres: []string{"Crime"}}
	require.NoError(t, f.svc.Create(ctx, other))

	_, err := f.svc.Update(ctx, &model.Movie{ID: other.ID, Title: "Heat", YearOfRelease: 1995, Genres: []string{"Crime"}}, nil)
	assert.True(t, apperror.IsValidation(err))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	movie := &model.Movie{ID: uuid.New(), Title: "Heat", YearOfRelease: 1995, Genres: []string{"Crime"}}
	require.NoError(t, f.svc.Create(ctx, movie))

	deleted, err := f.svc.Delete(ctx, movie.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = f.svc.Delete(ctx, movie.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestWritesEvictCachedReads(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	require.NoError(t, f.cache.Set(ctx, shared.CacheTagMovies+":cached-list", "stale", 0))
	require.NoError(t, f.cache.Set(ctx, "other:entry", "kept", 0))

	require.NoError(t, f.svc.Create(ctx, &model.Movie{ID: uuid.New(), Title: "Heat", YearOfRelease: 1995, Genres: []string{"Crime"}}))

	var v string
	found, err := f.cache.Get(ctx, shared.CacheTagMovies+":cached-list", &v)
	require.NoError(t, err)
	assert.False(t, found)

	found, err = f.cache.Get(ctx, "other:entry", &v)
	require.NoError(t, err)
	assert.True(t, found)
}
