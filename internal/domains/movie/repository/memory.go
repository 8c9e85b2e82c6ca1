package repository

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"movies-backend/internal/domains/movie/model"
	"movies-backend/internal/infrastructure/memdb"
	"movies-backend/internal/metrics"
	"movies-backend/internal/shared/apperror"
)

var errDuplicateKey = errors.New(`duplicate key value violates unique constraint "movies_pkey"`)

// memoryRepository serves the same contract as postgresRepository from memdb tables.
// Unsorted lists come back in insertion order.
type memoryRepository struct {
	store *memdb.Store
}

func NewMemoryRepository(store *memdb.Store) Repository {
	return &memoryRepository{store: store}
}

func (r *memoryRepository) List(ctx context.Context, opts model.ListOptions) ([]model.Movie, error) {
	start := time.Now()

	var movies []model.Movie
	err := r.store.Read(ctx, func(t *memdb.Tables) error {
		rows := filterRows(t.Movies, opts.MovieFilter)
		if opts.Sorted() {
			sortRows(rows, opts.SortField, opts.SortOrder)
		}

		offset := min(opts.Offset(), len(rows))
		end := min(offset+opts.PageSize, len(rows))

		movies = make([]model.Movie, 0, end-offset)
		for _, row := range rows[offset:end] {
			movies = append(movies, assemble(t, row, opts.UserID))
		}
		return nil
	})
	return movies, finishMemory("movie.list", start, err)
}

func (r *memoryRepository) Count(ctx context.Context, filter model.MovieFilter) (int, error) {
	start := time.Now()

	var total int
	err := r.store.Read(ctx, func(t *memdb.Tables) error {
		total = len(filterRows(t.Movies, filter))
		return nil
	})
	return total, finishMemory("movie.count", start, err)
}

func (r *memoryRepository) GetByID(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (*model.Movie, error) {
	start := time.Now()

	var movie *model.Movie
	err := r.store.Read(ctx, func(t *memdb.Tables) error {
		i := t.MovieIndex(id)
		if i < 0 {
			return model.ErrMovieNotFound
		}
		m := assemble(t, t.Movies[i], userID)
		movie = &m
		return nil
	})
	return movie, finishMemory("movie.get_by_id", start, err)
}

func (r *memoryRepository) GetBySlug(ctx context.Context, slug string, userID *uuid.UUID) (*model.Movie, error) {
	start := time.Now()

	var movie *model.Movie
	err := r.store.Read(ctx, func(t *memdb.Tables) error {
		row, ok := t.MovieBySlug(slug)
		if !ok {
			return model.ErrMovieNotFound
		}
		m := assemble(t, row, userID)
		movie = &m
		return nil
	})
	return movie, finishMemory("movie.get_by_slug", start, err)
}

func (r *memoryRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	start := time.Now()

	var exists bool
	err := r.store.Read(ctx, func(t *memdb.Tables) error {
		exists = t.MovieIndex(id) >= 0
		return nil
	})
	return exists, finishMemory("movie.exists", start, err)
}

func (r *memoryRepository) Create(ctx context.Context, movie *model.Movie) error {
	start := time.Now()

	err := r.store.Write(ctx, func(t *memdb.Tables) error {
		slug := movie.Slug()
		if _, taken := t.MovieBySlug(slug); taken {
			return model.ErrSlugAlreadyExists
		}
		if t.MovieIndex(movie.ID) >= 0 {
			return apperror.Storage("movie.create", errDuplicateKey)
		}

		t.Movies = append(t.Movies, memdb.MovieRow{
			ID:            movie.ID,
			Slug:          slug,
			Title:         movie.Title,
			YearOfRelease: movie.YearOfRelease,
		})
		appendGenres(t, movie.ID, movie.Genres)
		return nil
	})
	return finishMemory("movie.create", start, err)
}

func (r *memoryRepository) Update(ctx context.Context, movie *model.Movie) error {
	start := time.Now()

	err := r.store.Write(ctx, func(t *memdb.Tables) error {
		i := t.MovieIndex(movie.ID)
		if i < 0 {
			return model.ErrMovieNotFound
		}

		slug := movie.Slug()
		if other, taken := t.MovieBySlug(slug); taken && other.ID != movie.ID {
			return model.ErrSlugAlreadyExists
		}

		t.Movies[i] = memdb.MovieRow{
			ID:            movie.ID,
			Slug:          slug,
			Title:         movie.Title,
			YearOfRelease: movie.YearOfRelease,
		}
		t.DeleteGenres(movie.ID)
		appendGenres(t, movie.ID, movie.Genres)
		return nil
	})
	return finishMemory("movie.update", start, err)
}

func (r *memoryRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	start := time.Now()

	err := r.store.Write(ctx, func(t *memdb.Tables) error {
		t.DeleteGenres(id)
		t.DeleteRatings(id)

		i := t.MovieIndex(id)
		if i < 0 {
			return errNothingDeleted
		}
		t.Movies = slices.Delete(t.Movies, i, i+1)
		return nil
	})
	if errors.Is(err, errNothingDeleted) {
		metrics.RecordQuery("movie.delete", start, nil)
		return false, nil
	}
	if err = finishMemory("movie.delete", start, err); err != nil {
		return false, err
	}
	return true, nil
}

// ============================================
// HELPERS
// ============================================

// filterRows returns a fresh slice, safe to sort.
func filterRows(rows []memdb.MovieRow, filter model.MovieFilter) []memdb.MovieRow {
	var title string
	if filter.Title != nil {
		title = strings.ToLower(*filter.Title)
	}

	out := make([]memdb.MovieRow, 0, len(rows))
	for _, row := range rows {
		if filter.Title != nil && !strings.Contains(strings.ToLower(row.Title), title) {
			continue
		}
		if filter.Year != nil && row.YearOfRelease != *filter.Year {
			continue
		}
		out = append(out, row)
	}
	return out
}

func sortRows(rows []memdb.MovieRow, field model.SortField, order model.SortOrder) {
	slices.SortStableFunc(rows, func(a, b memdb.MovieRow) int {
		var c int
		switch field {
		case model.SortFieldTitle:
			c = cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		case model.SortFieldYearOfRelease:
			c = cmp.Compare(a.YearOfRelease, b.YearOfRelease)
		}
		if c == 0 {
			c = memdb.CompareIDs(a.ID, b.ID)
		}
		if order == model.SortDescending {
			return -c
		}
		return c
	})
}

func assemble(t *memdb.Tables, row memdb.MovieRow, userID *uuid.UUID) model.Movie {
	genres := t.GenresOf(row.ID)
	if genres == nil {
		genres = []string{}
	}
	return model.Movie{
		ID:            row.ID,
		Title:         row.Title,
		YearOfRelease: row.YearOfRelease,
		Genres:        genres,
		Rating:        t.AverageRating(row.ID),
		UserRating:    t.UserRating(row.ID, userID),
	}
}

func appendGenres(t *memdb.Tables, movieID uuid.UUID, genres []string) {
	for _, name := range genres {
		t.Genres = append(t.Genres, memdb.GenreRow{MovieID: movieID, Name: name})
	}
}

func finishMemory(op string, start time.Time, err error) error {
	err = classify(op, err)
	metrics.RecordQuery(op, start, err)
	return err
}
