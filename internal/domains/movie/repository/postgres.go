package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"movies-backend/internal/domains/movie/model"
	"movies-backend/internal/metrics"
	"movies-backend/internal/shared/apperror"
	"movies-backend/pkg/database"
)

const (
	uniqueViolation = "23505"
	slugIndex       = "movies_slug_idx"
)

// errNothingDeleted aborts the delete transaction when the movie row was already gone.
var errNothingDeleted = errors.New("no movie row deleted")

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

// ============================================
// QUERY BUILDING
// ============================================

// selectMovies projects movieRow. $1 is the acting user id (NULL for anonymous).
const selectMovies = `
	SELECT m.id, m.title, m.yearofrelease, g.names, r.avg_rating, myr.rating
	FROM movies m
	LEFT JOIN LATERAL (
		SELECT array_agg(name ORDER BY position) AS names FROM genres WHERE movieid = m.id
	) g ON true
	LEFT JOIN LATERAL (
		SELECT round(avg(rating), 1) AS avg_rating FROM ratings WHERE movieid = m.id
	) r ON true
	LEFT JOIN ratings myr ON myr.movieid = m.id AND myr.userid = $1`

// Sort columns are looked up, never taken from request text.
var (
	sortColumns = map[model.SortField]string{
		model.SortFieldTitle:         `lower(m.title) COLLATE "C"`,
		model.SortFieldYearOfRelease: "m.yearofrelease",
	}
	sortDirections = map[model.SortOrder]string{
		model.SortAscending:  "ASC",
		model.SortDescending: "DESC",
	}
)

// buildWhereClause - Construct WHERE clause dynamically, placeholders start at argIndex
// Returns: (whereClause string, args []interface{})
func buildWhereClause(filter model.MovieFilter, argIndex int) (string, []interface{}) {
	conditions := []string{}
	args := []interface{}{}

	// Title: case-insensitive substring
	if filter.Title != nil {
		conditions = append(conditions, fmt.Sprintf(`m.title ILIKE $%d`, argIndex))
		args = append(args, "%"+escapeLike(*filter.Title)+"%")
		argIndex++
	}

	// Year: exact match
	if filter.Year != nil {
		conditions = append(conditions, fmt.Sprintf("m.yearofrelease = $%d", argIndex))
		args = append(args, *filter.Year)
	}

	if len(conditions) == 0 {
		return "TRUE", args
	}
	return strings.Join(conditions, " AND "), args
}

// buildOrderClause returns "" for unsorted requests.
func buildOrderClause(opts model.ListOptions) string {
	if !opts.Sorted() {
		return ""
	}
	column, ok := sortColumns[opts.SortField]
	if !ok {
		return ""
	}
	dir := sortDirections[opts.SortOrder]
	return fmt.Sprintf("ORDER BY %s %s, m.id %s", column, dir, dir)
}

// escapeLike escapes ILIKE wildcards (default escape character is backslash).
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func userArg(userID *uuid.UUID) interface{} {
	if userID == nil {
		return nil
	}
	return *userID
}

// ============================================
// READS
// ============================================

func (r *postgresRepository) List(ctx context.Context, opts model.ListOptions) ([]model.Movie, error) {
	start := time.Now()

	args := []interface{}{userArg(opts.UserID)}
	where, whereArgs := buildWhereClause(opts.MovieFilter, 2)
	args = append(args, whereArgs...)

	paramCount := len(args) + 1
	query := fmt.Sprintf("%s\n\tWHERE %s\n\t%s\n\tLIMIT $%d OFFSET $%d",
		selectMovies, where, buildOrderClause(opts), paramCount, paramCount+1)
	args = append(args, opts.PageSize, opts.Offset())

	movies, err := r.queryMovies(ctx, query, args)
	return movies, r.finish("movie.list", start, err)
}

func (r *postgresRepository) Count(ctx context.Context, filter model.MovieFilter) (int, error) {
	start := time.Now()

	where, args := buildWhereClause(filter, 1)
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM movies m WHERE %s`, where)

	var total int
	err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total)
	return total, r.finish("movie.count", start, err)
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (*model.Movie, error) {
	start := time.Now()
	movie, err := r.queryOne(ctx, selectMovies+"\n\tWHERE m.id = $2", userArg(userID), id)
	return movie, r.finish("movie.get_by_id", start, err)
}

func (r *postgresRepository) GetBySlug(ctx context.Context, slug string, userID *uuid.UUID) (*model.Movie, error) {
	start := time.Now()
	movie, err := r.queryOne(ctx, selectMovies+"\n\tWHERE m.slug = $2", userArg(userID), slug)
	return movie, r.finish("movie.get_by_slug", start, err)
}

func (r *postgresRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	start := time.Now()

	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM movies WHERE id = $1)`, id).Scan(&exists)
	return exists, r.finish("movie.exists", start, err)
}

// queryMovies - Execute query & assemble rows using pgx.CollectRows
func (r *postgresRepository) queryMovies(ctx context.Context, query string, args []interface{}) ([]model.Movie, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	flat, err := pgx.CollectRows(rows, pgx.RowToStructByPos[movieRow])
	if err != nil {
		return nil, err
	}

	movies := make([]model.Movie, 0, len(flat))
	for _, row := range flat {
		movies = append(movies, row.toMovie())
	}
	return movies, nil
}

func (r *postgresRepository) queryOne(ctx context.Context, query string, args ...interface{}) (*model.Movie, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByPos[movieRow])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrMovieNotFound
	}
	if err != nil {
		return nil, err
	}

	movie := row.toMovie()
	return &movie, nil
}

// ============================================
// WRITES (one transaction each)
// ============================================

func (r *postgresRepository) Create(ctx context.Context, movie *model.Movie) error {
	start := time.Now()

	err := database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO movies (id, slug, title, yearofrelease) VALUES ($1, $2, $3, $4)`,
			movie.ID, movie.Slug(), movie.Title, movie.YearOfRelease,
		)
		if err != nil {
			return err
		}
		return insertGenres(ctx, tx, movie.ID, movie.Genres)
	})
	return r.finish("movie.create", start, err)
}

func (r *postgresRepository) Update(ctx context.Context, movie *model.Movie) error {
	start := time.Now()

	err := database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE movies SET slug = $2, title = $3, yearofrelease = $4 WHERE id = $1`,
			movie.ID, movie.Slug(), movie.Title, movie.YearOfRelease,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return model.ErrMovieNotFound
		}

		if _, err := tx.Exec(ctx, `DELETE FROM genres WHERE movieid = $1`, movie.ID); err != nil {
			return err
		}
		return insertGenres(ctx, tx, movie.ID, movie.Genres)
	})
	return r.finish("movie.update", start, err)
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	start := time.Now()

	err := database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM genres WHERE movieid = $1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM ratings WHERE movieid = $1`, id); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `DELETE FROM movies WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errNothingDeleted
		}
		return nil
	})
	if errors.Is(err, errNothingDeleted) {
		metrics.RecordQuery("movie.delete", start, nil)
		return false, nil
	}
	if err = r.finish("movie.delete", start, err); err != nil {
		return false, err
	}
	return true, nil
}

// insertGenres writes one genre row per element, duplicates kept.
// position records the request order so reads return genres as written.
func insertGenres(ctx context.Context, tx pgx.Tx, movieID uuid.UUID, genres []string) error {
	if len(genres) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx,
		`INSERT INTO genres (movieid, name, position)
		 SELECT $1::uuid, g.name, g.position
		 FROM unnest($2::text[]) WITH ORDINALITY AS g(name, position)`,
		movieID, pq.Array(genres),
	)
	return err
}

// ============================================
// ERROR CLASSIFICATION
// ============================================

// finish classifies err, records the operation and logs storage failures.
// Domain errors pass through untouched.
func (r *postgresRepository) finish(op string, start time.Time, err error) error {
	err = classify(op, err)
	metrics.RecordQuery(op, start, err)
	if apperror.IsStorage(err) {
		log.Error().Err(err).Str("op", op).Msg("[MovieRepo] storage failure")
	}
	return err
}

func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, model.ErrMovieNotFound) || errors.Is(err, model.ErrSlugAlreadyExists) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == slugIndex {
		return model.ErrSlugAlreadyExists
	}
	return apperror.Storage(op, err)
}
