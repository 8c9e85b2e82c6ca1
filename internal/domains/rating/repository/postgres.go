package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"movies-backend/internal/domains/rating/model"
	"movies-backend/internal/metrics"
	"movies-backend/internal/shared/apperror"
	"movies-backend/internal/shared/utils"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Upsert(ctx context.Context, rating model.Rating) error {
	start := time.Now()

	query := `
		INSERT INTO ratings (userid, movieid, rating)
		VALUES ($1, $2, $3)
		ON CONFLICT (userid, movieid) DO UPDATE
		SET rating = excluded.rating
	`
	_, err := r.pool.Exec(ctx, query, rating.UserID, rating.MovieID, rating.Rating)
	return finish("rating.upsert", start, err)
}

func (r *postgresRepository) Delete(ctx context.Context, movieID, userID uuid.UUID) (bool, error) {
	start := time.Now()

	tag, err := r.pool.Exec(ctx, `DELETE FROM ratings WHERE movieid = $1 AND userid = $2`, movieID, userID)
	if err = finish("rating.delete", start, err); err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

type userRatingRow struct {
	MovieID       uuid.UUID
	Title         string
	YearOfRelease int
	Rating        int
}

func (r *postgresRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.MovieRating, error) {
	start := time.Now()

	query := `
		SELECT r.movieid, m.title, m.yearofrelease, r.rating
		FROM ratings r
		INNER JOIN movies m ON m.id = r.movieid
		WHERE r.userid = $1
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, finish("rating.list_for_user", start, err)
	}

	flat, err := pgx.CollectRows(rows, pgx.RowToStructByPos[userRatingRow])
	if err != nil {
		return nil, finish("rating.list_for_user", start, err)
	}

	out := make([]model.MovieRating, 0, len(flat))
	for _, row := range flat {
		out = append(out, model.MovieRating{
			MovieID: row.MovieID,
			Slug:    utils.GenerateSlug(row.Title, row.YearOfRelease),
			Rating:  row.Rating,
		})
	}
	return out, finish("rating.list_for_user", start, nil)
}

func (r *postgresRepository) GetRating(ctx context.Context, movieID uuid.UUID, userID *uuid.UUID) (*float64, *int, error) {
	start := time.Now()

	query := `
		SELECT round(avg(r.rating), 1),
		       (SELECT rating FROM ratings WHERE movieid = $1 AND userid = $2)
		FROM ratings r
		WHERE r.movieid = $1
	`
	var userArg interface{}
	if userID != nil {
		userArg = *userID
	}

	var (
		avg        decimal.NullDecimal
		userRating *int
	)
	err := r.pool.QueryRow(ctx, query, movieID, userArg).Scan(&avg, &userRating)
	if err = finish("rating.get", start, err); err != nil {
		return nil, nil, err
	}

	if !avg.Valid {
		return nil, userRating, nil
	}
	f := avg.Decimal.InexactFloat64()
	return &f, userRating, nil
}

func finish(op string, start time.Time, err error) error {
	err = classify(op, err)
	metrics.RecordQuery(op, start, err)
	if apperror.IsStorage(err) {
		log.Error().Err(err).Str("op", op).Msg("[RatingRepo] storage failure")
	}
	return err
}

const (
	foreignKeyViolation = "23503"
	movieForeignKey     = "ratings_movieid_fkey"
)

// classify maps a rating written against a vanished movie to ErrMovieNotFound.
// Everything else is a storage failure.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, model.ErrMovieNotFound) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation && pgErr.ConstraintName == movieForeignKey {
		return model.ErrMovieNotFound
	}
	return apperror.Storage(op, err)
}
