// Package memdb is a list-backed, in-process stand-in for the movies/genres/ratings tables.
//
// Write runs its function against a private copy of the tables and swaps the copy in only
// when the function returns nil, so a multi-step write is atomic and rolls back on error.
package memdb

import (
	"bytes"
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MovieRow struct {
	ID            uuid.UUID
	Slug          string
	Title         string
	YearOfRelease int
}

type GenreRow struct {
	MovieID uuid.UUID
	Name    string
}

type RatingRow struct {
	UserID  uuid.UUID
	MovieID uuid.UUID
	Rating  int
}

// Tables is one consistent snapshot of the store. Row order is insertion order.
type Tables struct {
	Movies  []MovieRow
	Genres  []GenreRow
	Ratings []RatingRow
}

func (t *Tables) clone() *Tables {
	return &Tables{
		Movies:  slices.Clone(t.Movies),
		Genres:  slices.Clone(t.Genres),
		Ratings: slices.Clone(t.Ratings),
	}
}

// MovieIndex returns the position of the movie with id, or -1.
func (t *Tables) MovieIndex(id uuid.UUID) int {
	return slices.IndexFunc(t.Movies, func(m MovieRow) bool { return m.ID == id })
}

// MovieBySlug returns the movie stored under slug.
func (t *Tables) MovieBySlug(slug string) (MovieRow, bool) {
	i := slices.IndexFunc(t.Movies, func(m MovieRow) bool { return m.Slug == slug })
	if i < 0 {
		return MovieRow{}, false
	}
	return t.Movies[i], true
}

// GenresOf lists genre names of a movie in insertion order, duplicates included.
func (t *Tables) GenresOf(movieID uuid.UUID) []string {
	var names []string
	for _, g := range t.Genres {
		if g.MovieID == movieID {
			names = append(names, g.Name)
		}
	}
	return names
}

// RatingsOf lists every rating value of a movie.
func (t *Tables) RatingsOf(movieID uuid.UUID) []int {
	var values []int
	for _, r := range t.Ratings {
		if r.MovieID == movieID {
			values = append(values, r.Rating)
		}
	}
	return values
}

// AverageRating is the mean rating of a movie rounded half away from zero to one place,
// the way SQL round(avg(rating), 1) does. nil when the movie has no ratings.
func (t *Tables) AverageRating(movieID uuid.UUID) *float64 {
	values := t.RatingsOf(movieID)
	if len(values) == 0 {
		return nil
	}

	sum := int64(0)
	for _, v := range values {
		sum += int64(v)
	}
	avg, _ := decimal.NewFromInt(sum).
		DivRound(decimal.NewFromInt(int64(len(values))), 16).
		Round(1).
		Float64()
	return &avg
}

// UserRating returns the rating userID gave the movie, nil without user or rating.
func (t *Tables) UserRating(movieID uuid.UUID, userID *uuid.UUID) *int {
	if userID == nil {
		return nil
	}
	i := t.RatingIndex(*userID, movieID)
	if i < 0 {
		return nil
	}
	v := t.Ratings[i].Rating
	return &v
}

// RatingIndex returns the position of the (user, movie) rating, or -1.
func (t *Tables) RatingIndex(userID, movieID uuid.UUID) int {
	return slices.IndexFunc(t.Ratings, func(r RatingRow) bool {
		return r.UserID == userID && r.MovieID == movieID
	})
}

// DeleteGenres removes every genre row of a movie.
func (t *Tables) DeleteGenres(movieID uuid.UUID) int {
	before := len(t.Genres)
	t.Genres = slices.DeleteFunc(t.Genres, func(g GenreRow) bool { return g.MovieID == movieID })
	return before - len(t.Genres)
}

// DeleteRatings removes every rating row of a movie.
func (t *Tables) DeleteRatings(movieID uuid.UUID) int {
	before := len(t.Ratings)
	t.Ratings = slices.DeleteFunc(t.Ratings, func(r RatingRow) bool { return r.MovieID == movieID })
	return before - len(t.Ratings)
}

// Store guards the tables.
type Store struct {
	mu     sync.RWMutex
	tables *Tables
}

func NewStore() *Store {
	return &Store{tables: &Tables{}}
}

// Read runs fn against the current snapshot under a read lock. fn must not mutate.
func (s *Store) Read(ctx context.Context, fn func(t *Tables) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.tables)
}

// Write runs fn against a copy and commits it only when fn returns nil.
func (s *Store) Write(ctx context.Context, fn func(t *Tables) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.tables.clone()
	if err := fn(work); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.tables = work
	return nil
}

// CompareIDs orders ids bytewise, matching PostgreSQL's uuid ordering.
func CompareIDs(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}
