package model

import (
	"errors"
	"math"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"movies-backend/internal/shared/apperror"
)

// Paging bounds.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MinPageSize     = 1
	MaxPageSize     = 25
)

// SortField is the canonical, allow-listed sort column.
type SortField int

const (
	SortFieldNone SortField = iota
	SortFieldTitle
	SortFieldYearOfRelease
)

// sortFields is the allow-list, keyed by lower-cased token.
var sortFields = map[string]SortField{
	"title":         SortFieldTitle,
	"yearofrelease": SortFieldYearOfRelease,
}

func (f SortField) String() string {
	switch f {
	case SortFieldTitle:
		return "title"
	case SortFieldYearOfRelease:
		return "yearofrelease"
	default:
		return ""
	}
}

// SortOrder is the requested direction.
type SortOrder int

const (
	SortUnsorted SortOrder = iota
	SortAscending
	SortDescending
)

// MovieFilter holds the optional predicates shared by list and count.
// A nil field imposes no constraint.
type MovieFilter struct {
	Title *string // case-insensitive substring
	Year  *int    // exact match
}

// ListOptions is the canonical, validated form of a list request.
type ListOptions struct {
	MovieFilter
	SortField SortField
	SortOrder SortOrder
	Page      int
	PageSize  int
	UserID    *uuid.UUID
}

// Offset is the number of rows skipped before the requested page.
// It saturates at math.MaxInt, so a huge page reads past the end instead of wrapping.
func (o ListOptions) Offset() int {
	if o.Page <= 1 || o.PageSize <= 0 {
		return 0
	}
	if o.Page-1 > math.MaxInt/o.PageSize {
		return math.MaxInt
	}
	return (o.Page - 1) * o.PageSize
}

// Sorted reports whether an ORDER BY applies.
func (o ListOptions) Sorted() bool {
	return o.SortField != SortFieldNone && o.SortOrder != SortUnsorted
}

// ListMoviesRequest is the raw list request as received from the transport.
type ListMoviesRequest struct {
	Title    *string    `json:"title" form:"title"`
	Year     *int       `json:"year" form:"year"`
	SortBy   *string    `json:"sortBy" form:"sortBy"`
	Page     int        `json:"page" form:"page"`
	PageSize int        `json:"pageSize" form:"pageSize"`
	UserID   *uuid.UUID `json:"-" form:"-"`
}

// ParseSortToken splits "+title" / "-yearofrelease" / "title" into field name and order.
// A nil or blank token is unsorted.
func ParseSortToken(token *string) (string, SortOrder) {
	if token == nil {
		return "", SortUnsorted
	}
	t := strings.TrimSpace(*token)
	if t == "" {
		return "", SortUnsorted
	}

	switch t[0] {
	case '-':
		return t[1:], SortDescending
	case '+':
		return t[1:], SortAscending
	default:
		return t, SortAscending
	}
}

var errSortField = errors.New("you can only sort by 'title' or 'yearofrelease'")

// Options validates the request and returns the canonical ListOptions.
// Any failure is a *apperror.ValidationError; nothing is silently corrected.
func (r ListMoviesRequest) Options() (ListOptions, error) {
	fieldName, order := ParseSortToken(r.SortBy)
	field, known := sortFields[strings.ToLower(fieldName)]

	err := validation.ValidateStruct(&r,
		validation.Field(&r.Year,
			validation.Max(CurrentYear()).Error("year cannot be in the future"),
		),
		validation.Field(&r.SortBy,
			validation.By(func(interface{}) error {
				if order != SortUnsorted && !known {
					return errSortField
				}
				return nil
			}),
		),
		validation.Field(&r.Page,
			validation.By(intAtLeast(1, "page must be at least 1")),
		),
		validation.Field(&r.PageSize,
			validation.By(intBetween(MinPageSize, MaxPageSize, "page size must be between 1 and 25")),
		),
	)
	if err != nil {
		return ListOptions{}, apperror.FromValidation(err)
	}

	opts := ListOptions{
		MovieFilter: MovieFilter{Title: r.Title, Year: r.Year},
		Page:        r.Page,
		PageSize:    r.PageSize,
		UserID:      r.UserID,
	}
	if order != SortUnsorted {
		opts.SortField = field
		opts.SortOrder = order
	}
	return opts, nil
}

// ozzo's Min/Max skip zero values as "empty", so paging bounds use explicit rules.
func intAtLeast(min int, msg string) validation.RuleFunc {
	return func(value interface{}) error {
		if v, ok := value.(int); !ok || v < min {
			return errors.New(msg)
		}
		return nil
	}
}

func intBetween(min, max int, msg string) validation.RuleFunc {
	return func(value interface{}) error {
		if v, ok := value.(int); !ok || v < min || v > max {
			return errors.New(msg)
		}
		return nil
	}
}
