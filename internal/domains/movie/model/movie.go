package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"movies-backend/internal/shared/apperror"
	"movies-backend/internal/shared/utils"
)

// Movie is the catalog entity.
// Slug is never stored on the struct: it is always derived from Title + YearOfRelease.
type Movie struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	YearOfRelease int       `json:"yearOfRelease"`
	Genres        []string  `json:"genres"`

	// Derived by the query layer
	Rating     *float64 `json:"rating"`     // mean of all ratings, 1 decimal, nil when unrated
	UserRating *int     `json:"userRating"` // acting user's own rating, nil without user or rating
}

// Slug is the URL-safe identifier of the movie, e.g. "dalmations-101-2024".
func (m *Movie) Slug() string {
	return utils.GenerateSlug(m.Title, m.YearOfRelease)
}

// now is swapped in tests.
var now = time.Now

// CurrentYear is the UTC calendar year used for release-year validation.
func CurrentYear() int {
	return now().UTC().Year()
}

// Validate checks the fields a create or update must carry.
// Slug uniqueness needs storage and is checked by the service.
func (m *Movie) Validate() error {
	err := validation.ValidateStruct(m,
		validation.Field(&m.ID,
			validation.By(func(interface{}) error {
				if m.ID == uuid.Nil {
					return validation.NewError("validation_id_required", "id is required")
				}
				return nil
			}),
		),
		validation.Field(&m.Title,
			validation.Required.Error("title is required"),
			validation.Length(1, 500),
		),
		validation.Field(&m.YearOfRelease,
			validation.Required.Error("year of release is required"),
			validation.Max(CurrentYear()).Error("year of release cannot be in the future"),
		),
		validation.Field(&m.Genres,
			validation.Required.Error("at least one genre is required"),
			validation.Each(validation.Required.Error("genre cannot be blank")),
		),
	)
	return apperror.FromValidation(err)
}
