package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movies-backend/internal/shared/apperror"
)

func TestMovie_Slug(t *testing.T) {
	m := Movie{Title: "Dalmations 101!", YearOfRelease: 2024}
	assert.Equal(t, "dalmations-101-2024", m.Slug())

	m.Title = "Dalmations 102"
	assert.Equal(t, "dalmations-102-2024", m.Slug())
}

func TestMovie_Validate(t *testing.T) {
	freezeYear(t, 2025)

	valid := func() *Movie {
		return &Movie{
			ID:            uuid.New(),
			Title:         "Nick the Greek",
			YearOfRelease: 2023,
			Genres:        []string{"Comedy"},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(m *Movie)
		field  string
	}{
		{"missing id", func(m *Movie) { m.ID = uuid.Nil }, "id"},
		{"missing title", func(m *Movie) { m.Title = "" }, "title"},
		{"missing year", func(m *Movie) { m.YearOfRelease = 0 }, "yearOfRelease"},
		{"future year", func(m *Movie) { m.YearOfRelease = 2026 }, "yearOfRelease"},
		{"no genres", func(m *Movie) { m.Genres = nil }, "genres"},
		{"blank genre", func(m *Movie) { m.Genres = []string{"Comedy", ""} }, "genres"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := valid()
			tt.mutate(m)

			var verr *apperror.ValidationError
			require.ErrorAs(t, m.Validate(), &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestNewPageMeta(t *testing.T) {
	opts := ListOptions{Page: 2, PageSize: 10}

	assert.True(t, NewPageMeta(opts, 21).HasNextPage)
	assert.False(t, NewPageMeta(opts, 20).HasNextPage)
	assert.Equal(t, 20, NewPageMeta(opts, 20).Total)
}

func TestToResponse_EmptyGenres(t *testing.T) {
	m := Movie{ID: uuid.New(), Title: "Heat", YearOfRelease: 1995}
	resp := m.ToResponse()

	assert.NotNil(t, resp.Genres)
	assert.Empty(t, resp.Genres)
	assert.Equal(t, "heat-1995", resp.Slug)
}
