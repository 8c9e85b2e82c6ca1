package model

import "errors"

var (
	ErrMovieNotFound     = errors.New("movie not found")
	ErrSlugAlreadyExists = errors.New("slug already exists")
)
