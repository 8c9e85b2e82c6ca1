package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"movies-backend/internal/domains/movie/model"
	"movies-backend/internal/shared/response"
)

var movieErrorMap = map[error]struct {
	Status  int
	Code    string
	Message string
}{
	model.ErrMovieNotFound: {
		Status:  http.StatusNotFound,
		Code:    "MOVIE_NOT_FOUND",
		Message: "The specified movie does not exist",
	},
}

// HandleMovieError maps movie sentinels, then falls back to the shared taxonomy.
func HandleMovieError(c *gin.Context, err error) {
	for sentinel, config := range movieErrorMap {
		if errors.Is(err, sentinel) {
			response.ErrorResponse(c, config.Status, config.Code, config.Message)
			return
		}
	}
	response.HandleError(c, err)
}
