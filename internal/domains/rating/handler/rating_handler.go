package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"movies-backend/internal/domains/rating/model"
	"movies-backend/internal/domains/rating/service"
	"movies-backend/internal/shared/middleware"
	"movies-backend/internal/shared/response"
)

type Handler struct {
	service service.ServiceInterface
}

func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// RateMovie - PUT /api/movies/:id/ratings
func (h *Handler) RateMovie(c *gin.Context) {
	movieID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NotFound(c, "The specified movie does not exist")
		return
	}

	var req model.RateMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	userID := middleware.GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "authentication required")
		return
	}

	rated, err := h.service.Rate(c.Request.Context(), movieID, *userID, req.Rating)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	if !rated {
		response.NotFound(c, "The specified movie does not exist")
		return
	}

	response.NoContent(c)
}

// DeleteRating - DELETE /api/movies/:id/ratings
func (h *Handler) DeleteRating(c *gin.Context) {
	movieID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NotFound(c, model.ErrRatingNotFound.Error())
		return
	}

	userID := middleware.GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "authentication required")
		return
	}

	deleted, err := h.service.DeleteRating(c.Request.Context(), movieID, *userID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	if !deleted {
		response.NotFound(c, model.ErrRatingNotFound.Error())
		return
	}

	response.NoContent(c)
}

// GetUserRatings - GET /api/ratings/me
func (h *Handler) GetUserRatings(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "authentication required")
		return
	}

	ratings, err := h.service.GetUserRatings(c.Request.Context(), *userID)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, ratings)
}
