package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"movies-backend/internal/domains/movie/model"
	"movies-backend/internal/domains/movie/service"
	"movies-backend/internal/shared/apperror"
	"movies-backend/internal/shared/middleware"
	"movies-backend/internal/shared/response"
)

// Handler - HTTP Handler for /api/movies
type Handler struct {
	service service.ServiceInterface
}

// NewHandler - Constructor with DI
func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// ListMovies - GET /api/movies
// Query params: title, year, sortBy, page, pageSize
func (h *Handler) ListMovies(c *gin.Context) {
	req, err := parseListRequest(c)
	if err != nil {
		HandleMovieError(c, err)
		return
	}

	movies, meta, err := h.service.List(c.Request.Context(), req)
	if err != nil {
		HandleMovieError(c, err)
		return
	}

	response.Success(c, http.StatusOK, model.NewMoviesResponse(movies, meta))
}

// GetMovie - GET /api/movies/:id (id or slug)
func (h *Handler) GetMovie(c *gin.Context) {
	movie, err := h.service.Get(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		HandleMovieError(c, err)
		return
	}

	response.Success(c, http.StatusOK, movie.ToResponse())
}

// CreateMovie - POST /api/movies
func (h *Handler) CreateMovie(c *gin.Context) {
	var req model.CreateMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	movie := req.ToMovie()
	if err := h.service.Create(c.Request.Context(), movie); err != nil {
		HandleMovieError(c, err)
		return
	}

	c.Header("Location", "/api/movies/"+movie.ID.String())
	response.Success(c, http.StatusCreated, movie.ToResponse())
}

// UpdateMovie - PUT /api/movies/:id
func (h *Handler) UpdateMovie(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		HandleMovieError(c, model.ErrMovieNotFound)
		return
	}

	var req model.UpdateMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	movie, err := h.service.Update(c.Request.Context(), req.ToMovie(id), middleware.GetUserID(c))
	if err != nil {
		HandleMovieError(c, err)
		return
	}

	response.Success(c, http.StatusOK, movie.ToResponse())
}

// DeleteMovie - DELETE /api/movies/:id
func (h *Handler) DeleteMovie(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		HandleMovieError(c, model.ErrMovieNotFound)
		return
	}

	deleted, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		HandleMovieError(c, err)
		return
	}
	if !deleted {
		HandleMovieError(c, model.ErrMovieNotFound)
		return
	}

	response.NoContent(c)
}

// parseListRequest applies paging defaults. Non-numeric numbers are validation failures.
func parseListRequest(c *gin.Context) (model.ListMoviesRequest, error) {
	req := model.ListMoviesRequest{
		Page:     model.DefaultPage,
		PageSize: model.DefaultPageSize,
		UserID:   middleware.GetUserID(c),
	}
	invalid := &apperror.ValidationError{}

	if v, ok := c.GetQuery("title"); ok {
		req.Title = &v
	}
	if v, ok := c.GetQuery("sortBy"); ok {
		req.SortBy = &v
	}
	if v, ok := c.GetQuery("year"); ok {
		if year, err := strconv.Atoi(v); err == nil {
			req.Year = &year
		} else {
			invalid.Add("year", "year must be a number")
		}
	}
	if v, ok := c.GetQuery("page"); ok {
		if page, err := strconv.Atoi(v); err == nil {
			req.Page = page
		} else {
			invalid.Add("page", "page must be a number")
		}
	}
	if v, ok := c.GetQuery("pageSize"); ok {
		if size, err := strconv.Atoi(v); err == nil {
			req.PageSize = size
		} else {
			invalid.Add("pageSize", "page size must be a number")
		}
	}

	if len(invalid.Fields) > 0 {
		return req, invalid
	}
	return req, nil
}
