package rest

import (
	"context"
	"net/http"
	"time"

	"recoInsight/domain"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	RatingHandler struct {
		validate *validator.Validate
		service  RatingService
		timeout  time.Duration
	}

	RatingService interface {
		IngestRatings(ctx context.Context, ratings []domain.Interaction) (int, error)
		PerformanceMetrics(ctx context.Context) ([]domain.ItemPopularity, error)
	}

	// The rating range itself is checked by the service against the
	// configured bounds.
	RatingRequest struct {
		UserID  uint       `json:"user_id" validate:"required,gt=0"`
		ItemID  uint64     `json:"item_id" validate:"required,gt=0"`
		Rating  *float64   `json:"rating" validate:"required"`
		RatedAt *time.Time `json:"rated_at"`
	}

	IngestRequest struct {
		Ratings []RatingRequest `json:"ratings" validate:"required,min=1,max=10000,dive"`
	}
)

func NewRatingHandler(svc RatingService, timeout time.Duration) *RatingHandler {
	return &RatingHandler{
		validate: validator.New(),
		service:  svc,
		timeout:  timeout,
	}
}

// POST /api/v1/ratings
func (h *RatingHandler) Ingest(c echo.Context) error {
	var req IngestRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ratings := make([]domain.Interaction, 0, len(req.Ratings))
	for _, r := range req.Ratings {
		in := domain.Interaction{
			UserID: r.UserID,
			ItemID: r.ItemID,
			Rating: *r.Rating,
		}
		if r.RatedAt != nil {
			in.RatedAt = r.RatedAt.UTC()
		}
		ratings = append(ratings, in)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	n, err := h.service.IngestRatings(ctx, ratings)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(echo.Map{
		"accepted": n,
	}))
}

// GET /api/v1/analytics/items
func (h *RatingHandler) ItemPerformance(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	rows, err := h.service.PerformanceMetrics(ctx)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(rows))
}
