package rest

import (
	"context"
	"net/http"
	"time"

	"recoInsight/business/insight"
	"recoInsight/domain"
	"recoInsight/pkg/metrics"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

type (
	RecommendationHandler struct {
		validate *validator.Validate
		service  RecommendationService
		timeout  time.Duration
	}

	RecommendationService interface {
		RecommendItem(ctx context.Context, itemID uint64, k int) (domain.Recommendation, error)
		RecommendUser(ctx context.Context, userID uint, k int) (domain.Recommendation, error)
		StrategyForItem(ctx context.Context, itemID uint64, k int) (insight.StrategyResult, error)
	}

	// K is optional; zero means the configured default.
	ItemQuery struct {
		ID uint64 `param:"id" validate:"required,gt=0"`
		K  int    `query:"k"`
	}

	UserQuery struct {
		ID uint `param:"id" validate:"required,gt=0"`
		K  int  `query:"k"`
	}
)

func NewRecommendationHandler(svc RecommendationService, timeout time.Duration) *RecommendationHandler {
	return &RecommendationHandler{
		validate: validator.New(),
		service:  svc,
		timeout:  timeout,
	}
}

// GET /api/v1/recommendations/items/:id?k=3
func (h *RecommendationHandler) ItemRecommendations(c echo.Context) error {
	timer := prometheus.NewTimer(metrics.RecommendLatency.WithLabelValues("item"))
	defer timer.ObserveDuration()

	var q ItemQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	rec, err := h.service.RecommendItem(ctx, q.ID, q.K)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(rec))
}

// GET /api/v1/recommendations/users/:id?k=3
func (h *RecommendationHandler) UserRecommendations(c echo.Context) error {
	timer := prometheus.NewTimer(metrics.RecommendLatency.WithLabelValues("user"))
	defer timer.ObserveDuration()

	var q UserQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	rec, err := h.service.RecommendUser(ctx, q.ID, q.K)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(rec))
}

// GET /api/v1/strategies/items/:id?k=3
func (h *RecommendationHandler) ItemStrategy(c echo.Context) error {
	timer := prometheus.NewTimer(metrics.RecommendLatency.WithLabelValues("strategy"))
	defer timer.ObserveDuration()

	var q ItemQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	res, err := h.service.StrategyForItem(ctx, q.ID, q.K)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(res))
}
