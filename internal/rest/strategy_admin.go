package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"recoInsight/business/strategy"
	"recoInsight/domain"
	"recoInsight/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	StrategyAdminHandler struct {
		validate *validator.Validate
		service  StrategyConfigService
		timeout  time.Duration
	}

	StrategyConfigService interface {
		StrategyConfig() strategy.Config
		UpdateStrategyConfig(ctx context.Context, cfg strategy.Config) (strategy.Config, error)
	}

	// body: {"high_threshold":0.8,"medium_threshold":0.5,"decision_table":{"high:false":"high_value_bundle",...}}
	StrategyConfigRequest struct {
		HighThreshold   float64           `json:"high_threshold" validate:"gt=0,lte=1"`
		MediumThreshold float64           `json:"medium_threshold" validate:"gt=0,lte=1"`
		DecisionTable   map[string]string `json:"decision_table" validate:"required,min=1"`
	}

	strategyConfigView struct {
		HighThreshold   float64           `json:"high_threshold"`
		MediumThreshold float64           `json:"medium_threshold"`
		DecisionTable   map[string]string `json:"decision_table"`
		Revision        uint64            `json:"revision"`
	}
)

func NewStrategyAdminHandler(svc StrategyConfigService, timeout time.Duration) *StrategyAdminHandler {
	return &StrategyAdminHandler{
		validate: validator.New(),
		service:  svc,
		timeout:  timeout,
	}
}

func viewOf(cfg strategy.Config) strategyConfigView {
	table := make(map[string]string, len(cfg.Table))
	for k, v := range cfg.Table {
		table[k.String()] = string(v)
	}
	return strategyConfigView{
		HighThreshold:   cfg.Thresholds.High,
		MediumThreshold: cfg.Thresholds.Medium,
		DecisionTable:   table,
		Revision:        cfg.Revision,
	}
}

// GET /api/v1/admin/strategy/config
func (h *StrategyAdminHandler) GetConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, viewOf(h.service.StrategyConfig()))
}

// PUT /api/v1/admin/strategy/config
func (h *StrategyAdminHandler) UpdateConfig(c echo.Context) error {
	var body StrategyConfigRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "invalid body: " + err.Error(),
		})
	}
	if err := h.validate.Struct(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": err.Error(),
		})
	}

	raw := make(map[string]any, len(body.DecisionTable))
	for k, v := range body.DecisionTable {
		raw[k] = v
	}
	table, err := strategy.DecisionTableFromMap(raw)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": err.Error(),
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cfg, err := h.service.UpdateStrategyConfig(ctx, strategy.Config{
		Thresholds: strategy.Thresholds{High: body.HighThreshold, Medium: body.MediumThreshold},
		Table:      table,
	})
	if errors.Is(err, domain.ErrConfiguration) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": err.Error(),
		})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": err.Error(),
		})
	}

	// set by middleware.AuthMiddleware
	adminID, _ := c.Get("user_id").(uint)
	logger.Info("strategy config update applied", "admin_id", adminID, "revision", cfg.Revision)

	return c.JSON(http.StatusOK, echo.Map{
		"status":     "ok",
		"config":     viewOf(cfg),
		"updated_by": adminID,
	})
}
