package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"recoInsight/domain"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
	"github.com/pobyzaarif/goshortcute"
)

type (
	SimilarityHandler struct {
		service SimilarityService
		timeout time.Duration
	}

	SimilarityService interface {
		Status() domain.SnapshotStatus
		Rebuild(ctx context.Context) (domain.SnapshotStatus, error)
	}
)

func NewSimilarityHandler(svc SimilarityService, rebuildTimeout time.Duration) *SimilarityHandler {
	return &SimilarityHandler{
		service: svc,
		timeout: rebuildTimeout,
	}
}

func snapshotETag(st domain.SnapshotStatus) string {
	return `"` + goshortcute.StringtoBase64Encode(fmt.Sprintf("v%d:%t", st.Version, st.Stale)) + `"`
}

// GET /api/v1/similarity/status
func (h *SimilarityHandler) Status(c echo.Context) error {
	st := h.service.Status()

	etag := snapshotETag(st)
	c.Response().Header().Set("ETag", etag)
	if match := c.Request().Header.Get("If-None-Match"); match != "" && match == etag {
		return c.NoContent(http.StatusNotModified)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(st))
}

// POST /api/v1/admin/similarity/rebuild
func (h *SimilarityHandler) Rebuild(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	st, err := h.service.Rebuild(ctx)
	if err != nil {
		return writeError(c, err)
	}

	c.Response().Header().Set("ETag", snapshotETag(st))
	return c.JSON(http.StatusOK, echo.Map{
		"status":   "ok",
		"snapshot": st,
	})
}
