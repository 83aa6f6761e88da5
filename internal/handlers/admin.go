package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mauv0809/stockcache/internal/models"
	"github.com/rs/zerolog"
)

const maxRefreshBatch = 25

// Refresher forces a snapshot refresh for one ticker.
type Refresher interface {
	Get(ctx context.Context, ticker string, forceRefresh bool) (*models.StockResponse, error)
}

// CacheStats counts cached rows.
type CacheStats interface {
	Stats(ctx context.Context) (summaries, earnings int, err error)
}

// AdminHandler handles cache maintenance endpoints.
type AdminHandler struct {
	svc    Refresher
	stats  CacheStats
	logger zerolog.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(svc Refresher, stats CacheStats, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, stats: stats, logger: logger}
}

// AdminResponse is the JSON response for admin endpoints.
type AdminResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Count   int      `json:"count,omitempty"`
	Failed  []string `json:"failed,omitempty"`
	Elapsed string   `json:"elapsed,omitempty"`
}

// RefreshTickers handles POST /admin/refresh
// Force-refreshes each listed ticker in turn.
// Query params:
// - ticker: comma-separated tickers (required)
func (h *AdminHandler) RefreshTickers(c echo.Context) error {
	ctx := c.Request().Context()
	start := time.Now()

	var tickers []string
	for _, t := range strings.Split(c.QueryParam("ticker"), ",") {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if !tickerPattern.MatchString(t) {
			return c.JSON(http.StatusBadRequest, AdminResponse{
				Success: false,
				Message: fmt.Sprintf("invalid ticker %q", t),
			})
		}
		tickers = append(tickers, t)
	}
	if len(tickers) == 0 {
		return c.JSON(http.StatusBadRequest, AdminResponse{
			Success: false,
			Message: "ticker parameter is required",
		})
	}
	if len(tickers) > maxRefreshBatch {
		return c.JSON(http.StatusBadRequest, AdminResponse{
			Success: false,
			Message: fmt.Sprintf("at most %d tickers per request", maxRefreshBatch),
		})
	}

	h.logger.Info().Strs("tickers", tickers).Msg("starting refresh")

	var failed []string
	count := 0
	for _, t := range tickers {
		resp, err := h.svc.Get(ctx, t, true)
		if err != nil || resp.Warning != "" {
			h.logger.Warn().Str("ticker", t).Err(err).Msg("refresh failed")
			failed = append(failed, t)
			continue
		}
		count++
	}

	elapsed := time.Since(start)
	h.logger.Info().Int("refreshed", count).Int("failed", len(failed)).Dur("elapsed", elapsed).Msg("refresh complete")

	return c.JSON(http.StatusOK, AdminResponse{
		Success: len(failed) == 0,
		Message: fmt.Sprintf("Refreshed %d of %d tickers", count, len(tickers)),
		Count:   count,
		Failed:  failed,
		Elapsed: elapsed.Round(time.Millisecond).String(),
	})
}

// CacheStatus handles GET /admin/cache/status
func (h *AdminHandler) CacheStatus(c echo.Context) error {
	summaries, earnings, err := h.stats.Stats(c.Request().Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("reading cache stats")
		return c.JSON(http.StatusInternalServerError, AdminResponse{
			Success: false,
			Message: "cache status unavailable",
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"summaries": summaries,
		"earnings":  earnings,
	})
}
