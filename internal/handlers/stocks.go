package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mauv0809/stockcache/internal/catalog"
	"github.com/mauv0809/stockcache/internal/models"
	"github.com/mauv0809/stockcache/internal/stock"
	"github.com/rs/zerolog"
)

const defaultPriceDays = 365

// StockService is the orchestrator surface the handlers need.
type StockService interface {
	Get(ctx context.Context, ticker string, forceRefresh bool) (*models.StockResponse, error)
	Earnings(ctx context.Context, ticker string) ([]models.EarningsRecord, error)
	Prices(ctx context.Context, ticker string, days int) ([]models.PriceBar, error)
	Providers() []stock.ProviderStatus
}

// StockHandler serves the /stocks routes.
type StockHandler struct {
	svc    StockService
	logger zerolog.Logger
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(svc StockService, logger zerolog.Logger) *StockHandler {
	return &StockHandler{svc: svc, logger: logger}
}

// Register mounts the routes on g. Static paths resolve before :ticker.
func (h *StockHandler) Register(g *echo.Group) {
	g.GET("/stocks/search", h.Search)
	g.GET("/stocks/providers", h.Providers)
	g.GET("/stocks/:ticker", h.GetStock)
	g.POST("/stocks/:ticker/refresh", h.RefreshStock)
	g.GET("/stocks/:ticker/earnings", h.GetEarnings)
	g.GET("/stocks/:ticker/prices", h.GetPrices)
}

type stockParams struct {
	Ticker  string `param:"ticker" validate:"required,ticker"`
	Refresh bool   `query:"refresh"`
}

type priceParams struct {
	Ticker string `param:"ticker" validate:"required,ticker"`
	Days   int    `query:"days" validate:"min=1,max=3650"`
}

type searchParams struct {
	Q     string `query:"q"`
	Limit int    `query:"limit" validate:"omitempty,min=1,max=50"`
}

// bind binds path and query values into p and validates it, writing a 400 on
// failure. It reports whether the handler should continue.
func bind(c echo.Context, p any) (bool, error) {
	if err := c.Bind(p); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return false, detail(c, http.StatusBadRequest, fmt.Sprint(he.Message))
		}
		return false, detail(c, http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(p); err != nil {
		return false, detail(c, http.StatusBadRequest, err.Error())
	}
	return true, nil
}

// GetStock handles GET /stocks/:ticker
// Query params:
// - refresh: bypass the cache when true
func (h *StockHandler) GetStock(c echo.Context) error {
	var p stockParams
	if ok, err := bind(c, &p); !ok {
		return err
	}
	return h.serveStock(c, p.Ticker, p.Refresh)
}

// RefreshStock handles POST /stocks/:ticker/refresh
func (h *StockHandler) RefreshStock(c echo.Context) error {
	var p stockParams
	if ok, err := bind(c, &p); !ok {
		return err
	}
	return h.serveStock(c, p.Ticker, true)
}

func (h *StockHandler) serveStock(c echo.Context, ticker string, force bool) error {
	ticker = strings.ToUpper(ticker)
	resp, err := h.svc.Get(c.Request().Context(), ticker, force)
	if err != nil {
		return h.fail(c, "data", ticker, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetEarnings handles GET /stocks/:ticker/earnings
func (h *StockHandler) GetEarnings(c echo.Context) error {
	var p stockParams
	if ok, err := bind(c, &p); !ok {
		return err
	}
	ticker := strings.ToUpper(p.Ticker)
	earnings, err := h.svc.Earnings(c.Request().Context(), ticker)
	if err != nil {
		return h.fail(c, "earnings", ticker, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"ticker":   ticker,
		"earnings": earnings,
	})
}

// GetPrices handles GET /stocks/:ticker/prices
// Query params:
// - days: trailing window, default 365
func (h *StockHandler) GetPrices(c echo.Context) error {
	p := priceParams{Days: defaultPriceDays}
	if ok, err := bind(c, &p); !ok {
		return err
	}
	ticker := strings.ToUpper(p.Ticker)
	bars, err := h.svc.Prices(c.Request().Context(), ticker, p.Days)
	if err != nil {
		return h.fail(c, "prices", ticker, err)
	}
	if bars == nil {
		bars = []models.PriceBar{}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"ticker": ticker,
		"days":   p.Days,
		"prices": bars,
	})
}

// Search handles GET /stocks/search
// Query params:
// - q: ticker or name fragment
// - limit: max results, default 10
func (h *StockHandler) Search(c echo.Context) error {
	var p searchParams
	if ok, err := bind(c, &p); !ok {
		return err
	}
	return c.JSON(http.StatusOK, catalog.Search(p.Q, p.Limit))
}

// Providers handles GET /stocks/providers
func (h *StockHandler) Providers(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Providers())
}

// fail maps any orchestrator failure onto a 404 with a readable cause.
func (h *StockHandler) fail(c echo.Context, what, ticker string, err error) error {
	ev := h.logger.Warn().Str("ticker", ticker).Err(err)
	var se *stock.Error
	if errors.As(err, &se) {
		ev = ev.Str("category", string(se.Category))
	}
	ev.Msgf("could not fetch %s", what)
	return detail(c, http.StatusNotFound, fmt.Sprintf("Could not fetch %s for %s: %s", what, ticker, err.Error()))
}
