package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/mauv0809/stockcache/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedRefresher struct {
	results map[string]*models.StockResponse
	calls   []getCall
}

func (r *scriptedRefresher) Get(_ context.Context, ticker string, force bool) (*models.StockResponse, error) {
	r.calls = append(r.calls, getCall{ticker, force})
	if resp, ok := r.results[ticker]; ok {
		return resp, nil
	}
	return nil, errors.New("no data")
}

type fakeStats struct {
	summaries, earnings int
	err                 error
}

func (s fakeStats) Stats(context.Context) (int, int, error) {
	return s.summaries, s.earnings, s.err
}

func newAdminServer(h *AdminHandler) *echo.Echo {
	e := echo.New()
	g := e.Group("/admin")
	g.POST("/refresh", h.RefreshTickers)
	g.GET("/cache/status", h.CacheStatus)
	return e
}

func TestRefreshTickers(t *testing.T) {
	stale := sampleResponse()
	stale.Warning = "Using 30.0 hour old data - API temporarily unavailable"
	r := &scriptedRefresher{results: map[string]*models.StockResponse{
		"AAPL": sampleResponse(),
		"MSFT": stale,
	}}
	e := newAdminServer(NewAdminHandler(r, fakeStats{}, zerolog.Nop()))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/refresh?ticker=aapl,%20msft,,zzzz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AdminResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, []string{"MSFT", "ZZZZ"}, resp.Failed)
	assert.Equal(t, "Refreshed 1 of 3 tickers", resp.Message)
	assert.Equal(t, []getCall{{"AAPL", true}, {"MSFT", true}, {"ZZZZ", true}}, r.calls)
}

func TestRefreshTickersAllSucceed(t *testing.T) {
	r := &scriptedRefresher{results: map[string]*models.StockResponse{"AAPL": sampleResponse()}}
	e := newAdminServer(NewAdminHandler(r, fakeStats{}, zerolog.Nop()))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/refresh?ticker=AAPL", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AdminResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Failed)
	assert.NotEmpty(t, resp.Elapsed)
}

func TestRefreshTickersRejects(t *testing.T) {
	many := make([]string, maxRefreshBatch+1)
	for i := range many {
		many[i] = fmt.Sprintf("T%d", i)
	}
	tests := []struct {
		name  string
		query string
		msg   string
	}{
		{"missing", "", "ticker parameter is required"},
		{"blank", "?ticker=,,", "ticker parameter is required"},
		{"invalid", "?ticker=AAPL,BAD$", `invalid ticker "BAD$"`},
		{"too many", "?ticker=" + strings.Join(many, ","), "at most 25 tickers per request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &scriptedRefresher{}
			e := newAdminServer(NewAdminHandler(r, fakeStats{}, zerolog.Nop()))

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/refresh"+tt.query, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp AdminResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.msg, resp.Message)
			assert.Empty(t, r.calls)
		})
	}
}

func TestCacheStatus(t *testing.T) {
	e := newAdminServer(NewAdminHandler(&scriptedRefresher{}, fakeStats{summaries: 3, earnings: 24}, zerolog.Nop()))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/cache/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"summaries":3,"earnings":24}`, rec.Body.String())

	e = newAdminServer(NewAdminHandler(&scriptedRefresher{}, fakeStats{err: errors.New("down")}, zerolog.Nop()))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/cache/status", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
