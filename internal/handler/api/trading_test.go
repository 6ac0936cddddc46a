package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"QuantDesk/internal/backtest"
	"QuantDesk/internal/domain/models"
	"QuantDesk/internal/domain/repository"
	"QuantDesk/internal/ledger"
	icache "QuantDesk/internal/service/cache"
	"QuantDesk/internal/signal"
	"QuantDesk/internal/usecase"
	"QuantDesk/pkg/logger"
	"QuantDesk/pkg/store"

	"github.com/labstack/echo/v4"
)

type fixedBars struct {
	bars []models.Bar
}

func (f *fixedBars) HistoricalBars(context.Context, string) ([]models.Bar, error) {
	return f.bars, nil
}

func (f *fixedBars) CurrentPrice(context.Context, string) (float64, error) {
	return f.bars[len(f.bars)-1].Close, nil
}

type noMetrics struct{}

func (noMetrics) RecordSignal(string)         {}
func (noMetrics) RecordBacktest(float64, int) {}
func (noMetrics) RecordOrder(string, string)  {}
func (noMetrics) RecordFallback(string)       {}

func testServer(t *testing.T) *echo.Echo {
	t.Helper()

	bars := make([]models.Bar, 120)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		price := 100.0 + float64(i)
		bars[i] = models.Bar{Time: t0.AddDate(0, 0, i), Open: price, High: price, Low: price, Close: price, Volume: 1_000_000}
	}
	src := &fixedBars{bars: bars}

	engine := signal.New(signal.Config{})
	sim := backtest.New(engine, backtest.Config{})
	analyzer := usecase.NewAnalyzer(src, engine, sim, noMetrics{})

	clock := repository.ClockFunc(func() time.Time { return t0 })
	l, err := ledger.New(context.Background(), store.NewMemoryStore(), clock)
	if err != nil {
		t.Fatalf("ledger.New: %v", err)
	}
	trading := usecase.NewTrading(l, src, noMetrics{})

	e := echo.New()
	NewTradingHandler(logger.Nop(), analyzer, trading, icache.NewTTLCache()).RegisterRoutes(e)
	return e
}

func doRequest(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func envelopeStatus(t *testing.T, rec *httptest.ResponseRecorder) int {
	t.Helper()
	var envelope struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	return envelope.Status
}

func TestQuote_MissingTickerIsBadRequest(t *testing.T) {
	e := testServer(t)
	rec := doRequest(e, http.MethodGet, "/api/quote", "")

	if got := envelopeStatus(t, rec); got != http.StatusBadRequest {
		t.Fatalf("envelope status = %d, want 400", got)
	}
}

func TestQuote_ReturnsPriceAndSignal(t *testing.T) {
	e := testServer(t)
	rec := doRequest(e, http.MethodGet, "/api/quote?ticker=AAPL", "")

	var envelope struct {
		Status int          `json:"status"`
		Data   models.Quote `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Status != http.StatusOK {
		t.Fatalf("envelope status = %d", envelope.Status)
	}
	if envelope.Data.Price != 219 {
		t.Errorf("price = %v, want 219", envelope.Data.Price)
	}
	if envelope.Data.Signal == nil {
		t.Error("quote missing signal")
	}
}

func TestBacktest_ReturnsReport(t *testing.T) {
	e := testServer(t)
	rec := doRequest(e, http.MethodGet, "/api/backtest?ticker=AAPL", "")

	var envelope struct {
		Status int                   `json:"status"`
		Data   models.BacktestReport `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Status != http.StatusOK {
		t.Fatalf("envelope status = %d", envelope.Status)
	}
	if len(envelope.Data.EquityCurve) != 70 {
		t.Errorf("curve length = %d, want 70", len(envelope.Data.EquityCurve))
	}
	if len(envelope.Data.Stats) != 4 {
		t.Errorf("stat cards = %d, want 4", len(envelope.Data.Stats))
	}
}

func TestPlaceOrder_BuyThenPortfolio(t *testing.T) {
	e := testServer(t)

	rec := doRequest(e, http.MethodPost, "/api/orders",
		`{"ticker":"AAPL","side":"BUY","quantity":2,"price":100}`)
	if got := envelopeStatus(t, rec); got != http.StatusCreated {
		t.Fatalf("order envelope status = %d, want 201 (%s)", got, rec.Body.String())
	}

	rec = doRequest(e, http.MethodGet, "/api/portfolio", "")
	var envelope struct {
		Status int                   `json:"status"`
		Data   usecase.PortfolioView `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(envelope.Data.Positions) != 1 {
		t.Fatalf("positions = %d, want 1", len(envelope.Data.Positions))
	}
	if envelope.Data.Positions[0].CurrentPrice != 219 {
		t.Errorf("marked price = %v, want live 219", envelope.Data.Positions[0].CurrentPrice)
	}
}

func TestPlaceOrder_InsufficientPositionIsUnprocessable(t *testing.T) {
	e := testServer(t)

	rec := doRequest(e, http.MethodPost, "/api/orders",
		`{"ticker":"AAPL","side":"SELL","quantity":5}`)
	if got := envelopeStatus(t, rec); got != http.StatusUnprocessableEntity {
		t.Fatalf("envelope status = %d, want 422 (%s)", got, rec.Body.String())
	}
}

func TestPlaceOrder_InvalidSideIsBadRequest(t *testing.T) {
	e := testServer(t)

	rec := doRequest(e, http.MethodPost, "/api/orders",
		`{"ticker":"AAPL","side":"SHORT","quantity":5}`)
	if got := envelopeStatus(t, rec); got != http.StatusBadRequest {
		t.Fatalf("envelope status = %d, want 400 (%s)", got, rec.Body.String())
	}
}

func TestResetPortfolio(t *testing.T) {
	e := testServer(t)

	doRequest(e, http.MethodPost, "/api/orders",
		`{"ticker":"AAPL","side":"BUY","quantity":2,"price":100}`)
	rec := doRequest(e, http.MethodPost, "/api/portfolio/reset", "")
	if got := envelopeStatus(t, rec); got != http.StatusOK {
		t.Fatalf("reset envelope status = %d", got)
	}

	rec = doRequest(e, http.MethodGet, "/api/portfolio", "")
	var envelope struct {
		Data usecase.PortfolioView `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(envelope.Data.Positions) != 0 {
		t.Errorf("positions after reset = %d, want 0", len(envelope.Data.Positions))
	}
}

func TestHealth(t *testing.T) {
	e := testServer(t)
	rec := doRequest(e, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz code = %d", rec.Code)
	}
}
