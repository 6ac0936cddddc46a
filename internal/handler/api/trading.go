// Package api exposes the trading engine over HTTP: quotes, signals,
// backtests, and the paper-trading portfolio.
package api

import (
	"encoding/json"
	"errors"
	"time"

	"QuantDesk/internal/domain/models"
	"QuantDesk/internal/ledger"
	icache "QuantDesk/internal/service/cache"
	"QuantDesk/internal/service/ratelimit"
	"QuantDesk/internal/usecase"
	xhttp "QuantDesk/pkg/http"
	xlogger "QuantDesk/pkg/logger"

	"github.com/labstack/echo/v4"
)

const backtestCacheTTL = 60 * time.Second

// TradingHandler implements the Echo-based HTTP surface.
type TradingHandler struct {
	logger   *xlogger.Logger
	analyzer *usecase.Analyzer
	trading  *usecase.Trading
	cache    icache.BytesCache
	rl       *ratelimit.Limiter
}

func NewTradingHandler(logger *xlogger.Logger, analyzer *usecase.Analyzer, trading *usecase.Trading, cache icache.BytesCache) *TradingHandler {
	return &TradingHandler{
		logger:   logger,
		analyzer: analyzer,
		trading:  trading,
		cache:    cache,
		rl:       ratelimit.New(),
	}
}

func (h *TradingHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/quote", h.Quote)
	g.GET("/bars", h.Bars)
	g.GET("/signal", h.Signal)
	g.GET("/backtest", h.Backtest)
	g.GET("/portfolio", h.Portfolio)
	g.POST("/orders", h.PlaceOrder)
	g.POST("/portfolio/reset", h.ResetPortfolio)

	e.GET("/ws/quotes", h.StreamQuotes)
}

func (h *TradingHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *TradingHandler) Quote(c echo.Context) error {
	req := &models.TickerRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	quote, err := h.analyzer.Quote(c.Request().Context(), req.Ticker)
	if err != nil {
		h.logger.Error("quote usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, quote)
}

func (h *TradingHandler) Bars(c echo.Context) error {
	req := &models.TickerRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	bars, err := h.analyzer.Bars(c.Request().Context(), req.Ticker)
	if err != nil {
		h.logger.Error("bars usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, bars)
}

func (h *TradingHandler) Signal(c echo.Context) error {
	req := &models.TickerRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	sig, err := h.analyzer.Signal(c.Request().Context(), req.Ticker)
	if err != nil {
		h.logger.Error("signal usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, sig)
}

// Backtest is the most expensive endpoint: per-client rate limit plus a
// short response cache keyed by ticker.
func (h *TradingHandler) Backtest(c echo.Context) error {
	req := &models.TickerRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if !h.rl.Allow(c.RealIP()+":backtest", 5, 1) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("backtest rate limit exceeded"))
	}

	cacheKey := "backtest:" + req.Ticker
	if h.cache != nil {
		if b, ok, err := h.cache.GetBytes(cacheKey); err == nil && ok {
			var report models.BacktestReport
			if err := json.Unmarshal(b, &report); err == nil {
				return xhttp.SuccessResponse(c, report)
			}
		}
	}

	report, err := h.analyzer.Backtest(c.Request().Context(), req.Ticker)
	if err != nil {
		h.logger.Error("backtest usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	if h.cache != nil {
		if b, err := json.Marshal(report); err == nil {
			if err := h.cache.SetBytes(cacheKey, b, backtestCacheTTL); err != nil {
				h.logger.Warn("backtest cache write failed", xlogger.Error(err))
			}
		}
	}
	return xhttp.SuccessResponse(c, report)
}

func (h *TradingHandler) Portfolio(c echo.Context) error {
	view := h.trading.Portfolio(c.Request().Context())
	return xhttp.SuccessResponse(c, view)
}

func (h *TradingHandler) PlaceOrder(c echo.Context) error {
	req := &models.OrderRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	entry, err := h.trading.PlaceOrder(c.Request().Context(), req)
	if err != nil {
		return xhttp.AppErrorResponse(c, mapLedgerError(err))
	}
	return xhttp.CreatedResponse(c, entry)
}

func (h *TradingHandler) ResetPortfolio(c echo.Context) error {
	if err := h.trading.Reset(c.Request().Context()); err != nil {
		h.logger.Error("portfolio reset error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "reset"})
}

// mapLedgerError translates ledger policy violations into client errors;
// anything else stays a 500.
func mapLedgerError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return xhttp.UnprocessableError("insufficient funds").WithError(err)
	case errors.Is(err, ledger.ErrInsufficientPosition):
		return xhttp.UnprocessableError("insufficient position").WithError(err)
	case errors.Is(err, ledger.ErrInvalidOrder):
		return xhttp.BadRequestError("invalid order").WithError(err)
	default:
		return err
	}
}
