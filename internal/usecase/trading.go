package usecase

import (
	"context"
	"strings"

	"QuantDesk/internal/domain/models"
	"QuantDesk/internal/domain/repository"
	"QuantDesk/internal/ledger"
)

// Trading executes paper orders against the ledger, filling in the live
// price when the caller does not pin one.
type Trading struct {
	ledger  *ledger.Ledger
	bars    repository.BarSource
	metrics repository.Metrics
}

func NewTrading(l *ledger.Ledger, bars repository.BarSource, metrics repository.Metrics) *Trading {
	return &Trading{ledger: l, bars: bars, metrics: metrics}
}

// PlaceOrder executes req. A zero price means "at market": the current
// price is resolved from the bar source before hitting the ledger.
func (t *Trading) PlaceOrder(ctx context.Context, req *models.OrderRequest) (models.LedgerEntry, error) {
	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	price := req.Price
	if price <= 0 {
		live, err := t.bars.CurrentPrice(ctx, ticker)
		if err != nil {
			return models.LedgerEntry{}, err
		}
		price = live
	}

	var entry models.LedgerEntry
	var err error
	switch req.Side {
	case models.SideBuy:
		entry, err = t.ledger.Buy(ctx, ticker, req.Quantity, price)
	default:
		entry, err = t.ledger.Sell(ctx, ticker, req.Quantity, price)
	}

	status := "accepted"
	if err != nil {
		status = "rejected"
	}
	t.metrics.RecordOrder(string(req.Side), status)
	return entry, err
}

// PortfolioView is the full read model for the portfolio endpoint.
// PortfolioValue is equity plus every open position marked to market.
type PortfolioView struct {
	Stats          models.PortfolioStats `json:"stats"`
	PortfolioValue float64               `json:"portfolioValue"`
	Positions      []models.PositionPnL  `json:"positions"`
	History        []models.LedgerEntry  `json:"history"`
}

// Portfolio marks every open position to the current market price.
// Quote failures degrade to cost basis rather than failing the view.
func (t *Trading) Portfolio(ctx context.Context) PortfolioView {
	state := t.ledger.State()

	prices := make(map[string]float64, len(state.Positions))
	for _, pos := range state.Positions {
		if p, err := t.bars.CurrentPrice(ctx, pos.Ticker); err == nil {
			prices[pos.Ticker] = p
		}
	}

	stats := t.ledger.Stats()
	positions := t.ledger.PositionsWithPnL(prices)

	value := stats.Equity
	for _, pos := range positions {
		value += pos.MarketValue
	}

	return PortfolioView{
		Stats:          stats,
		PortfolioValue: value,
		Positions:      positions,
		History:        state.History,
	}
}

// Reset reinitializes the portfolio to its starting configuration.
func (t *Trading) Reset(ctx context.Context) error {
	return t.ledger.Reset(ctx)
}
