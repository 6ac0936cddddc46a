// Package ledger is the paper-trading system of record: virtual cash, open
// positions with weighted-average cost, and an append-only order history,
// persisted as a single JSON document after every mutation.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"QuantDesk/internal/domain/models"
	"QuantDesk/internal/domain/repository"
	"QuantDesk/pkg/store"
)

const (
	// DefaultStartingCash is the virtual balance of a fresh portfolio.
	DefaultStartingCash = 100_000.0

	// DefaultStateKey is the storage key for the persisted document.
	DefaultStateKey = "portfolio:state"
)

// Option configures a Ledger.
type Option func(*Ledger)

// WithStartingCash overrides the fresh-portfolio balance.
func WithStartingCash(cash float64) Option {
	return func(l *Ledger) { l.startingCash = cash }
}

// WithStateKey overrides the storage key.
func WithStateKey(key string) Option {
	return func(l *Ledger) { l.key = key }
}

// Ledger guards the portfolio state with a mutex; all operations are safe
// for concurrent use. Storage backend and clock are injected.
type Ledger struct {
	mu           sync.Mutex
	state        models.PortfolioState
	store        store.Store
	clock        repository.Clock
	key          string
	startingCash float64
}

// New loads the persisted state from the store, or starts a fresh
// portfolio when no document exists yet.
func New(ctx context.Context, st store.Store, clock repository.Clock, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		store:        st,
		clock:        clock,
		key:          DefaultStateKey,
		startingCash: DefaultStartingCash,
	}
	for _, opt := range opts {
		opt(l)
	}

	raw, err := st.Get(ctx, l.key)
	switch {
	case err == nil:
		if uerr := json.Unmarshal(raw, &l.state); uerr != nil {
			return nil, fmt.Errorf("decode portfolio state: %w", uerr)
		}
	case errors.Is(err, store.ErrNotFound):
		l.state = l.freshState()
		if perr := l.persist(ctx, l.state); perr != nil {
			return nil, fmt.Errorf("persist initial state: %w", perr)
		}
	default:
		return nil, fmt.Errorf("load portfolio state: %w", err)
	}
	return l, nil
}

func (l *Ledger) freshState() models.PortfolioState {
	return models.PortfolioState{
		CashBalance: l.startingCash,
		Positions:   []models.Position{},
		History:     []models.LedgerEntry{},
	}
}

// Buy executes a market buy at price. Cost above the cash balance is
// rejected with ErrInsufficientFunds; the order blends into any existing
// position at weighted-average cost.
func (l *Ledger) Buy(ctx context.Context, ticker string, quantity, price float64) (models.LedgerEntry, error) {
	if quantity <= 0 || price <= 0 {
		return models.LedgerEntry{}, fmt.Errorf("%w: quantity and price must be positive", ErrInvalidOrder)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	cost := quantity * price
	if cost > l.state.CashBalance {
		return models.LedgerEntry{}, fmt.Errorf("%w: need %.2f, have %.2f", ErrInsufficientFunds, cost, l.state.CashBalance)
	}

	// Mutate a copy; the live state only changes once the store accepted
	// the new document.
	next := cloneState(l.state)
	next.CashBalance -= cost

	if idx := findPosition(next.Positions, ticker); idx >= 0 {
		pos := &next.Positions[idx]
		totalCost := pos.AverageCost*pos.Quantity + cost
		pos.Quantity += quantity
		pos.AverageCost = totalCost / pos.Quantity
	} else {
		next.Positions = append(next.Positions, models.Position{
			Ticker:      ticker,
			Quantity:    quantity,
			AverageCost: price,
		})
	}

	entry := models.LedgerEntry{
		Timestamp:     l.clock.Now(),
		Ticker:        ticker,
		Side:          models.SideBuy,
		Quantity:      quantity,
		Price:         price,
		NotionalTotal: cost,
	}
	next.History = append(next.History, entry)

	if err := l.persist(ctx, next); err != nil {
		return models.LedgerEntry{}, err
	}
	l.state = next
	return entry, nil
}

// Sell executes a market sell at price, realizing PnL against the
// position's average cost. Selling more than held is rejected with
// ErrInsufficientPosition.
func (l *Ledger) Sell(ctx context.Context, ticker string, quantity, price float64) (models.LedgerEntry, error) {
	if quantity <= 0 || price <= 0 {
		return models.LedgerEntry{}, fmt.Errorf("%w: quantity and price must be positive", ErrInvalidOrder)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	idx := findPosition(l.state.Positions, ticker)
	if idx < 0 || l.state.Positions[idx].Quantity < quantity {
		held := 0.0
		if idx >= 0 {
			held = l.state.Positions[idx].Quantity
		}
		return models.LedgerEntry{}, fmt.Errorf("%w: selling %.4f of %s, hold %.4f", ErrInsufficientPosition, quantity, ticker, held)
	}

	next := cloneState(l.state)
	pos := &next.Positions[idx]

	proceeds := quantity * price
	realized := (price - pos.AverageCost) * quantity
	next.CashBalance += proceeds

	pos.Quantity -= quantity
	if pos.Quantity == 0 {
		next.Positions = append(next.Positions[:idx], next.Positions[idx+1:]...)
	}

	entry := models.LedgerEntry{
		Timestamp:     l.clock.Now(),
		Ticker:        ticker,
		Side:          models.SideSell,
		Quantity:      quantity,
		Price:         price,
		NotionalTotal: proceeds,
		RealizedPnL:   &realized,
	}
	next.History = append(next.History, entry)

	if err := l.persist(ctx, next); err != nil {
		return models.LedgerEntry{}, err
	}
	l.state = next
	return entry, nil
}

// Reset restores the starting configuration and persists it.
func (l *Ledger) Reset(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.freshState()
	if err := l.persist(ctx, next); err != nil {
		return err
	}
	l.state = next
	return nil
}

// State returns a deep copy of the current portfolio state.
func (l *Ledger) State() models.PortfolioState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return cloneState(l.state)
}

// Stats is a pure read of the ledger summary. Equity is cash plus locked
// funds; holdings are valued separately through PositionsWithPnL.
func (l *Ledger) Stats() models.PortfolioStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	return models.PortfolioStats{
		CashBalance:   l.state.CashBalance,
		LockedFunds:   l.state.LockedFunds,
		Equity:        l.state.CashBalance + l.state.LockedFunds,
		PositionCount: len(l.state.Positions),
		TradeCount:    len(l.state.History),
	}
}

// PositionsWithPnL marks every open position to market using the prices
// map. Tickers without a quote report zero unrealized PnL at cost.
func (l *Ledger) PositionsWithPnL(prices map[string]float64) []models.PositionPnL {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.PositionPnL, 0, len(l.state.Positions))
	for _, pos := range l.state.Positions {
		price := pos.AverageCost
		if p, ok := prices[pos.Ticker]; ok && p > 0 {
			price = p
		}
		costBasis := pos.Quantity * pos.AverageCost
		value := pos.Quantity * price

		pnl := models.PositionPnL{
			Position:      pos,
			CurrentPrice:  price,
			MarketValue:   value,
			UnrealizedPnL: value - costBasis,
		}
		if costBasis > 0 {
			pnl.UnrealizedPnLPct = (value - costBasis) / costBasis * 100
		}
		out = append(out, pnl)
	}
	return out
}

func (l *Ledger) persist(ctx context.Context, state models.PortfolioState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode portfolio state: %w", err)
	}
	if err := l.store.Set(ctx, l.key, raw); err != nil {
		return fmt.Errorf("persist portfolio state: %w", err)
	}
	return nil
}

func findPosition(positions []models.Position, ticker string) int {
	for i, pos := range positions {
		if pos.Ticker == ticker {
			return i
		}
	}
	return -1
}

func cloneState(s models.PortfolioState) models.PortfolioState {
	cp := s
	cp.Positions = make([]models.Position, len(s.Positions))
	copy(cp.Positions, s.Positions)
	cp.History = make([]models.LedgerEntry, len(s.History))
	copy(cp.History, s.History)
	return cp
}
