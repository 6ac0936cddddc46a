package ledger

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"QuantDesk/internal/domain/repository"
	"QuantDesk/pkg/store"
)

var fixedClock = repository.ClockFunc(func() time.Time {
	return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
})

func newTestLedger(t *testing.T) (*Ledger, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	l, err := New(context.Background(), st, fixedClock)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return l, st
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNew_FreshPortfolio(t *testing.T) {
	l, _ := newTestLedger(t)

	state := l.State()
	if !approx(state.CashBalance, DefaultStartingCash) {
		t.Errorf("cash = %v, want %v", state.CashBalance, DefaultStartingCash)
	}
	if len(state.Positions) != 0 || len(state.History) != 0 {
		t.Errorf("fresh portfolio not empty: %+v", state)
	}
}

func TestBuyThenSell_RealizesPnLAndRemovesPosition(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	if _, err := l.Buy(ctx, "AAPL", 10, 100); err != nil {
		t.Fatalf("Buy: %v", err)
	}
	entry, err := l.Sell(ctx, "AAPL", 10, 110)
	if err != nil {
		t.Fatalf("Sell: %v", err)
	}

	if entry.RealizedPnL == nil || !approx(*entry.RealizedPnL, 100) {
		t.Errorf("RealizedPnL = %v, want 100", entry.RealizedPnL)
	}
	state := l.State()
	if len(state.Positions) != 0 {
		t.Errorf("position not removed at zero quantity: %+v", state.Positions)
	}
	if !approx(state.CashBalance, DefaultStartingCash+100) {
		t.Errorf("cash = %v, want %v", state.CashBalance, DefaultStartingCash+100)
	}
	if len(state.History) != 2 {
		t.Errorf("history length = %d, want 2", len(state.History))
	}
	if state.History[0].Timestamp != fixedClock.Now() {
		t.Errorf("timestamp = %v, want injected clock time", state.History[0].Timestamp)
	}
}

func TestBuy_WeightedAverageCost(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	if _, err := l.Buy(ctx, "NVDA", 10, 100); err != nil {
		t.Fatalf("first Buy: %v", err)
	}
	if _, err := l.Buy(ctx, "NVDA", 30, 200); err != nil {
		t.Fatalf("second Buy: %v", err)
	}

	state := l.State()
	if len(state.Positions) != 1 {
		t.Fatalf("positions = %d, want 1", len(state.Positions))
	}
	pos := state.Positions[0]
	// (10*100 + 30*200) / 40 = 175
	if !approx(pos.AverageCost, 175) || !approx(pos.Quantity, 40) {
		t.Errorf("position = %+v, want qty 40 at avg 175", pos)
	}
}

func TestBuy_InsufficientFundsLeavesStateUnchanged(t *testing.T) {
	l, _ := newTestLedger(t)
	before := l.State()

	_, err := l.Buy(context.Background(), "TSLA", 1000, 500)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}

	after := l.State()
	if !approx(after.CashBalance, before.CashBalance) || len(after.History) != 0 {
		t.Errorf("rejected order mutated state: %+v", after)
	}
}

func TestSell_InsufficientPositionLeavesStateUnchanged(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	if _, err := l.Buy(ctx, "AAPL", 5, 100); err != nil {
		t.Fatalf("Buy: %v", err)
	}
	before := l.State()

	_, err := l.Sell(ctx, "AAPL", 10, 110)
	if !errors.Is(err, ErrInsufficientPosition) {
		t.Fatalf("err = %v, want ErrInsufficientPosition", err)
	}
	if _, err := l.Sell(ctx, "MSFT", 1, 100); !errors.Is(err, ErrInsufficientPosition) {
		t.Fatalf("unknown ticker err = %v, want ErrInsufficientPosition", err)
	}

	after := l.State()
	if !approx(after.CashBalance, before.CashBalance) || len(after.History) != len(before.History) {
		t.Errorf("rejected sell mutated state: %+v", after)
	}
}

func TestInvalidOrderRejected(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	for _, tc := range []struct{ qty, price float64 }{
		{0, 100}, {-1, 100}, {10, 0}, {10, -5},
	} {
		if _, err := l.Buy(ctx, "AAPL", tc.qty, tc.price); !errors.Is(err, ErrInvalidOrder) {
			t.Errorf("Buy(%v, %v) err = %v, want ErrInvalidOrder", tc.qty, tc.price, err)
		}
	}
}

func TestStatePersistsAcrossRestart(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	l1, err := New(ctx, st, fixedClock)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := l1.Buy(ctx, "AAPL", 10, 180); err != nil {
		t.Fatalf("Buy: %v", err)
	}

	l2, err := New(ctx, st, fixedClock)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	state := l2.State()
	if len(state.Positions) != 1 || !approx(state.Positions[0].Quantity, 10) {
		t.Errorf("reloaded positions = %+v", state.Positions)
	}
	if !approx(state.CashBalance, DefaultStartingCash-1800) {
		t.Errorf("reloaded cash = %v", state.CashBalance)
	}
}

// failingStore accepts the initial write and rejects everything after.
type failingStore struct {
	*store.MemoryStore
	writes int
}

func (f *failingStore) Set(ctx context.Context, key string, value []byte) error {
	f.writes++
	if f.writes > 1 {
		return errors.New("backend down")
	}
	return f.MemoryStore.Set(ctx, key, value)
}

func TestPersistFailureLeavesStateUnchanged(t *testing.T) {
	st := &failingStore{MemoryStore: store.NewMemoryStore()}
	ctx := context.Background()

	l, err := New(ctx, st, fixedClock)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = l.Buy(ctx, "AAPL", 10, 100)
	if err == nil {
		t.Fatal("expected persist failure")
	}
	state := l.State()
	if !approx(state.CashBalance, DefaultStartingCash) || len(state.Positions) != 0 {
		t.Errorf("failed persist mutated state: %+v", state)
	}
}

func TestStatsAndPositionsWithPnL(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	if _, err := l.Buy(ctx, "AAPL", 10, 100); err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if _, err := l.Buy(ctx, "NVDA", 2, 700); err != nil {
		t.Fatalf("Buy: %v", err)
	}

	stats := l.Stats()
	// Equity is cash plus locked funds only; holdings stay out of it.
	wantEquity := DefaultStartingCash - 1000 - 1400
	if !approx(stats.Equity, wantEquity) {
		t.Errorf("equity = %v, want cash+locked %v", stats.Equity, wantEquity)
	}
	if !approx(stats.Equity, stats.CashBalance+stats.LockedFunds) {
		t.Errorf("equity = %v, want %v + %v", stats.Equity, stats.CashBalance, stats.LockedFunds)
	}
	if stats.PositionCount != 2 || stats.TradeCount != 2 {
		t.Errorf("counts = %d/%d, want 2/2", stats.PositionCount, stats.TradeCount)
	}

	prices := map[string]float64{"AAPL": 120}

	pnl := l.PositionsWithPnL(prices)
	if len(pnl) != 2 {
		t.Fatalf("positions = %d, want 2", len(pnl))
	}
	for _, p := range pnl {
		switch p.Ticker {
		case "AAPL":
			if !approx(p.UnrealizedPnL, 200) || !approx(p.UnrealizedPnLPct, 20) {
				t.Errorf("AAPL pnl = %+v", p)
			}
		case "NVDA":
			if !approx(p.UnrealizedPnL, 0) {
				t.Errorf("NVDA pnl = %+v", p)
			}
		}
	}
}

func TestReset(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	if _, err := l.Buy(ctx, "AAPL", 10, 100); err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if err := l.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	state := l.State()
	if !approx(state.CashBalance, DefaultStartingCash) || len(state.Positions) != 0 || len(state.History) != 0 {
		t.Errorf("reset state = %+v", state)
	}
}
