package repository

import (
	"context"
	"time"

	"QuantDesk/internal/domain/models"
)

// BarSource supplies historical daily bars, chronologically ascending.
// Implementations absorb upstream failures by falling back to a
// deterministic synthetic series; callers always get a usable sequence.
type BarSource interface {
	HistoricalBars(ctx context.Context, ticker string) ([]models.Bar, error)
	CurrentPrice(ctx context.Context, ticker string) (float64, error)
}

// Clock abstracts wall-clock reads so ledger timestamps are testable.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// Metrics records operational counters for the trading core.
type Metrics interface {
	RecordSignal(decision string)
	RecordBacktest(seconds float64, trades int)
	RecordOrder(side, status string)
	RecordFallback(ticker string)
}
