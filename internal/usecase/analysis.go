package usecase

import (
	"context"
	"time"

	"QuantDesk/internal/backtest"
	"QuantDesk/internal/domain/models"
	"QuantDesk/internal/domain/repository"
	"QuantDesk/internal/signal"
)

// Analyzer ties the bar source to the signal engine and backtester.
type Analyzer struct {
	bars    repository.BarSource
	engine  *signal.Engine
	sim     *backtest.Simulator
	metrics repository.Metrics
}

func NewAnalyzer(bars repository.BarSource, engine *signal.Engine, sim *backtest.Simulator, metrics repository.Metrics) *Analyzer {
	return &Analyzer{bars: bars, engine: engine, sim: sim, metrics: metrics}
}

// Bars returns the full daily series for ticker.
func (a *Analyzer) Bars(ctx context.Context, ticker string) ([]models.Bar, error) {
	return a.bars.HistoricalBars(ctx, ticker)
}

// Signal evaluates the current decision for ticker.
func (a *Analyzer) Signal(ctx context.Context, ticker string) (*models.Signal, error) {
	bars, err := a.bars.HistoricalBars(ctx, ticker)
	if err != nil {
		return nil, err
	}
	sig := a.engine.Evaluate(bars)
	a.metrics.RecordSignal(string(sig.Kind))
	return sig, nil
}

// Quote assembles the latest price summary with the current signal.
func (a *Analyzer) Quote(ctx context.Context, ticker string) (models.Quote, error) {
	bars, err := a.bars.HistoricalBars(ctx, ticker)
	if err != nil {
		return models.Quote{}, err
	}

	last := bars[len(bars)-1]
	prev := last
	if len(bars) > 1 {
		prev = bars[len(bars)-2]
	}

	sig := a.engine.Evaluate(bars)
	a.metrics.RecordSignal(string(sig.Kind))

	change := last.Close - prev.Close
	changePct := 0.0
	if prev.Close != 0 {
		changePct = change / prev.Close * 100
	}

	return models.Quote{
		Ticker:        ticker,
		Price:         last.Close,
		Change:        change,
		ChangePercent: changePct,
		Volume:        last.Volume,
		Signal:        sig,
	}, nil
}

// Backtest replays the strategy over the ticker's history.
func (a *Analyzer) Backtest(ctx context.Context, ticker string) (models.BacktestReport, error) {
	bars, err := a.bars.HistoricalBars(ctx, ticker)
	if err != nil {
		return models.BacktestReport{}, err
	}

	start := time.Now()
	report := a.sim.Run(bars)
	a.metrics.RecordBacktest(time.Since(start).Seconds(), report.Summary.TotalTrades)
	return report, nil
}
