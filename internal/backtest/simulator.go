// Package backtest replays the signal engine over a growing prefix of
// historical bars (walk-forward) and reports trades, an equity curve,
// and summary statistics.
package backtest

import (
	"fmt"

	"QuantDesk/internal/domain/models"
)

// Evaluator produces a trading decision for a bar sequence. Satisfied by
// *signal.Engine; tests substitute scripted implementations.
type Evaluator interface {
	Evaluate(bars []models.Bar) *models.Signal
}

// Config tunes the simulation. Zero values fall back to defaults.
type Config struct {
	InitialBalance float64 // virtual notional, default 10_000
	MinBars        int     // below this the report is empty, default 100
	StartIndex     int     // first evaluated bar, default 50
}

// Simulator is a two-state (flat/long) walk-forward backtester. Each step
// re-evaluates the engine against the prefix ending at the current bar,
// so no decision ever sees future data.
type Simulator struct {
	eval Evaluator
	cfg  Config
}

// New creates a Simulator, filling unset config fields with defaults.
func New(eval Evaluator, cfg Config) *Simulator {
	if cfg.InitialBalance <= 0 {
		cfg.InitialBalance = 10_000
	}
	if cfg.MinBars <= 0 {
		cfg.MinBars = 100
	}
	if cfg.StartIndex <= 0 {
		cfg.StartIndex = 50
	}
	return &Simulator{eval: eval, cfg: cfg}
}

// Run simulates the strategy over bars. Fewer than MinBars bars yields an
// empty report. A position still open at the final bar stays open: it is
// marked-to-market in the last equity point but never force-closed and
// never counted as a win or loss.
func (s *Simulator) Run(bars []models.Bar) models.BacktestReport {
	if len(bars) < s.cfg.MinBars {
		return models.BacktestReport{
			Stats:       []models.Stat{},
			Trades:      []models.Trade{},
			EquityCurve: []models.EquityPoint{},
		}
	}

	initial := s.cfg.InitialBalance
	balance := initial
	long := false
	var entryPrice float64
	var entryDate = bars[0].Time

	trades := make([]models.Trade, 0, 16)
	curve := make([]models.EquityPoint, 0, len(bars)-s.cfg.StartIndex)
	benchmarkBase := bars[s.cfg.StartIndex].Close

	for i := s.cfg.StartIndex; i < len(bars); i++ {
		sig := s.eval.Evaluate(bars[:i+1])
		price := bars[i].Close
		date := bars[i].Time

		switch {
		case sig.Kind == models.SignalBuy && !long:
			long = true
			entryPrice = price
			entryDate = date
		case sig.Kind == models.SignalSell && long:
			returnPct := (price - entryPrice) / entryPrice
			// Fixed notional: initialBalance/entryPrice shares per trade.
			balance += (price - entryPrice) * (initial / entryPrice)

			outcome := models.OutcomeLoss
			if returnPct > 0 {
				outcome = models.OutcomeWin
			}
			trades = append(trades, models.Trade{
				EntryDate:  entryDate,
				ExitDate:   date,
				Direction:  "LONG",
				EntryPrice: entryPrice,
				ExitPrice:  price,
				ReturnPct:  returnPct * 100,
				Outcome:    outcome,
			})
			long = false
		}

		equity := balance
		if long {
			equity += (price - entryPrice) * (initial / entryPrice)
		}
		curve = append(curve, models.EquityPoint{
			Label:           date.Format("2006-01-02"),
			StrategyEquity:  equity,
			BenchmarkEquity: price / benchmarkBase * initial,
		})
	}

	summary := summarize(initial, balance, trades, curve)

	// Most recent trade first.
	reversed := make([]models.Trade, len(trades))
	for i, tr := range trades {
		reversed[len(trades)-1-i] = tr
	}

	return models.BacktestReport{
		Stats:       statCards(initial, summary),
		Summary:     summary,
		Trades:      reversed,
		EquityCurve: curve,
	}
}

func summarize(initial, balance float64, trades []models.Trade, curve []models.EquityPoint) models.BacktestSummary {
	wins := 0
	for _, tr := range trades {
		if tr.Outcome == models.OutcomeWin {
			wins++
		}
	}
	winRate := 0.0
	if len(trades) > 0 {
		winRate = float64(wins) / float64(len(trades)) * 100
	}

	// Largest peak-to-trough decline of the strategy curve.
	peak := initial
	maxDD := 0.0
	for _, p := range curve {
		if p.StrategyEquity > peak {
			peak = p.StrategyEquity
		}
		if dd := (peak - p.StrategyEquity) / peak; dd > maxDD {
			maxDD = dd
		}
	}

	return models.BacktestSummary{
		TotalReturnPct: (balance - initial) / initial * 100,
		WinRatePct:     winRate,
		MaxDrawdownPct: maxDD * 100,
		FinalBalance:   balance,
		Wins:           wins,
		TotalTrades:    len(trades),
	}
}

func statCards(initial float64, s models.BacktestSummary) []models.Stat {
	return []models.Stat{
		{Label: "Total Return", Value: fmt.Sprintf("%.1f%%", s.TotalReturnPct), Sub: "Strategy vs Benchmark"},
		{Label: "Win Rate", Value: fmt.Sprintf("%.1f%%", s.WinRatePct), Sub: fmt.Sprintf("%d wins out of %d", s.Wins, s.TotalTrades)},
		{Label: "Max Drawdown", Value: fmt.Sprintf("%.1f%%", s.MaxDrawdownPct), Sub: "Peak to trough decline"},
		{Label: "Final Balance", Value: fmt.Sprintf("$%.2f", s.FinalBalance), Sub: fmt.Sprintf("Starting: $%.0f", initial)},
	}
}
