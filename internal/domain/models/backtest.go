package models

import "time"

// TradeOutcome classifies a completed round-trip.
type TradeOutcome string

const (
	OutcomeWin  TradeOutcome = "Win"
	OutcomeLoss TradeOutcome = "Loss"
)

// Trade is a completed long round-trip recorded by the simulator.
// Created on exit, immutable afterward.
type Trade struct {
	EntryDate  time.Time    `json:"entryDate"`
	ExitDate   time.Time    `json:"exitDate"`
	Direction  string       `json:"direction"` // always LONG
	EntryPrice float64      `json:"entryPrice"`
	ExitPrice  float64      `json:"exitPrice"`
	ReturnPct  float64      `json:"returnPct"`
	Outcome    TradeOutcome `json:"outcome"`
}

// EquityPoint is one sample of the strategy and benchmark equity curves.
type EquityPoint struct {
	Label           string  `json:"label"`
	StrategyEquity  float64 `json:"strategyEquity"`
	BenchmarkEquity float64 `json:"benchmarkEquity"`
}

// Stat is a labeled summary card, mirroring the dashboard presentation.
type Stat struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Sub   string `json:"sub"`
}

// BacktestSummary holds the numeric summary statistics of one run.
type BacktestSummary struct {
	TotalReturnPct float64 `json:"totalReturnPct"`
	WinRatePct     float64 `json:"winRatePct"`
	MaxDrawdownPct float64 `json:"maxDrawdownPct"`
	FinalBalance   float64 `json:"finalBalance"`
	Wins           int     `json:"wins"`
	TotalTrades    int     `json:"totalTrades"`
}

// BacktestReport is the full output of one walk-forward simulation.
// Trades are ordered most-recent-first. With fewer than the minimum
// number of bars all slices are present but empty.
type BacktestReport struct {
	Stats       []Stat          `json:"stats"`
	Summary     BacktestSummary `json:"summary"`
	Trades      []Trade         `json:"trades"`
	EquityCurve []EquityPoint   `json:"equityCurve"`
}
