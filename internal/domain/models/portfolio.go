package models

import "time"

// OrderSide distinguishes ledger entry directions.
type OrderSide string

const (
	SideBuy  OrderSide = "BUY"
	SideSell OrderSide = "SELL"
)

// Position is an open holding, unique per ticker. Quantity is always > 0
// while the position exists; it is removed when quantity reaches zero.
type Position struct {
	Ticker      string  `json:"ticker"`
	Quantity    float64 `json:"quantity"`
	AverageCost float64 `json:"averageCost"`
}

// LedgerEntry is one executed paper order. History is append-only.
// RealizedPnL is set on SELL entries only.
type LedgerEntry struct {
	Timestamp     time.Time `json:"timestamp"`
	Ticker        string    `json:"ticker"`
	Side          OrderSide `json:"side"`
	Quantity      float64   `json:"quantity"`
	Price         float64   `json:"price"`
	NotionalTotal float64   `json:"notionalTotal"`
	RealizedPnL   *float64  `json:"realizedPnL,omitempty"`
}

// PortfolioState is the persisted document: the system of record for
// virtual cash and holdings. Serialized as one JSON document under a
// well-known storage key after every mutation.
type PortfolioState struct {
	CashBalance float64       `json:"cashBalance"`
	LockedFunds float64       `json:"lockedFunds"`
	Positions   []Position    `json:"positions"`
	History     []LedgerEntry `json:"history"`
}

// PortfolioStats is the pure-read summary of the ledger.
type PortfolioStats struct {
	CashBalance   float64 `json:"cashBalance"`
	LockedFunds   float64 `json:"lockedFunds"`
	Equity        float64 `json:"equity"`
	PositionCount int     `json:"positionCount"`
	TradeCount    int     `json:"tradeCount"`
}

// PositionPnL is a position enriched with mark-to-market valuation.
type PositionPnL struct {
	Position
	CurrentPrice     float64 `json:"currentPrice"`
	MarketValue      float64 `json:"marketValue"`
	UnrealizedPnL    float64 `json:"unrealizedPnL"`
	UnrealizedPnLPct float64 `json:"unrealizedPnLPct"`
}
