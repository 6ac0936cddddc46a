// Package signal turns indicator readings into a discrete trading
// decision with a confidence score and a human-readable rationale.
package signal

import (
	"fmt"
	"strings"

	"QuantDesk/internal/domain/models"
	"QuantDesk/internal/indicator"
)

// MinBars is the minimum history for a meaningful evaluation. Shorter
// inputs produce a zero-score HOLD, not an error.
const MinBars = 50

// Condition weights. A decision requires the leading side to reach
// decisionThreshold and lead by more than decisionMargin.
const (
	weightRSI         = 2.0
	weightCrossover   = 3.0
	weightMomentum    = 1.0
	weightTrend       = 1.5
	weightVolume      = 1.0
	rsiOversold       = 35.0
	rsiOverbought     = 65.0
	volumeStrong      = 1.2
	decisionThreshold = 4.0
	decisionMargin    = 1.0
)

// Config sets indicator periods. Zero values fall back to the defaults.
type Config struct {
	RSIPeriod    int
	MACDFast     int
	MACDSlow     int
	MACDSignal   int
	TrendPeriod  int
	VolumePeriod int
}

// Engine evaluates the combined rule strategy. Stateless and safe for
// concurrent use on independent inputs.
type Engine struct {
	cfg Config
}

// New creates an Engine, filling unset periods with defaults.
func New(cfg Config) *Engine {
	if cfg.RSIPeriod <= 0 {
		cfg.RSIPeriod = indicator.DefaultRSIPeriod
	}
	if cfg.MACDFast <= 0 {
		cfg.MACDFast = indicator.DefaultMACDFast
	}
	if cfg.MACDSlow <= 0 {
		cfg.MACDSlow = indicator.DefaultMACDSlow
	}
	if cfg.MACDSignal <= 0 {
		cfg.MACDSignal = indicator.DefaultMACDSignal
	}
	if cfg.TrendPeriod <= 0 {
		cfg.TrendPeriod = indicator.DefaultTrendPeriod
	}
	if cfg.VolumePeriod <= 0 {
		cfg.VolumePeriod = indicator.DefaultVolumePeriod
	}
	return &Engine{cfg: cfg}
}

// Evaluate scores the most recent bar of the sequence and returns a fresh
// Signal. Fewer than MinBars bars is a reported condition: HOLD, score 0.
func (e *Engine) Evaluate(bars []models.Bar) *models.Signal {
	if len(bars) < MinBars {
		return &models.Signal{
			Kind:          models.SignalHold,
			Score:         0,
			Rationale:     "Insufficient data for analysis.",
			FullRationale: []string{},
		}
	}

	prices := models.Closes(bars)
	volumes := models.Volumes(bars)

	rsi := indicator.RSI(prices, e.cfg.RSIPeriod)
	macd := indicator.MACD(prices, e.cfg.MACDFast, e.cfg.MACDSlow, e.cfg.MACDSignal)
	trend := indicator.SMA(prices, e.cfg.TrendPeriod)
	volRatio := indicator.VolumeRatio(volumes, e.cfg.VolumePeriod)

	var r reading
	r.price = prices[len(prices)-1]
	r.rsi, r.rsiOK = rsi.Last()
	r.histLast, r.histOK = macd.Histogram.Last()
	if prev, ok := macd.Histogram.At(macd.Histogram.Len() - 2); ok {
		r.histPrev = prev
	} else {
		r.histOK = false
	}
	r.sma, r.smaOK = trend.Last()
	r.volRatio, r.volOK = volRatio.Last()

	buyWeight, sellWeight, buyReasons, sellReasons := weigh(r)

	kind := models.SignalHold
	rationale := "Indicators are currently neutral or conflicting."
	switch {
	case buyWeight >= decisionThreshold && buyWeight > sellWeight+decisionMargin:
		kind = models.SignalBuy
		rationale = joinReasons(buyReasons)
	case sellWeight >= decisionThreshold && sellWeight > buyWeight+decisionMargin:
		kind = models.SignalSell
		rationale = joinReasons(sellReasons)
	case buyWeight > sellWeight:
		rationale = "Slight bullish bias, but awaiting stronger confirmation."
	case sellWeight > buyWeight:
		rationale = "Slight bearish bias, but awaiting stronger confirmation."
	}

	full := sellReasons
	if buyWeight > sellWeight {
		full = buyReasons
	}
	if full == nil {
		full = []string{}
	}

	return &models.Signal{
		Kind:          kind,
		Score:         buyWeight - sellWeight,
		Rationale:     rationale,
		FullRationale: full,
		Indicators:    snapshot(rsi, macd.Histogram, trend, volRatio),
	}
}

// reading is the latest-bar indicator state consumed by the weighting
// rules. The OK flags mirror series availability.
type reading struct {
	rsi      float64
	rsiOK    bool
	histPrev float64
	histLast float64
	histOK   bool
	price    float64
	sma      float64
	smaOK    bool
	volRatio float64
	volOK    bool
}

// weigh applies the condition table to a reading and accumulates each
// side's weight with its contributing reasons.
func weigh(r reading) (buyWeight, sellWeight float64, buyReasons, sellReasons []string) {
	// Oscillator extremes.
	if r.rsiOK {
		switch {
		case r.rsi < rsiOversold:
			buyWeight += weightRSI
			buyReasons = append(buyReasons, fmt.Sprintf("RSI is oversold at %.1f", r.rsi))
		case r.rsi > rsiOverbought:
			sellWeight += weightRSI
			sellReasons = append(sellReasons, fmt.Sprintf("RSI is overbought at %.1f", r.rsi))
		}
	}

	// Histogram zero-line cross, comparing the last two values.
	if r.histOK {
		switch {
		case r.histPrev <= 0 && r.histLast > 0:
			buyWeight += weightCrossover
			buyReasons = append(buyReasons, "MACD bullish crossover detected")
		case r.histPrev >= 0 && r.histLast < 0:
			sellWeight += weightCrossover
			sellReasons = append(sellReasons, "MACD bearish crossover detected")
		case r.histLast > 0:
			buyWeight += weightMomentum
		case r.histLast < 0:
			sellWeight += weightMomentum
		}
	}

	// Trend position relative to the long SMA.
	if r.smaOK {
		if r.price > r.sma {
			buyWeight += weightTrend
			buyReasons = append(buyReasons, "Price above SMA 50 (Bullish Trend)")
		} else {
			sellWeight += weightTrend
			sellReasons = append(sellReasons, "Price below SMA 50 (Bearish Trend)")
		}
	}

	// Volume only confirms a side that already strictly leads.
	if r.volOK && r.volRatio > volumeStrong {
		if buyWeight > sellWeight {
			buyWeight += weightVolume
			buyReasons = append(buyReasons, "Strong volume confirming upward move")
		} else if sellWeight > buyWeight {
			sellWeight += weightVolume
			sellReasons = append(sellReasons, "Strong volume confirming downward move")
		}
	}

	return buyWeight, sellWeight, buyReasons, sellReasons
}

// joinReasons concatenates up to two contributing reasons.
func joinReasons(reasons []string) string {
	if len(reasons) > 2 {
		reasons = reasons[:2]
	}
	return strings.Join(reasons, " and ")
}

func snapshot(rsi, hist, sma, vol indicator.Series) models.IndicatorSnapshot {
	return models.IndicatorSnapshot{
		RSI:           lastOrNil(rsi),
		MACDHistogram: lastOrNil(hist),
		SMA50:         lastOrNil(sma),
		VolumeRatio:   lastOrNil(vol),
	}
}

func lastOrNil(s indicator.Series) *float64 {
	if v, ok := s.Last(); ok {
		return &v
	}
	return nil
}
