package models

// SignalKind is the discrete trading decision.
type SignalKind string

const (
	SignalBuy  SignalKind = "BUY"
	SignalSell SignalKind = "SELL"
	SignalHold SignalKind = "HOLD"
)

// IndicatorSnapshot captures the indicator values the decision was based on,
// taken at the most recent bar. A nil field means the indicator was still
// inside its warm-up window, so it serializes as null rather than zero.
type IndicatorSnapshot struct {
	RSI           *float64 `json:"rsi"`
	MACDHistogram *float64 `json:"macdHistogram"`
	SMA50         *float64 `json:"sma50"`
	VolumeRatio   *float64 `json:"volumeRatio"`
}

// Signal is one evaluation of the rule engine against a bar sequence.
// Produced fresh on every evaluation, never mutated.
type Signal struct {
	Kind          SignalKind        `json:"kind"`
	Score         float64           `json:"score"`
	Rationale     string            `json:"rationale"`
	FullRationale []string          `json:"fullRationale"`
	Indicators    IndicatorSnapshot `json:"indicatorSnapshot"`
}
