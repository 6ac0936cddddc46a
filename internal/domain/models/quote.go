package models

// Quote is the latest-price view of a ticker served to the dashboard,
// combined with the current live signal.
type Quote struct {
	Ticker        string  `json:"ticker"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Volume        float64 `json:"volume"`
	Signal        *Signal `json:"signal,omitempty"`
}
