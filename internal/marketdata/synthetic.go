package marketdata

import (
	"math"
	"time"

	"QuantDesk/internal/domain/models"
	"QuantDesk/internal/domain/repository"
)

// syntheticDays covers roughly one trading year of daily bars.
const syntheticDays = 250

// Generator produces a deterministic random-walk series per ticker. The
// seed derives from the ticker symbol, so repeated calls for the same
// ticker reproduce an identical series.
type Generator struct {
	clock repository.Clock
}

// NewGenerator creates a Generator using clock for the series end date.
func NewGenerator(clock repository.Clock) *Generator {
	return &Generator{clock: clock}
}

// Bars generates the synthetic daily series ending today.
func (g *Generator) Bars(ticker string) []models.Bar {
	price := basePrice(ticker)
	now := g.clock.Now()

	seed := 0
	for _, b := range []byte(ticker) {
		seed += int(b)
	}
	rng := func() float64 {
		seed = (seed*9301 + 49297) % 233280
		return float64(seed) / 233280
	}

	bars := make([]models.Bar, 0, syntheticDays+1)
	for i := syntheticDays; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		date := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

		change := (rng() - 0.48) * (price * 0.02)
		open := price
		close := price + change
		high := math.Max(open, close) + rng()*(price*0.01)
		low := math.Min(open, close) - rng()*(price*0.01)
		volume := math.Floor((rng()*50 + 50) * 1_000_000)

		bars = append(bars, models.Bar{
			Time:   date,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  close,
			Volume: volume,
		})
		price = close
	}
	return bars
}

func basePrice(ticker string) float64 {
	switch ticker {
	case "TSLA":
		return 240
	case "NVDA":
		return 720
	case "AAPL":
		return 180
	default:
		return 100
	}
}
