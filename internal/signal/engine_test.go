package signal

import (
	"math"
	"testing"
	"time"

	"QuantDesk/internal/domain/models"
	"QuantDesk/internal/indicator"
)

func barsFrom(prices, volumes []float64) []models.Bar {
	bars := make([]models.Bar, len(prices))
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, p := range prices {
		bars[i] = models.Bar{
			Time:   t0.AddDate(0, 0, i),
			Open:   p,
			High:   p * 1.01,
			Low:    p * 0.99,
			Close:  p,
			Volume: volumes[i],
		}
	}
	return bars
}

func linear(n int, start, step, volume float64) []models.Bar {
	prices := make([]float64, n)
	vols := make([]float64, n)
	for i := range prices {
		prices[i] = start + step*float64(i)
		vols[i] = volume
	}
	return barsFrom(prices, vols)
}

// vShape builds a down leg then an up leg, with heavier volume on the
// second leg.
func vShape(leg int, top, step, legVolume float64) []models.Bar {
	prices := make([]float64, 0, 2*leg)
	vols := make([]float64, 0, 2*leg)
	for i := 0; i < leg; i++ {
		prices = append(prices, top-step*float64(i))
		vols = append(vols, 1_000_000)
	}
	bottom := prices[len(prices)-1]
	for i := 1; i <= leg; i++ {
		prices = append(prices, bottom+step*float64(i))
		vols = append(vols, legVolume)
	}
	return barsFrom(prices, vols)
}

func TestEvaluate_InsufficientData(t *testing.T) {
	sig := New(Config{}).Evaluate(linear(MinBars-1, 100, 1, 1_000_000))

	if sig.Kind != models.SignalHold {
		t.Fatalf("Kind = %q, want HOLD", sig.Kind)
	}
	if sig.Score != 0 {
		t.Errorf("Score = %v, want 0", sig.Score)
	}
	if sig.Rationale != "Insufficient data for analysis." {
		t.Errorf("Rationale = %q", sig.Rationale)
	}
	if sig.FullRationale == nil || len(sig.FullRationale) != 0 {
		t.Errorf("FullRationale = %v, want empty slice", sig.FullRationale)
	}
}

func TestEvaluate_SteadyUptrendHoldsWithBullishBias(t *testing.T) {
	// Monotonic rise: RSI pins at 100 (overbought, sell +2) while momentum
	// and trend favor the buy side (+1 and +1.5). Neither side reaches the
	// decision threshold.
	sig := New(Config{}).Evaluate(linear(120, 100, 1, 1_000_000))

	if sig.Kind != models.SignalHold {
		t.Fatalf("Kind = %q, want HOLD", sig.Kind)
	}
	if math.Abs(sig.Score-0.5) > 1e-9 {
		t.Errorf("Score = %v, want 0.5", sig.Score)
	}
	if sig.Rationale != "Slight bullish bias, but awaiting stronger confirmation." {
		t.Errorf("Rationale = %q", sig.Rationale)
	}
	if sig.Indicators.RSI == nil || *sig.Indicators.RSI != 100 {
		t.Errorf("snapshot RSI = %v, want 100", sig.Indicators.RSI)
	}
	if sig.Indicators.MACDHistogram == nil || *sig.Indicators.MACDHistogram <= 0 {
		t.Errorf("snapshot histogram = %v, want positive", sig.Indicators.MACDHistogram)
	}
}

func TestEvaluate_SteadyDowntrendHoldsWithBearishBias(t *testing.T) {
	sig := New(Config{}).Evaluate(linear(120, 300, -1, 1_000_000))

	if sig.Kind != models.SignalHold {
		t.Fatalf("Kind = %q, want HOLD", sig.Kind)
	}
	if math.Abs(sig.Score-(-0.5)) > 1e-9 {
		t.Errorf("Score = %v, want -0.5", sig.Score)
	}
	if sig.Rationale != "Slight bearish bias, but awaiting stronger confirmation." {
		t.Errorf("Rationale = %q", sig.Rationale)
	}
}

func TestEvaluate_ReversalFromSelloffProducesBuy(t *testing.T) {
	// A V-shaped recovery on heavy volume must trigger a BUY on at least
	// one prefix: the histogram crossover (+3) plus volume confirmation
	// clears the threshold while the sell side holds only the trend weight.
	bars := vShape(60, 200, 1, 5_000_000)
	eng := New(Config{})

	sawBuy := false
	for n := MinBars; n <= len(bars); n++ {
		sig := eng.Evaluate(bars[:n])
		if sig.Kind == models.SignalBuy {
			sawBuy = true
			if sig.Score < 1 {
				t.Errorf("BUY at prefix %d with weak score %v", n, sig.Score)
			}
			if len(sig.FullRationale) == 0 {
				t.Errorf("BUY at prefix %d lacks rationale entries", n)
			}
			break
		}
	}
	if !sawBuy {
		t.Fatal("no BUY produced anywhere on the recovery leg")
	}
}

func TestEvaluate_BreakdownFromRallyProducesSell(t *testing.T) {
	// Mirror case: rally then heavy-volume breakdown.
	bars := vShape(60, 200, 1, 5_000_000)
	for i := range bars {
		// Reflect prices around 200 to invert the shape.
		p := 400 - bars[i].Close
		bars[i].Open = p
		bars[i].High = p * 1.01
		bars[i].Low = p * 0.99
		bars[i].Close = p
	}
	eng := New(Config{})

	sawSell := false
	for n := MinBars; n <= len(bars); n++ {
		sig := eng.Evaluate(bars[:n])
		if sig.Kind == models.SignalSell {
			sawSell = true
			if sig.Score > -1 {
				t.Errorf("SELL at prefix %d with weak score %v", n, sig.Score)
			}
			break
		}
	}
	if !sawSell {
		t.Fatal("no SELL produced anywhere on the breakdown leg")
	}
}

func TestWeigh_ConditionTable(t *testing.T) {
	cases := []struct {
		name     string
		r        reading
		wantBuy  float64
		wantSell float64
	}{
		{
			name: "oversold crossover trend and volume all align",
			r: reading{
				rsi: 20, rsiOK: true,
				histPrev: -0.1, histLast: 0.1, histOK: true,
				price: 105, sma: 100, smaOK: true,
				volRatio: 1.5, volOK: true,
			},
			wantBuy:  7.5, // 2 + 3 + 1.5 + 1
			wantSell: 0,
		},
		{
			name: "overbought breakdown",
			r: reading{
				rsi: 80, rsiOK: true,
				histPrev: 0.2, histLast: -0.05, histOK: true,
				price: 95, sma: 100, smaOK: true,
				volRatio: 1.3, volOK: true,
			},
			wantBuy:  0,
			wantSell: 7.5,
		},
		{
			name: "momentum without crossover",
			r: reading{
				histPrev: 0.1, histLast: 0.2, histOK: true,
				price: 105, sma: 100, smaOK: true,
			},
			wantBuy:  2.5, // 1 momentum + 1.5 trend
			wantSell: 0,
		},
		{
			name: "volume confirms the narrowly leading side",
			r: reading{
				rsi: 20, rsiOK: true,
				histPrev: 0.1, histLast: -0.1, histOK: true,
				price: 105, sma: 100, smaOK: true,
				volRatio: 2.0, volOK: true,
			},
			// Buy 2 + 1.5 against sell 3 leads by only 0.5 before volume;
			// the leading buy side still collects the confirmation.
			wantBuy:  4.5,
			wantSell: 3,
		},
		{
			name:     "no readings at all",
			r:        reading{},
			wantBuy:  0,
			wantSell: 0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			buy, sell, buyReasons, sellReasons := weigh(tc.r)
			if math.Abs(buy-tc.wantBuy) > 1e-9 {
				t.Errorf("buy weight = %v, want %v", buy, tc.wantBuy)
			}
			if math.Abs(sell-tc.wantSell) > 1e-9 {
				t.Errorf("sell weight = %v, want %v", sell, tc.wantSell)
			}
			if tc.wantBuy == 0 && len(buyReasons) != 0 {
				t.Errorf("unexpected buy reasons %v", buyReasons)
			}
			if tc.wantSell == 0 && len(sellReasons) != 0 {
				t.Errorf("unexpected sell reasons %v", sellReasons)
			}
		})
	}
}

func TestSnapshot_WarmupIndicatorsAreNil(t *testing.T) {
	prices := []float64{1, 2, 3}
	warmup := indicator.SMA(prices, 50)
	defined := indicator.SMA(prices, 2)

	snap := snapshot(warmup, warmup, defined, warmup)
	if snap.RSI != nil || snap.MACDHistogram != nil || snap.VolumeRatio != nil {
		t.Errorf("warm-up indicators should be nil, got %+v", snap)
	}
	if snap.SMA50 == nil || *snap.SMA50 != 2.5 {
		t.Errorf("SMA50 = %v, want 2.5", snap.SMA50)
	}
}

func TestEvaluate_ScoreMatchesLeadingSideRationale(t *testing.T) {
	bars := vShape(60, 200, 1, 5_000_000)
	eng := New(Config{})

	for n := MinBars; n <= len(bars); n++ {
		sig := eng.Evaluate(bars[:n])
		switch {
		case sig.Score > 0 && sig.Kind == models.SignalSell:
			t.Fatalf("prefix %d: positive score %v with SELL", n, sig.Score)
		case sig.Score < 0 && sig.Kind == models.SignalBuy:
			t.Fatalf("prefix %d: negative score %v with BUY", n, sig.Score)
		}
	}
}
