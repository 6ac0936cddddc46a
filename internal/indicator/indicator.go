// Package indicator implements the technical indicators consumed by the
// signal engine: SMA, EMA, Wilder RSI, MACD, and a volume confirmation
// ratio. All functions are pure and total: degenerate inputs (period <= 0,
// too-short series) yield an all-unavailable Series rather than an error.
package indicator

// Standard periods used across the engine.
const (
	DefaultRSIPeriod    = 14
	DefaultMACDFast     = 12
	DefaultMACDSlow     = 26
	DefaultMACDSignal   = 9
	DefaultTrendPeriod  = 50
	DefaultVolumePeriod = 20
)

// SMA computes the simple moving average over the trailing period.
// Defined at and after index period-1.
func SMA(prices []float64, period int) Series {
	s := newSeries(len(prices))
	if period <= 0 || len(prices) < period {
		return s
	}
	sum := 0.0
	for i, p := range prices {
		sum += p
		if i >= period {
			sum -= prices[i-period]
		}
		if i >= period-1 {
			s.set(i, sum/float64(period))
		}
	}
	return s
}

// EMA computes the exponential moving average, seeded with the SMA of the
// first period values at index period-1.
func EMA(prices []float64, period int) Series {
	s := newSeries(len(prices))
	if period <= 0 || len(prices) < period {
		return s
	}
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += prices[i]
	}
	prev := sum / float64(period)
	s.set(period-1, prev)

	k := 2.0 / float64(period+1)
	for i := period; i < len(prices); i++ {
		prev = (prices[i]-prev)*k + prev
		s.set(i, prev)
	}
	return s
}

// RSI computes the Wilder-smoothed relative strength index. The first
// average gain/loss is a simple average over the first period changes;
// later averages use avg = (avg*(period-1) + current) / period. Output is
// bounded to [0,100]; a zero average loss maps to exactly 100. Undefined
// for indices <= period.
func RSI(prices []float64, period int) Series {
	s := newSeries(len(prices))
	if period <= 0 || len(prices) <= period {
		return s
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		diff := prices[i] - prices[i-1]
		if diff >= 0 {
			avgGain += diff
		} else {
			avgLoss -= diff
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	s.set(period, rsiValue(avgGain, avgLoss))

	for i := period + 1; i < len(prices); i++ {
		diff := prices[i] - prices[i-1]
		gain, loss := 0.0, 0.0
		if diff >= 0 {
			gain = diff
		} else {
			loss = -diff
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		s.set(i, rsiValue(avgGain, avgLoss))
	}
	return s
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	return 100 - 100/(1+avgGain/avgLoss)
}

// MACDResult bundles the three MACD series, all aligned to the input.
type MACDResult struct {
	Line      Series
	Signal    Series
	Histogram Series
}

// MACD computes line = EMA(fast) - EMA(slow), signal = EMA(signal) of the
// line restricted to its first defined index, and histogram = line - signal
// where both are defined.
func MACD(prices []float64, fast, slow, signal int) MACDResult {
	n := len(prices)
	res := MACDResult{Line: newSeries(n), Signal: newSeries(n), Histogram: newSeries(n)}

	fastEMA := EMA(prices, fast)
	slowEMA := EMA(prices, slow)
	for i := 0; i < n; i++ {
		f, okF := fastEMA.At(i)
		s, okS := slowEMA.At(i)
		if okF && okS {
			res.Line.set(i, f-s)
		}
	}

	first := res.Line.FirstValid()
	if first < 0 {
		return res
	}

	sig := EMA(res.Line.Values[first:], signal)
	for j := 0; j < sig.Len(); j++ {
		v, ok := sig.At(j)
		if !ok {
			continue
		}
		i := first + j
		res.Signal.set(i, v)
		if line, okL := res.Line.At(i); okL {
			res.Histogram.set(i, line-v)
		}
	}
	return res
}

// VolumeRatio divides each volume by its trailing period-bar average.
// Values above 1 indicate above-average participation. Undefined before
// period bars.
func VolumeRatio(volumes []float64, period int) Series {
	s := newSeries(len(volumes))
	if period <= 0 || len(volumes) < period {
		return s
	}
	sum := 0.0
	for i, v := range volumes {
		sum += v
		if i >= period {
			sum -= volumes[i-period]
		}
		if i >= period-1 {
			avg := sum / float64(period)
			if avg != 0 {
				s.set(i, v/avg)
			}
		}
	}
	return s
}
