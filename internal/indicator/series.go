package indicator

// Series is an indicator output aligned index-for-index with its input.
// Positions inside the warm-up window of a period carry Valid=false; a
// value is meaningful only where Valid is true. Series length always
// equals input length.
type Series struct {
	Values []float64
	Valid  []bool
}

// newSeries allocates an all-unavailable series of length n.
func newSeries(n int) Series {
	return Series{Values: make([]float64, n), Valid: make([]bool, n)}
}

// set marks index i as available with value v.
func (s Series) set(i int, v float64) {
	s.Values[i] = v
	s.Valid[i] = true
}

// Len returns the series length.
func (s Series) Len() int { return len(s.Values) }

// At returns the value at i and whether it is available.
func (s Series) At(i int) (float64, bool) {
	if i < 0 || i >= len(s.Values) || !s.Valid[i] {
		return 0, false
	}
	return s.Values[i], true
}

// Last returns the final value and whether it is available.
func (s Series) Last() (float64, bool) {
	return s.At(len(s.Values) - 1)
}

// FirstValid returns the index of the first available value, or -1.
func (s Series) FirstValid() int {
	for i, ok := range s.Valid {
		if ok {
			return i
		}
	}
	return -1
}
