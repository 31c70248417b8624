package model

// Series maps a forecast year to a percentage value. A year is present only
// when the source sheet carried a numeric value in a recognized annual row;
// a missing year is expressed by map absence, never by a zero value.
type Series map[int]float64

// Clone returns a copy of the series.
func (s Series) Clone() Series {
	out := make(Series, len(s))
	for year, value := range s {
		out[year] = value
	}
	return out
}

// DefaultYears returns the default comparison window, 2025 through 2030.
func DefaultYears() []int {
	return []int{2025, 2026, 2027, 2028, 2029, 2030}
}
