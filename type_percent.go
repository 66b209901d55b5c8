package positions

import "fmt"

// Percent is a ratio expressed in percent (79.5 means 79.5%).
type Percent float64

// percentOf returns num/den*100, and false if den is zero.
func percentOf(num, den Money) (Percent, bool) {
	if den.IsZero() {
		return 0, false
	}
	ratio := num.value.Div(den.value).Shift(2)
	return Percent(ratio.InexactFloat64()), true
}

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", p)
}

func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", p)
	if res == "+0.00%" {
		return "-"
	}
	return res
}
