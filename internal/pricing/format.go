package pricing

import (
	"math"
	"strconv"
	"strings"
)

// FormatPrice renders an amount in euros the Spanish way: comma decimals,
// dot thousands separators (only from five integer digits up) and a
// trailing symbol, e.g. "12.345,50 €" or "1234,50 €".
func FormatPrice(amount float64) string {
	cents := int64(math.Round(math.Abs(amount) * 100))
	neg := amount < 0 && cents != 0

	whole := strconv.FormatInt(cents/100, 10)
	frac := cents % 100

	var b strings.Builder
	b.Grow(len(whole) + len(whole)/3 + 6)
	if neg {
		b.WriteByte('-')
	}
	if len(whole) < 5 {
		b.WriteString(whole)
	} else {
		lead := len(whole) % 3
		if lead > 0 {
			b.WriteString(whole[:lead])
		}
		for i := lead; i < len(whole); i += 3 {
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(whole[i : i+3])
		}
	}
	b.WriteByte(',')
	if frac < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatInt(frac, 10))
	b.WriteString(" €")
	return b.String()
}
