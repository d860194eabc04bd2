package candle

import (
	"sort"

	"github.com/lukehollenback/tanglism/exchange"
)

//
// Candles holds at most one candle reference per interval – typically the candles that were just
// closed out by a trade.
//
type Candles map[exchange.Interval]*Candle

//
// Intervals returns the intervals present, shortest first.
//
func (o Candles) Intervals() []exchange.Interval {
	ret := make([]exchange.Interval, 0, len(o))

	for interval := range o {
		ret = append(ret, interval)
	}

	sort.Slice(ret, func(i, j int) bool { return ret[i] < ret[j] })

	return ret
}
