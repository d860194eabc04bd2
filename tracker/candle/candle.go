package candle

import (
	"fmt"
	"sync"
	"time"

	"github.com/lukehollenback/tanglism/morph"
	"github.com/shopspring/decimal"
)

var One = decimal.NewFromInt(1)

//
// Candle represents a snapshot of match data.
//
type Candle struct {
	mu       *sync.Mutex
	start    time.Time
	duration time.Duration
	open     decimal.Decimal
	close    decimal.Decimal
	high     decimal.Decimal
	low      decimal.Decimal
	volume   decimal.Decimal
	cnt      decimal.Decimal
}

//
// CreateCandle instantiates a new candle struct from its first trade.
//
func CreateCandle(
	start time.Time,
	duration time.Duration,
	firstAmt decimal.Decimal,
) *Candle {
	return CreateFullCandle(start, duration, firstAmt, firstAmt, firstAmt, firstAmt, decimal.Zero, One)
}

//
// CreateFullCandle instantiates a candle whose values are already known (e.g. one loaded from an
// exchange's historical data).
//
func CreateFullCandle(
	start time.Time,
	duration time.Duration,
	open decimal.Decimal,
	close decimal.Decimal,
	high decimal.Decimal,
	low decimal.Decimal,
	volume decimal.Decimal,
	cnt decimal.Decimal,
) *Candle {
	return &Candle{
		mu:       &sync.Mutex{},
		start:    start,
		duration: duration,
		open:     open,
		close:    close,
		high:     high,
		low:      low,
		volume:   volume,
		cnt:      cnt,
	}
}

//
// Append calculates a given transaction into the candle. The transaction must have occurred within
// the window in time that the candle represents a snapshot of.
//
func (o *Candle) Append(time time.Time, amt decimal.Decimal) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	//
	// Make sure the provided transaction is valid for this candle.
	//
	if time.Before(o.start) || !time.Before(o.start.Add(o.duration)) {
		return fmt.Errorf(
			"cannot append transaction from %s to %s candle starting at %s",
			time, o.duration, o.start,
		)
	}

	//
	// Update the necessary fields of the candle.
	//
	o.close = amt

	if amt.GreaterThan(o.high) {
		o.high = amt
	}

	if amt.LessThan(o.low) {
		o.low = amt
	}

	o.cnt = o.cnt.Add(One)

	return nil
}

func (o *Candle) Start() time.Time {
	return o.start
}

func (o *Candle) Duration() time.Duration {
	return o.duration
}

//
// End returns the first instant that no longer belongs to the candle.
//
func (o *Candle) End() time.Time {
	return o.start.Add(o.duration)
}

func (o *Candle) OpenAmt() decimal.Decimal {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.open
}

func (o *Candle) CloseAmt() decimal.Decimal {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.close
}

func (o *Candle) HighAmt() decimal.Decimal {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.high
}

func (o *Candle) LowAmt() decimal.Decimal {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.low
}

func (o *Candle) Count() decimal.Decimal {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.cnt
}

//
// Morph converts the candle into the shape the parting shaper works with, identified by its
// opening instant.
//
func (o *Candle) Morph() morph.Candle {
	o.mu.Lock()
	defer o.mu.Unlock()

	return morph.Candle{
		Timestamp: o.start,
		High:      o.high,
		Low:       o.low,
	}
}

func (o *Candle) String() string {
	o.mu.Lock()
	defer o.mu.Unlock()

	return fmt.Sprintf(
		"%s %s (O %s, H %s, L %s, C %s, N %s)",
		o.start.Format(time.RFC3339), o.duration, o.open, o.high, o.low, o.close, o.cnt,
	)
}
