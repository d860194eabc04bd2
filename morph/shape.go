package morph

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

//
// Candle is a single raw K-line as far as morphology is concerned. Only the extremes matter, so
// open and close are not carried. It is assumed (but never validated) that High >= Low.
//
type Candle struct {
	Timestamp time.Time
	High      decimal.Decimal
	Low       decimal.Decimal
}

//
// MergedCandle is the result of folding one or more consecutive, mutually-inclusive candles into
// a single bar. Extremum is the timestamp of the constituent whose range came to dominate the
// merge.
//
type MergedCandle struct {
	Start    time.Time
	End      time.Time
	Extremum time.Time
	High     decimal.Decimal
	Low      decimal.Decimal
	Count    int
}

//
// Parting is a detected top or bottom fractal spanning three merged candles.
//
type Parting struct {
	Start         time.Time
	End           time.Time
	Extremum      time.Time
	ExtremumPrice decimal.Decimal
	Count         int
	Top           bool
}

//
// Kind returns "top" or "bottom".
//
func (o Parting) Kind() string {
	if o.Top {
		return "top"
	}

	return "bottom"
}

func (o Parting) String() string {
	return fmt.Sprintf(
		"%s %s @ %s (%s → %s, %d candles)",
		o.Kind(), o.ExtremumPrice, o.Extremum.Format(time.RFC3339), o.Start.Format(time.RFC3339),
		o.End.Format(time.RFC3339), o.Count,
	)
}

//
// NewMergedCandle lifts a single raw candle into the merged representation.
//
func NewMergedCandle(k Candle) MergedCandle {
	return MergedCandle{
		Start:    k.Timestamp,
		End:      k.Timestamp,
		Extremum: k.Timestamp,
		High:     k.High,
		Low:      k.Low,
		Count:    1,
	}
}

//
// MergeInclusive folds k into ck if one of their [low, high] ranges contains the other. Equal
// bounds count as containment. Under an upward trend both bounds move to the larger of the pair,
// under a downward trend both move to the smaller. A false sentinel is returned when the two are
// independent.
//
func MergeInclusive(ck MergedCandle, k Candle, upward bool) (MergedCandle, bool) {
	var extremum time.Time

	if ck.High.GreaterThanOrEqual(k.High) && ck.Low.LessThanOrEqual(k.Low) {
		extremum = ck.Extremum
	} else if k.High.GreaterThanOrEqual(ck.High) && k.Low.LessThanOrEqual(ck.Low) {
		extremum = k.Timestamp
	} else {
		return MergedCandle{}, false
	}

	merged := MergedCandle{
		Start:    ck.Start,
		End:      k.Timestamp,
		Extremum: extremum,
		Count:    ck.Count + 1,
	}

	if upward {
		merged.High = decimal.Max(ck.High, k.High)
		merged.Low = decimal.Max(ck.Low, k.Low)
	} else {
		merged.High = decimal.Min(ck.High, k.High)
		merged.Low = decimal.Min(ck.Low, k.Low)
	}

	return merged, true
}
