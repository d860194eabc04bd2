package morph

import (
	"github.com/lukehollenback/tanglism/structs/evictingqueue"
)

const (
	windowSize = 3
)

//
// Partings runs a full candle sequence through a fresh shaper, flushes it, and returns every
// parting that was found. Candles must be in strictly increasing timestamp order.
//
func Partings(ks []Candle) []Parting {
	shaper := NewShaper()

	for _, k := range ks {
		shaper.Consume(k)
	}

	shaper.Flush()

	return shaper.Partings()
}

//
// Shaper is the streaming parting detector. It holds a window of up to three merged candles
// (oldest first) and the direction that decides how inclusive candles are merged. A Shaper is
// not meant to be shared between goroutines; run one per instrument and period instead.
//
type Shaper struct {
	window   *evictingqueue.EvictingQueue[MergedCandle]
	upward   bool
	partings []Parting
}

//
// NewShaper instantiates a shaper with an empty window and an upward direction.
//
func NewShaper() *Shaper {
	return &Shaper{
		window:   evictingqueue.New[MergedCandle](windowSize),
		upward:   true,
		partings: make([]Parting, 0),
	}
}

//
// Consume advances the shaper by one raw candle. If that candle confirmed a parting, the parting
// is returned along with a true sentinel (it has also been appended to Partings()).
//
func (o *Shaper) Consume(k Candle) (Parting, bool) {
	switch o.window.Len() {
	case 0:
		o.window.Add(NewMergedCandle(k))

	case 1:
		k1 := o.slot(0)

		if ck, ok := MergeInclusive(k1, k, o.upward); ok {
			o.window.Set(0, ck)

			return Parting{}, false
		}

		//
		// The first genuine breakout decides which way we are heading.
		//
		o.upward = k.High.GreaterThan(k1.High)
		o.window.Add(NewMergedCandle(k))

	case 2:
		k2 := o.slot(1)

		if ck, ok := MergeInclusive(k2, k, o.upward); ok {
			o.window.Set(1, ck)

			return Parting{}, false
		}

		//
		// If the new candle turns against the trend, the middle candle is an extremum candidate.
		// Otherwise slide the window along by one and keep the direction.
		//
		if o.reverses(k, k2) {
			o.window.Add(NewMergedCandle(k))
			o.upward = !o.upward

			return Parting{}, false
		}

		o.window.Drop(1)
		o.window.Add(NewMergedCandle(k))

	default:
		k3 := o.slot(2)

		if ck, ok := MergeInclusive(k3, k, o.upward); ok {
			o.window.Set(2, ck)

			return Parting{}, false
		}

		//
		// The new candle is independent of the third one, so the fractal is confirmed.
		//
		parting := o.emit()

		//
		// NOTE ~> If k2, k3 and the new candle already form the next fractal, shift by one so the
		//  middle of that fractal is not lost. Otherwise start over from k3 and the new candle.
		//
		if o.reverses(k, k3) {
			o.window.Add(NewMergedCandle(k))
			o.upward = !o.upward
		} else {
			o.upward = k.High.GreaterThan(k3.High)
			o.window.Drop(2)
			o.window.Add(NewMergedCandle(k))
		}

		return parting, true
	}

	return Parting{}, false
}

//
// Pending returns the parting that would be emitted if the stream ended right now, without
// changing any state.
//
func (o *Shaper) Pending() (Parting, bool) {
	if o.window.Len() < windowSize {
		return Parting{}, false
	}

	return o.build(), true
}

//
// Flush performs the end-of-stream step: a full window with no disconfirming fourth candle is a
// completed fractal and is emitted. The two newest merged candles are retained so that the stream
// could be resumed.
//
func (o *Shaper) Flush() (Parting, bool) {
	if o.window.Len() < windowSize {
		return Parting{}, false
	}

	parting := o.emit()

	o.window.Drop(1)

	return parting, true
}

//
// Partings returns every parting emitted so far, in order.
//
func (o *Shaper) Partings() []Parting {
	ret := make([]Parting, len(o.partings))
	copy(ret, o.partings)

	return ret
}

//
// Window returns a copy of the merged candles currently held, oldest first.
//
func (o *Shaper) Window() []MergedCandle {
	return o.window.Slice()
}

//
// Upward reports the direction currently used to merge inclusive candles.
//
func (o *Shaper) Upward() bool {
	return o.upward
}

func (o *Shaper) slot(index int) MergedCandle {
	ck, _ := o.window.Get(index)

	return ck
}

//
// reverses reports whether k breaks ck against the current direction: a lower low while rising,
// or a higher high while falling.
//
func (o *Shaper) reverses(k Candle, ck MergedCandle) bool {
	if o.upward {
		return k.Low.LessThan(ck.Low)
	}

	return k.High.GreaterThan(ck.High)
}

func (o *Shaper) build() Parting {
	k1, k2, k3 := o.slot(0), o.slot(1), o.slot(2)

	// NOTE ~> The direction has already been flipped when the third slot was filled, so a
	//  downward shaper is sitting on a top and an upward one on a bottom.

	price := k2.High
	if o.upward {
		price = k2.Low
	}

	return Parting{
		Start:         k1.Start,
		End:           k3.End,
		Extremum:      k2.Extremum,
		ExtremumPrice: price,
		Count:         k1.Count + k2.Count + k3.Count,
		Top:           !o.upward,
	}
}

func (o *Shaper) emit() Parting {
	parting := o.build()

	o.partings = append(o.partings, parting)

	return parting
}
