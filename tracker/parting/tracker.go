package parting

import (
	"fmt"
	"log"
	"sync"

	"github.com/logrusorgru/aurora"
	"github.com/lukehollenback/tanglism/constants"
	"github.com/lukehollenback/tanglism/exchange"
	"github.com/lukehollenback/tanglism/metrics"
	"github.com/lukehollenback/tanglism/morph"
	"github.com/lukehollenback/tanglism/tracker/candle"
)

const (
	Name = "≪parting-tracker≫"
)

var (
	logger *log.Logger
)

func init() {
	//
	// Initialize the logger.
	//
	logger = log.New(log.Writer(), fmt.Sprintf(constants.LogPrefixFmt, Name), log.Ldate|log.Ltime|log.Lmsgprefix)
}

//
// Sink receives every parting a tracker confirms.
//
type Sink interface {
	Write(period string, parting morph.Parting) error
}

//
// Tracker watches the closed candles of a single interval for partings.
//
type Tracker struct {
	mu         *sync.Mutex
	interval   exchange.Interval
	shaper     *morph.Shaper
	sink       Sink
	logPending bool
}

//
// NewTracker instantiates a tracker for the provided interval. Confirmed partings are handed to
// the provided sink, which may be nil.
//
func NewTracker(interval exchange.Interval, sink Sink) *Tracker {
	return &Tracker{
		mu:       &sync.Mutex{},
		interval: interval,
		shaper:   morph.NewShaper(),
		sink:     sink,
	}
}

func (o *Tracker) Interval() exchange.Interval {
	return o.interval
}

//
// SetLogPending enables logging of the fractal that would be confirmed if the stream ended after
// each candle.
//
func (o *Tracker) SetLogPending(logPending bool) {
	o.logPending = logPending
}

//
// Consume feeds a closed candle to the tracker's shaper, recording the parting it confirms, if
// any.
//
func (o *Tracker) Consume(k morph.Candle) (morph.Parting, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	metrics.CandlesConsumed.WithLabelValues(o.interval.String()).Inc()

	parting, ok := o.shaper.Consume(k)
	if ok {
		o.record(parting)
	}

	if o.logPending {
		if pending, ok := o.shaper.Pending(); ok {
			logger.Printf("%s Pending %s.", o.interval, pending)
		}
	}

	return parting, ok
}

//
// Finish ends the tracker's candle stream, recording the final fractal if the window holds one.
//
func (o *Tracker) Finish() (morph.Parting, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	parting, ok := o.shaper.Flush()
	if ok {
		o.record(parting)
	}

	return parting, ok
}

//
// Partings returns every parting the tracker has confirmed so far, in order.
//
func (o *Tracker) Partings() []morph.Parting {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.shaper.Partings()
}

//
// candleCloseHandler is the tracker's "candle close handler" for the monitor service.
//
func (o *Tracker) candleCloseHandler(closed *candle.Candle) {
	o.Consume(closed.Morph())
}

//
// record logs, counts, and writes out a confirmed parting.
//
func (o *Tracker) record(parting morph.Parting) {
	kind := aurora.Bold(aurora.Green("BOTTOM"))
	if parting.Top {
		kind = aurora.Bold(aurora.Red("TOP"))
	}

	logger.Printf(
		"%s %s at %s on %s (%s → %s, %d candles).",
		o.interval, kind, aurora.Bold(parting.ExtremumPrice), parting.Extremum.Format(constants.TimestampLayout),
		parting.Start.Format(constants.TimestampLayout), parting.End.Format(constants.TimestampLayout), parting.Count,
	)

	metrics.Partings.WithLabelValues(o.interval.String(), parting.Kind()).Inc()

	if o.sink == nil {
		return
	}

	if err := o.sink.Write(o.interval.String(), parting); err != nil {
		logger.Printf("Failed to write out %s parting. (Error: %s)", o.interval, err)
	}
}
