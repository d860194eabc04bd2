package parting

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"sync"

	"github.com/lukehollenback/tanglism/exchange"
	"github.com/lukehollenback/tanglism/tracker/monitor"
	"github.com/lukehollenback/tanglism/tracker/writer"
)

var (
	once     sync.Once
	trackers []*Tracker
	initErr  error

	cfgPeriods    *string
	cfgLogPending *bool
)

func init() {
	//
	// Register and parse configuration flags.
	//
	cfgPeriods = flag.String(
		"periods",
		"1m,5m,15m",
		fmt.Sprintf("Comma-separated candle periods the %s should watch (e.g. 1m,5m,15m).", Name),
	)

	cfgLogPending = flag.Bool(
		"log-pending",
		false,
		"Whether or not to log the not-yet-confirmed fractal after every closed candle.",
	)
}

//
// Init instantiates one tracker per configured period and registers their candle close handlers
// with the monitor service, with confirmed partings going to the writer service. Trackers can only
// be initialized once – subsequent calls simply return the same trackers.
//
func Init() ([]*Tracker, error) {
	once.Do(func() {
		var intervals []exchange.Interval

		intervals, initErr = ParsePeriods(*cfgPeriods)
		if initErr != nil {
			return
		}

		trackers = Register(monitor.Instance(), writer.Instance(), intervals...)

		for _, tracker := range trackers {
			tracker.SetLogPending(*cfgLogPending)
		}
	})

	return trackers, initErr
}

//
// Register instantiates one tracker per provided interval and registers each with the provided
// monitor service.
//
func Register(mon *monitor.Service, sink Sink, intervals ...exchange.Interval) []*Tracker {
	ret := make([]*Tracker, 0, len(intervals))

	for _, interval := range intervals {
		tracker := NewTracker(interval, sink)

		mon.RegisterCandleCloseHandler(interval, tracker.candleCloseHandler)

		ret = append(ret, tracker)
	}

	logger.Printf("Initialized. (Periods: %v)", intervals)

	return ret
}

//
// Finish ends the candle stream of every provided tracker.
//
func Finish(trackers []*Tracker) {
	for _, tracker := range trackers {
		tracker.Finish()
	}
}

//
// ParsePeriods turns a comma-separated list of interval names into distinct intervals.
//
func ParsePeriods(s string) ([]exchange.Interval, error) {
	ret := make([]exchange.Interval, 0)
	seen := make(map[exchange.Interval]bool)

	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		interval, err := exchange.ParseInterval(name)
		if err != nil {
			return nil, err
		}

		if !seen[interval] {
			seen[interval] = true
			ret = append(ret, interval)
		}
	}

	if len(ret) == 0 {
		return nil, errors.New("at least one candle period is required")
	}

	return ret, nil
}
