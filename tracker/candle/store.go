package candle

import (
	"fmt"
	"sync"
	"time"

	"github.com/lukehollenback/tanglism/structs/evictingqueue"
	"github.com/shopspring/decimal"
)

const (
	historySize = 64
)

//
// Store holds the most recent candles of a single duration interval, the newest of which is still
// open and accepting trades.
//
type Store struct {
	mu              *sync.Mutex
	interval        time.Duration
	candles         *evictingqueue.EvictingQueue[*Candle]
	lastCandleStart time.Time
	lastCandleEnd   time.Time
}

//
// CreateStore instantiates a new candle store that will hold candles of the specified duration
// interval. For example, one might instantiate a 1-minute candle store, a 5-minute candle store,
// and a 15-minute candle store.
//
func CreateStore(interval time.Duration, initialCandle *Candle) (*Store, error) {
	//
	// Instantiate the new candle store.
	//
	o := &Store{
		mu:       &sync.Mutex{},
		interval: interval,
		candles:  evictingqueue.New[*Candle](historySize),
	}

	//
	// Add the initial candle to the new candle store.
	//
	err := o.appendCandle(initialCandle)
	if err != nil {
		return nil, err
	}

	return o, nil
}

//
// Append calculates a new trade into the open candle of the store. If the trade falls beyond that
// candle's timespan, the open candle is closed out and returned, and a new candle aligned to the
// interval is opened with the trade. Trades older than the open candle are rejected.
//
func (o *Store) Append(time time.Time, amt decimal.Decimal) (*Candle, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	//
	// Figure out if we need to create a new candle. Also, validate that we are not trying to append
	// to a historical, closed-out candle in the candle store.
	//
	if time.Before(o.lastCandleStart) {
		return nil, fmt.Errorf("cannot modify closed-out candles in candle store")
	}

	if !time.Before(o.lastCandleEnd) {
		closed := o.current()

		// NOTE ~> Align to the interval rather than to the previous candle's end so that a quiet
		//  market does not leave the store opening candles in the past.

		err := o.appendCandle(CreateCandle(time.Truncate(o.interval), o.interval, amt))
		if err != nil {
			return nil, err
		}

		return closed, nil
	}

	//
	// Grab the last candle in the candle store – which we have, at this point, validated is the one
	// we must append the trade to – and actually update it.
	//
	return nil, o.current().Append(time, amt)
}

//
// Current returns the open candle.
//
func (o *Store) Current() *Candle {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.current()
}

//
// Previous returns the most recently closed-out candle, or nil if there is none yet.
//
func (o *Store) Previous() *Candle {
	o.mu.Lock()
	defer o.mu.Unlock()

	candle, _ := o.candles.Get(o.candles.Len() - 2)

	return candle
}

func (o *Store) current() *Candle {
	candle, _ := o.candles.Get(o.candles.Len() - 1)

	return candle
}

//
// appendCandle adds the provided candle to the tip of the candle store. If the provided candle is
// not of the store's interval, an error will occur.
//
func (o *Store) appendCandle(candle *Candle) error {
	//
	// Ensure that the candle is of the same duration as those held by the candle store.
	//
	if candle.duration != o.interval {
		return fmt.Errorf(
			"cannot append candle of duration %s to candle store of %s candles",
			candle.duration, o.interval,
		)
	}

	//
	// Actually append the candle to the candle store.
	//
	o.candles.Add(candle)
	o.lastCandleStart = candle.start
	o.lastCandleEnd = candle.start.Add(o.interval)

	return nil
}
