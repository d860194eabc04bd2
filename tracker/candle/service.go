package candle

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/lukehollenback/tanglism/constants"
	"github.com/lukehollenback/tanglism/exchange"
	"github.com/shopspring/decimal"
)

const (
	Name = "≪candle-service≫"
)

var (
	o      *Service
	once   sync.Once
	logger *log.Logger
)

func init() {
	//
	// Initialize the logger.
	//
	logger = log.New(log.Writer(), fmt.Sprintf(constants.LogPrefixFmt, Name), log.Ldate|log.Ltime|log.Lmsgprefix)
}

//
// Service represents a candle store service instance. It keeps one candle store per tracked
// interval and fans every trade out to all of them.
//
type Service struct {
	mu     *sync.Mutex
	stores map[exchange.Interval]*Store
}

//
// Instance returns a singleton instance of the candle store service.
//
func Instance() *Service {
	once.Do(func() {
		o = New()
	})

	return o
}

//
// New instantiates a standalone candle store service. Most callers want Instance().
//
func New() *Service {
	return &Service{
		mu: &sync.Mutex{},
	}
}

//
// Start fires up the service. It is up to the caller to not call this multiple times in a row
// without stopping the service and waiting for full termination in between. A channel that can be
// blocked on for a "true" value – which indicates that start up is complete – is returned.
//
func (o *Service) Start() (<-chan bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	//
	// Return our "started" channel in case the caller wants to block on it and log some debug info.
	//
	chStarted := make(chan bool, 1)
	chStarted <- true

	logger.Printf("Started.")

	return chStarted, nil
}

//
// Stop tells the service to shut down. It is up to the caller to not call this multiple times in
// a row without starting the service first. A channel that can be blocked on for a "true" value –
// which indicates that shut down is complete – is returned.
//
func (o *Service) Stop() (<-chan bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	//
	// Log some debug info.
	//
	logger.Printf("Stopping...")

	//
	// Return the "stopped" channel that the caller can block on if they need to know that the
	// service has completely shutdown.
	//
	chStopped := make(chan bool, 1)
	chStopped <- true

	return chStopped, nil
}

//
// Init (re)initializes the candle store service with one candle store per provided interval, each
// seeded with a candle holding the provided trade. It should be called prior to processing any new
// trades into the service.
//
func (o *Service) Init(time time.Time, amt decimal.Decimal, intervals ...exchange.Interval) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(intervals) == 0 {
		return errors.New("cannot initialize the candle store service without any intervals")
	}

	stores := make(map[exchange.Interval]*Store, len(intervals))

	for _, interval := range intervals {
		duration := interval.Duration()

		store, err := CreateStore(duration, CreateCandle(time.Truncate(duration), duration, amt))
		if err != nil {
			return err
		}

		stores[interval] = store
	}

	o.stores = stores

	return nil
}

//
// Append adds the provided trade to all of the candle stores and returns every candle that was
// closed out as a result (possibly none).
//
func (o *Service) Append(time time.Time, amt decimal.Decimal) (Candles, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	//
	// Ensure that the necessary candle stores have been initialized.
	//
	if o.stores == nil {
		return nil, errors.New(
			"cannot append trade before the candle store service's candle stores have been " +
				"initialized",
		)
	}

	closed := make(Candles)

	for interval, store := range o.stores {
		prevCandle, err := store.Append(time, amt)
		if err != nil {
			return nil, fmt.Errorf("%s candle store: %w", interval, err)
		}

		if prevCandle != nil {
			closed[interval] = prevCandle

			logger.Printf("%s ↝ %s", interval, prevCandle)
		}
	}

	return closed, nil
}
