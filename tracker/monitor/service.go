package monitor

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/lukehollenback/tanglism/constants"
	"github.com/lukehollenback/tanglism/exchange"
	"github.com/lukehollenback/tanglism/tracker/candle"
	"github.com/shopspring/decimal"

	ws "github.com/gorilla/websocket"
	coinbasepro "github.com/preichenberger/go-coinbasepro/v2"
)

const (
	Name = "≪monitor-service≫"

	FeedURL = "wss://ws-feed.pro.coinbase.com"

	backtestPageLimit = 1000
)

var (
	o      *Service
	once   sync.Once
	logger *log.Logger

	cfgMarket        *string
	cfgProduct       *string
	cfgBacktest      *bool
	cfgBacktestStart *string
	cfgBacktestEnd   *string
)

func init() {
	//
	// Initialize the logger.
	//
	logger = log.New(log.Writer(), fmt.Sprintf(constants.LogPrefixFmt, Name), log.Ldate|log.Ltime|log.Lmsgprefix)

	//
	// Register and parse configuration flags.
	//
	cfgMarket = flag.String(
		"market",
		"BTCUSD",
		"The exchange symbol whose historical candles should be loaded when backtesting.",
	)

	cfgProduct = flag.String(
		"product",
		"BTC-USD",
		"The Coinbase Pro product whose trades should be watched when not backtesting.",
	)

	cfgBacktest = flag.Bool(
		"backtest",
		false,
		"Whether or not to replay historical candles instead of watching live trades.",
	)

	cfgBacktestStart = flag.String(
		"backtest-start",
		"2020-02-01 00:00",
		"The desired backtest start timestamp (UTC).",
	)

	cfgBacktestEnd = flag.String(
		"backtest-end",
		"2020-02-02 00:00",
		"The desired backtest end timestamp (UTC).",
	)
}

//
// Service represents a candle monitor service instance. It produces closed candles – either
// replayed from an exchange's historical data or built from a live trade feed – to the handlers
// registered for their interval.
//
type Service struct {
	mu        *sync.Mutex
	chKill    chan bool
	chStopped chan bool
	chDone    chan struct{}
	err       error

	client  exchange.Client
	candles *candle.Service

	backtest      bool
	backtestStart time.Time
	backtestEnd   time.Time

	state   state
	conn    *ws.Conn
	feedURL string

	market  string
	product string

	handlers map[exchange.Interval][]func(*candle.Candle)
}

//
// Instance returns a singleton instance of the candle monitor service, configured from the
// command-line flags.
//
func Instance() *Service {
	once.Do(func() {
		o = New()
		o.SetMarket(*cfgMarket)
		o.SetProduct(*cfgProduct)

		//
		// Parse the backtest start and end timestamps if backtesting has been enabled.
		//
		if *cfgBacktest {
			start, err := time.Parse(constants.TimestampLayout, *cfgBacktestStart)
			if err != nil {
				logger.Fatalf("Failed to instantiate. Backtest start timestamp could not be parsed. (Error: %s)", err)
			}

			end, err := time.Parse(constants.TimestampLayout, *cfgBacktestEnd)
			if err != nil {
				logger.Fatalf("Failed to instantiate. Backtest end timestamp could not be parsed. (Error: %s)", err)
			}

			o.SetBacktest(start, end)
		}
	})

	return o
}

//
// New instantiates a standalone candle monitor service that watches the live trade feed until
// told otherwise. Most callers want Instance().
//
func New() *Service {
	return &Service{
		mu:       &sync.Mutex{},
		candles:  candle.Instance(),
		state:    disconnected,
		feedURL:  FeedURL,
		handlers: make(map[exchange.Interval][]func(*candle.Candle)),
	}
}

//
// SetClient tells the service which client instance it should use to communicate with the
// relevant exchange's REST API (e.g. for loading historical data).
//
func (o *Service) SetClient(client exchange.Client) {
	o.client = client
}

//
// SetCandleService overrides the candle store service that live trades are aggregated by.
//
func (o *Service) SetCandleService(candles *candle.Service) {
	o.candles = candles
}

func (o *Service) SetMarket(market string) {
	o.market = market
}

func (o *Service) SetProduct(product string) {
	o.product = product
}

func (o *Service) SetFeedURL(url string) {
	o.feedURL = url
}

//
// SetBacktest switches the service to replaying historical candles opening within the provided
// window.
//
func (o *Service) SetBacktest(start time.Time, end time.Time) {
	o.backtest = true
	o.backtestStart = start
	o.backtestEnd = end

	logger.Printf("Enabled backtesting. (Start: %s, End: %s)", start, end)
}

func (o *Service) Backtest() bool {
	return o.backtest
}

//
// RegisterCandleCloseHandler registers a signal handler to be executed whenever a candle of the
// provided interval closes out. Only intervals with at least one handler are monitored.
//
func (o *Service) RegisterCandleCloseHandler(interval exchange.Interval, handler func(*candle.Candle)) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.handlers[interval] = append(o.handlers[interval], handler)
}

//
// Done returns a channel that is closed once the service has run out of candles to produce (i.e. a
// backtest has completed, or the live feed has failed). It is only valid after Start().
//
func (o *Service) Done() <-chan struct{} {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.chDone
}

//
// Err returns the failure that ended the service early, if any. It should only be consulted once
// Done() has been closed.
//
func (o *Service) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.err
}

//
// Start implements the Service interface's described method.
//
func (o *Service) Start() (<-chan bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	//
	// Validate that necessary configurations have been provided.
	//
	if len(o.handlers) == 0 {
		return nil, errors.New("cannot start the monitor service without any candle close handlers")
	}

	if o.backtest {
		if o.client == nil {
			return nil, errors.New("cannot backtest without an exchange client")
		}

		if o.backtestEnd.Before(o.backtestStart) {
			return nil, fmt.Errorf("backtest ends (%s) before it starts (%s)", o.backtestEnd, o.backtestStart)
		}
	}

	//
	// (Re)initialize our instance variables.
	//
	o.chKill = make(chan bool, 1)
	o.chStopped = make(chan bool, 1)
	o.chDone = make(chan struct{})
	o.err = nil

	//
	// Fire off a goroutine as the executor for the service.
	//
	go o.service()

	//
	// Return our "started" channel in case the caller wants to block on it and log some debug info.
	//
	chStarted := make(chan bool, 1)
	chStarted <- true

	logger.Printf("Started.")

	return chStarted, nil
}

//
// Stop implements the Service interface's described method.
//
func (o *Service) Stop() (<-chan bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	//
	// Log some debug info.
	//
	logger.Printf("Stopping...")

	//
	// Tell the goroutines that were spun off by the service to shutdown.
	//
	o.chKill <- true

	//
	// Return the "stopped" channel that the caller can block on if they need to know that the
	// service has completely shutdown.
	//
	return o.chStopped, nil
}

//
// service executes the appropriate monitor until it runs dry or is killed.
//
func (o *Service) service() {
	var err error

	//
	// Execute the appropriate monitor.
	//
	if o.backtest {
		err = o.backtestCandles()
	} else {
		err = o.monitorLiveTrades()
	}

	if err != nil {
		logger.Printf("Monitoring has failed. (Error: %s)", err)
	}

	o.mu.Lock()
	o.err = err
	close(o.chDone)
	o.mu.Unlock()

	//
	// Send the signal that we have shut down.
	//
	o.chStopped <- true
}

//
// backtestCandles loads historical candles of every monitored interval from the relevant exchange
// API and produces them in the order they closed.
//
func (o *Service) backtestCandles() error {
	o.state = backtesting
	intervals := o.intervals()

	for s, e, c := o.obtainBacktestCursors(nil); c; s, e, c = o.obtainBacktestCursors(&s) {
		select {
		case <-o.chKill:
			logger.Printf("Backtesting was interrupted at %s.", s)

			return nil
		default:
		}

		//
		// Log some debug info.
		//
		logger.Printf("Loading historical candles from %s through %s.", s, e)

		//
		// Load historical candles and bucket them by the instant they close at.
		//
		batches := make(map[time.Time]candle.Candles)

		for _, interval := range intervals {
			resp, err := o.client.RetrieveCandles(o.market, interval, s, e, backtestPageLimit)
			if err != nil {
				return fmt.Errorf("failed to load historical %s candles: %w", interval, err)
			}

			for _, v := range resp.Candles() {
				end := *v.EndTime()

				if batches[end] == nil {
					batches[end] = make(candle.Candles)
				}

				batches[end][interval] = fromExchange(interval, v)
			}

			logger.Printf("Loaded %d %s candles.", len(resp.Candles()), interval)
		}

		//
		// Produce the historical candles.
		//
		ends := make([]time.Time, 0, len(batches))

		for end := range batches {
			ends = append(ends, end)
		}

		sort.Slice(ends, func(i, j int) bool { return ends[i].Before(ends[j]) })

		for _, end := range ends {
			o.processClosedCandles(batches[end])
		}
	}

	//
	// Log some debug info.
	//
	logger.Printf("Backtesting has completed.")

	return nil
}

//
// obtainBacktestCursors initializes or slides the start and end timestamp cursors being used to
// retrieve historical candles. Slides the window by twelve hours each call, and reports false once
// the window has moved past the end of the backtest period.
//
func (o *Service) obtainBacktestCursors(prevStart *time.Time) (time.Time, time.Time, bool) {
	var start time.Time

	//
	// Prime or update the head cursor.
	//
	if prevStart == nil {
		start = o.backtestStart
	} else {
		start = prevStart.Add(constants.TwelveHours)
	}

	if start.After(o.backtestEnd) {
		return start, start, false
	}

	//
	// Update the tail cursor, clamping it to the end of our backtest period.
	//
	end := start.Add(constants.TwelveHours).Add(-1 * time.Nanosecond)

	if end.After(o.backtestEnd) {
		end = o.backtestEnd
	}

	return start, end, true
}

//
// monitorLiveTrades actually monitors trades as received from the Coinbase Pro websocket feed in
// realtime to produce candles.
//
func (o *Service) monitorLiveTrades() error {
	var err error

	//
	// Connect to the Coinbase Pro websocket feed so that we can monitor network events that occur.
	//
	var wsDialer ws.Dialer

	o.state = connecting

	o.conn, _, err = wsDialer.Dial(o.feedURL, nil)
	if err != nil {
		o.state = disconnected

		return fmt.Errorf("could not connect to the Coinbase Pro websocket feed: %w", err)
	}

	defer func() {
		if err := o.conn.Close(); err != nil {
			logger.Printf("Failed to close websocket connection to Coinbase Pro. (Error: %s)", err)
		}

		o.state = disconnected
	}()

	o.state = connected

	//
	// Subscribe to heartbeat messages and trade messages over the Coinbase Pro websocket feed.
	//
	subscribe := coinbasepro.Message{
		Type: "subscribe",
		Channels: []coinbasepro.MessageChannel{
			{
				Name:       "heartbeat",
				ProductIds: []string{o.product},
			},
			{
				Name:       "matches",
				ProductIds: []string{o.product},
			},
		},
	}

	if err := o.conn.WriteJSON(subscribe); err != nil {
		return fmt.Errorf("could not subscribe to the Coinbase Pro websocket feed: %w", err)
	}

	//
	// Begin monitoring and processing messages from the Coinbase Pro websocket feed.
	//
	for {
		chMsg := make(chan *coinbasepro.Message, 1)
		chErr := make(chan error, 1)

		go o.readNextMessage(chMsg, chErr)

		select {
		case <-o.chKill:
			return nil

		case msg := <-chMsg:
			if err := o.handleMessage(msg); err != nil {
				return err
			}

		case err := <-chErr:
			return fmt.Errorf("could not read the next message from the Coinbase Pro websocket feed: %w", err)
		}
	}
}

func (o *Service) readNextMessage(chMsg chan<- *coinbasepro.Message, chErr chan<- error) {
	msg := &coinbasepro.Message{}

	if err := o.conn.ReadJSON(msg); err != nil {
		chErr <- err

		return
	}

	chMsg <- msg
}

func (o *Service) handleMessage(msg *coinbasepro.Message) error {
	switch o.state {
	case connected:
		if msg.Type == "subscriptions" {
			//
			// Move the monitor service into a "subscribed" state – indicating that it has successfully
			// received acknowledgement from the Coinbase Pro websocket API that it has subscribed to the
			// necessary message channels.
			//
			o.state = subscribed

			logger.Printf("Successfully subscribed to relevant Coinbase Pro websocket channels (Product: %s).", o.product)
		}

	case subscribed:
		if msg.Type == "last_match" {
			time, amt, err := parseTrade(msg)
			if err != nil {
				return err
			}

			//
			// Initialize the candle store service with the last trade as stated by the message.
			//
			if err := o.candles.Init(time, amt, o.intervals()...); err != nil {
				return fmt.Errorf("failed to initialize the candle store service: %w", err)
			}

			//
			// Move the monitor service into a "ready" state – indicating that it is now fully ready to
			// begin monitoring and processing trades received from the Coinbase Pro websocket API.
			//
			o.state = ready
		}

	case ready:
		if msg.Type == "match" {
			time, amt, err := parseTrade(msg)
			if err != nil {
				return err
			}

			//
			// Provide the trade to the candle store service and process any candles that were closed
			// out.
			//
			closedCandles, err := o.candles.Append(time, amt)
			if err != nil {
				return fmt.Errorf("failed to provide the trade to the candle store service: %w", err)
			}

			o.processClosedCandles(closedCandles)
		}
	}

	return nil
}

//
// processClosedCandles fires off the signal handlers of each closed out candle provided, shortest
// interval first.
//
func (o *Service) processClosedCandles(candles candle.Candles) {
	o.mu.Lock()
	defer o.mu.Unlock()

	// NOTE ~> We must lock because we will be iterating slices that are members of the instance.

	for _, interval := range candles.Intervals() {
		for _, handler := range o.handlers[interval] {
			handler(candles[interval])
		}
	}
}

//
// intervals returns the monitored intervals, shortest first.
//
func (o *Service) intervals() []exchange.Interval {
	o.mu.Lock()
	defer o.mu.Unlock()

	ret := make([]exchange.Interval, 0, len(o.handlers))

	for interval := range o.handlers {
		ret = append(ret, interval)
	}

	sort.Slice(ret, func(i, j int) bool { return ret[i] < ret[j] })

	return ret
}

//
// parseTrade extracts the trade time and price from a feed message.
//
func parseTrade(msg *coinbasepro.Message) (time.Time, decimal.Decimal, error) {
	amt, err := decimal.NewFromString(msg.Price)
	if err != nil {
		return time.Time{}, decimal.Zero, fmt.Errorf("failed to parse price from message %+v: %w", msg, err)
	}

	return msg.Time.Time(), amt, nil
}

//
// fromExchange converts a historical exchange candle into a closed candle of the provided
// interval.
//
func fromExchange(interval exchange.Interval, v exchange.Candle) *candle.Candle {
	return candle.CreateFullCandle(
		*v.StartTime(), interval.Duration(),
		*v.Open(), *v.Close(), *v.High(), *v.Low(), *v.Volume(),
		decimal.NewFromInt(int64(*v.Count())),
	)
}
