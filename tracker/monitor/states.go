package monitor

type state int

const (
	disconnected state = iota // The monitor service has not yet attempted to establish a connection to the live trade feed.
	connecting                // The monitor service is attempting to establish a connection to the live trade feed.
	connected                 // The monitor service has connected to the live trade feed.
	subscribed                // The monitor service has successfully subscribed to the heartbeat and matches channels of the live trade feed.
	ready                     // The monitor service has seeded the candle store service with the most recent known trade and is thus ready to start processing new trades.
	backtesting               // The monitor service is replaying historical candles instead of watching the live trade feed.
)

func (o state) String() string {
	return [...]string{"disconnected", "connecting", "connected", "subscribed", "ready", "backtesting"}[o]
}
