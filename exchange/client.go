package exchange

import (
	"time"
)

//
// Client generically provides an interface to an object that can be used to retrieve historical
// candles for a market, whether from a cryptocurrency exchange's REST API or from a local file.
//
// Whenever an endpoint fails – whether due to a system failure, an HTTP error, or an API error –
// the error component of the response will be non-nil and, if at all possible, the response payload
// that was received will be returned.
//
type Client interface {

	//
	// RetrieveCandles retrieves candles of the specified interval for the specified ticker symbol
	// within the specified time range. A maximum of the specified limit of candles will be returned
	// (note that many exchanges impose a hard maximum on the limit – usually at around 1000 candles).
	//
	RetrieveCandles(symbol string, interval Interval, start time.Time, end time.Time, limit int) (Response, error)
}
