package binance

const (
	APIKeyHeader = "X-MBX-APIKEY"

	BaseURL     = "https://api.binance.us"
	CandlesPath = "/api/v3/klines"

	//
	// MaxCandles is the hard limit Binance.US places on a single klines request.
	//
	MaxCandles = 1000
)
