package binance

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/lukehollenback/tanglism/constants"
	"github.com/lukehollenback/tanglism/exchange"
	"github.com/lukehollenback/tanglism/metrics"
)

const (
	Name = "≪binance-client≫"

	defaultMaxRetries = 5
)

var (
	logger *log.Logger
)

func init() {
	logger = log.New(log.Writer(), fmt.Sprintf(constants.LogPrefixFmt, Name), log.Ldate|log.Ltime|log.Lmsgprefix)
}

//
// Client implements the exchange.Client interface for the Binance.US API.
//
type Client struct {
	apiKey     string
	apiSecret  string
	baseURL    string
	maxRetries uint64
	httpClient *http.Client
	newBackOff func() backoff.BackOff
}

func NewClient() *Client {
	o := &Client{
		baseURL:    BaseURL,
		maxRetries: defaultMaxRetries,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	o.newBackOff = func() backoff.BackOff {
		return backoff.NewExponentialBackOff()
	}

	return o
}

//
// Auth stores the API key and secret for use in request headers. Public market data does not
// need them, so calling this is optional.
//
func (o *Client) Auth(key string, secret string) {
	o.apiKey = key
	o.apiSecret = secret
}

//
// SetBaseURL points the client at a different API host (e.g. a test server).
//
func (o *Client) SetBaseURL(url string) {
	o.baseURL = url
}

//
// SetMaxRetries sets how many times a transiently-failing request is retried before giving up.
//
func (o *Client) SetMaxRetries(n uint64) {
	o.maxRetries = n
}

func (o *Client) RetrieveCandles(
	symbol string,
	interval exchange.Interval,
	start time.Time,
	end time.Time,
	limit int,
) (exchange.Response, error) {
	if limit > MaxCandles {
		limit = MaxCandles
	}

	//
	// Build request URL.
	//
	url := fmt.Sprintf(
		"%s%s?symbol=%s&interval=%s&startTime=%d&endTime=%d&limit=%d",
		o.baseURL,
		CandlesPath,
		symbol,
		interval,
		start.UnixMilli(),
		end.UnixMilli(),
		limit,
	)

	//
	// Make the endpoint request and handle any errors along the way.
	//
	resp, err := o.request(http.MethodGet, url)
	if err != nil {
		return resp, err
	}

	//
	// Parse the response
	//
	var candles []*Candle

	err = json.Unmarshal(resp.body, &candles)
	if err != nil {
		return resp, fmt.Errorf("failed to decode klines: %w", err)
	}

	//
	// Finish packing the wrapped response and return it.
	//
	resp.candles = candles

	return resp, nil
}

//
// request makes the specified request to the Binance.US API, retrying with exponential backoff
// while the failure looks transient, and returns a wrapped response (parsed as much as generically
// possible) and/or an error if something went wrong.
//
func (o *Client) request(method string, url string) (*Response, error) {
	var resp *Response

	operation := func() error {
		var err error

		resp, err = o.attempt(method, url)
		if err == nil {
			return nil
		}

		//
		// API errors and client-side HTTP errors will not go away by asking again.
		//
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return backoff.Permanent(err)
		}

		var httpErr *exchange.HTTPError
		if errors.As(err, &httpErr) && !httpErr.Temporary() {
			return backoff.Permanent(err)
		}

		return err
	}

	notify := func(err error, delay time.Duration) {
		metrics.FetchRetries.Inc()

		logger.Printf("Request failed, retrying in %s. (Error: %s)", delay, err)
	}

	err := backoff.RetryNotify(operation, backoff.WithMaxRetries(o.newBackOff(), o.maxRetries), notify)

	return resp, err
}

//
// attempt makes a single request to the endpoint.
//
func (o *Client) attempt(method string, url string) (*Response, error) {
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		return nil, err
	}

	if o.apiKey != "" {
		req.Header.Add(APIKeyHeader, o.apiKey)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	//
	// Begin wrapping the response in the standard response structure.
	//
	wrappedResp := &Response{
		response: resp,
	}

	//
	// Read the response.
	//
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return wrappedResp, err
	}

	wrappedResp.body = respBody

	//
	// Check the response for API errors. Binance.US reports them as a JSON object, so a kline array
	// simply fails to unmarshal here and is left alone.
	//
	apiErr := &APIError{}

	if json.Unmarshal(respBody, apiErr) == nil && apiErr.populated() {
		return wrappedResp, apiErr
	}

	//
	// Make sure the status code was valid.
	//
	if resp.StatusCode != http.StatusOK {
		return wrappedResp, exchange.NewHTTPError(resp.StatusCode)
	}

	//
	// Return the wrapped response.
	//
	return wrappedResp, nil
}
