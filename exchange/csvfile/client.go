package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/lukehollenback/tanglism/constants"
	"github.com/lukehollenback/tanglism/exchange"
	"github.com/shopspring/decimal"
)

// NOTE ~> Rows are expected as follows, one candle interval per file, oldest first. A header row
//  is skipped if its first cell does not parse as a timestamp. A path containing PeriodPlaceholder
//  has it replaced by the requested interval (e.g. "btc-{period}.csv" → "btc-5m.csv").
//
//  timestamp,open,high,low,close[,volume]
//  2020-02-01 10:00,10.05,10.10,10.00,10.08,12.5

const (
	timestampIndex = 0
	openIndex      = 1
	highIndex      = 2
	lowIndex       = 3
	closeIndex     = 4
	volumeIndex    = 5

	minFields = closeIndex + 1

	PeriodPlaceholder = "{period}"
)

//
// Client implements the exchange.Client interface over local CSV files of candles. The symbol of a
// request is not checked against the file; the file is assumed to hold exactly what the caller
// asked for.
//
type Client struct {
	path string
}

func NewClient(path string) *Client {
	return &Client{
		path: path,
	}
}

//
// Response implements the exchange.Response interface for candles read from a file.
//
type Response struct {
	candles []*Candle
}

func (o *Response) Raw() *http.Response {
	return nil
}

func (o *Response) Candles() []exchange.Candle {
	ret := make([]exchange.Candle, len(o.candles))

	for i, v := range o.candles {
		ret[i] = v
	}

	return ret
}

func (o *Client) RetrieveCandles(
	symbol string,
	interval exchange.Interval,
	start time.Time,
	end time.Time,
	limit int,
) (exchange.Response, error) {
	f, err := os.Open(strings.ReplaceAll(o.path, PeriodPlaceholder, interval.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to open candle file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	resp := &Response{
		candles: make([]*Candle, 0),
	}

	for line := 1; limit <= 0 || len(resp.candles) < limit; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return resp, fmt.Errorf("failed to read candle file: %w", err)
		}

		candle, err := parseRecord(record, interval)
		if err != nil {
			if line == 1 {
				continue
			}

			return resp, fmt.Errorf("line %d: %w", line, err)
		}

		if candle.start.Before(start) || candle.start.After(end) {
			continue
		}

		resp.candles = append(resp.candles, candle)
	}

	return resp, nil
}

type decimalField struct {
	index int
	dest  *decimal.Decimal
}

//
// parseRecord turns one CSV row into a candle of the given interval.
//
func parseRecord(record []string, interval exchange.Interval) (*Candle, error) {
	if len(record) < minFields {
		return nil, fmt.Errorf("expected at least %d fields, got %d", minFields, len(record))
	}

	start, err := parseTimestamp(record[timestampIndex])
	if err != nil {
		return nil, err
	}

	candle := &Candle{
		start: start,
		end:   start.Add(interval.Duration()).Add(-1 * time.Nanosecond),
	}

	fields := []decimalField{
		{openIndex, &candle.open},
		{highIndex, &candle.high},
		{lowIndex, &candle.low},
		{closeIndex, &candle.close},
	}

	if len(record) > volumeIndex {
		fields = append(fields, decimalField{volumeIndex, &candle.volume})
	}

	for _, field := range fields {
		*field.dest, err = decimal.NewFromString(strings.TrimSpace(record[field.index]))
		if err != nil {
			return nil, fmt.Errorf("failed to parse field %d (%q): %w", field.index, record[field.index], err)
		}
	}

	return candle, nil
}

//
// parseTimestamp accepts RFC 3339 timestamps as well as the minute-resolution command-line layout
// (interpreted as UTC).
//
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}

	return time.Parse(constants.TimestampLayout, s)
}
