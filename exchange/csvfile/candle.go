package csvfile

import (
	"time"

	"github.com/shopspring/decimal"
)

//
// Candle implements the exchange.Candle interface for rows read from a local CSV file.
//
type Candle struct {
	start  time.Time
	end    time.Time
	open   decimal.Decimal
	high   decimal.Decimal
	low    decimal.Decimal
	close  decimal.Decimal
	volume decimal.Decimal
	count  int
}

func (o *Candle) StartTime() *time.Time {
	return &o.start
}

func (o *Candle) EndTime() *time.Time {
	return &o.end
}

func (o *Candle) Open() *decimal.Decimal {
	return &o.open
}

func (o *Candle) High() *decimal.Decimal {
	return &o.high
}

func (o *Candle) Low() *decimal.Decimal {
	return &o.low
}

func (o *Candle) Close() *decimal.Decimal {
	return &o.close
}

func (o *Candle) Volume() *decimal.Decimal {
	return &o.volume
}

func (o *Candle) Count() *int {
	return &o.count
}
