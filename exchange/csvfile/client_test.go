package csvfile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lukehollenback/tanglism/exchange"
	"github.com/lukehollenback/tanglism/morph"
	"github.com/shopspring/decimal"
)

const (
	fixture = `timestamp,open,high,low,close,volume
2020-02-01 10:00,10.05,10.10,10.00,10.08,1
2020-02-01 10:01,10.08,10.15,10.05,10.12,1
2020-02-01 10:02,10.12,10.20,10.10,10.15,1
2020-02-01T10:03:00Z,10.15,10.15,10.05,10.06,1
2020-02-01 10:04,10.06,10.10,10.00,10.01
`
)

func writeFixture(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "candles.csv")

	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("Failed to write fixture. (Error: %s)", err)
	}

	return path
}

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()

	ts, err := parseTimestamp(s)
	if err != nil {
		t.Fatalf("Failed to parse %q. (Error: %s)", s, err)
	}

	return ts
}

func TestRetrieveCandles(t *testing.T) {
	client := NewClient(writeFixture(t, fixture))

	resp, err := client.RetrieveCandles(
		"BTCUSD", exchange.OneMinute,
		mustParse(t, "2020-02-01 10:00"), mustParse(t, "2020-02-01 10:04"), 0,
	)
	if err != nil {
		t.Fatalf("Failed to retrieve candles. (Error: %s)", err)
	}

	candles := resp.Candles()
	if len(candles) != 5 {
		t.Fatalf("Expected 5 candles, got %d.", len(candles))
	}

	if !candles[3].StartTime().Equal(mustParse(t, "2020-02-01 10:03")) {
		t.Errorf("Expected the RFC 3339 row to open at 10:03, got %s.", candles[3].StartTime())
	}

	if !candles[0].EndTime().Equal(mustParse(t, "2020-02-01 10:01").Add(-1 * time.Nanosecond)) {
		t.Errorf("Expected a one minute candle to close just before the next one opens, got %s.", candles[0].EndTime())
	}

	if !candles[4].Volume().IsZero() {
		t.Errorf("Expected a missing volume to be zero, got %s.", candles[4].Volume())
	}

	// NOTE ~> The fixture is the canonical single-top scenario, so the file source should feed the
	//  shaper end-to-end.

	partings := morph.Partings(exchange.MorphCandles(candles))
	if len(partings) != 1 || !partings[0].ExtremumPrice.Equal(decimal.RequireFromString("10.20")) {
		t.Errorf("Expected a single top at 10.20, got %v.", partings)
	}
}

func TestRetrieveCandlesRangeAndLimit(t *testing.T) {
	client := NewClient(writeFixture(t, fixture))

	resp, err := client.RetrieveCandles(
		"BTCUSD", exchange.OneMinute,
		mustParse(t, "2020-02-01 10:01"), mustParse(t, "2020-02-01 10:04"), 2,
	)
	if err != nil {
		t.Fatalf("Failed to retrieve candles. (Error: %s)", err)
	}

	candles := resp.Candles()
	if len(candles) != 2 {
		t.Fatalf("Expected the limit to cap the result at 2 candles, got %d.", len(candles))
	}

	if !candles[0].StartTime().Equal(mustParse(t, "2020-02-01 10:01")) {
		t.Errorf("Expected the range to skip the 10:00 candle, got %s.", candles[0].StartTime())
	}
}

func TestRetrieveCandlesBadRow(t *testing.T) {
	client := NewClient(writeFixture(t, "2020-02-01 10:00,10.05,10.10,10.00,10.08\n2020-02-01 10:01,abc,1,1,1\n"))

	_, err := client.RetrieveCandles("BTCUSD", exchange.OneMinute, time.Time{}, time.Now(), 0)
	if err == nil {
		t.Errorf("Expected a malformed price to fail.")
	}
}

func TestRetrieveCandlesMissingFile(t *testing.T) {
	client := NewClient(filepath.Join(t.TempDir(), "missing.csv"))

	if _, err := client.RetrieveCandles("BTCUSD", exchange.OneMinute, time.Time{}, time.Now(), 0); err == nil {
		t.Errorf("Expected a missing file to fail.")
	}
}

func TestRetrieveCandlesPeriodPlaceholder(t *testing.T) {
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "btc-5m.csv"), []byte(fixture), 0o644); err != nil {
		t.Fatalf("Failed to write fixture. (Error: %s)", err)
	}

	client := NewClient(filepath.Join(dir, "btc-"+PeriodPlaceholder+".csv"))

	resp, err := client.RetrieveCandles("BTCUSD", exchange.FiveMinute, time.Time{}, mustParse(t, "2020-02-01 11:00"), 0)
	if err != nil {
		t.Fatalf("Failed to retrieve candles. (Error: %s)", err)
	}

	candles := resp.Candles()
	if len(candles) != 5 {
		t.Fatalf("Expected 5 candles, got %d.", len(candles))
	}

	if expected := mustParse(t, "2020-02-01 10:05").Add(-1 * time.Nanosecond); !candles[0].EndTime().Equal(expected) {
		t.Errorf("Expected a five minute candle to close at %s, got %s.", expected, candles[0].EndTime())
	}

	if _, err := client.RetrieveCandles("BTCUSD", exchange.OneMinute, time.Time{}, time.Now(), 0); err == nil {
		t.Errorf("Expected the missing one minute file to fail.")
	}
}
