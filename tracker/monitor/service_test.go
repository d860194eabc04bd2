package monitor

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lukehollenback/tanglism/constants"
	"github.com/lukehollenback/tanglism/exchange"
	"github.com/lukehollenback/tanglism/exchange/csvfile"
	"github.com/lukehollenback/tanglism/tracker/candle"
	"github.com/shopspring/decimal"

	ws "github.com/gorilla/websocket"
	coinbasepro "github.com/preichenberger/go-coinbasepro/v2"
)

func newTs(t *testing.T, s string) time.Time {
	t.Helper()

	ts, err := time.Parse(constants.TimestampLayout, s)
	if err != nil {
		t.Fatalf("Failed to parse test timestamp %q. (Error: %s)", s, err)
	}

	return ts
}

//
// waitFor blocks on the provided channel, failing the test if it takes too long.
//
func waitFor[T any](t *testing.T, ch <-chan T, what string) {
	t.Helper()

	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatalf("Timed out waiting for %s.", what)
	}
}

type failingClient struct{}

func (failingClient) RetrieveCandles(string, exchange.Interval, time.Time, time.Time, int) (exchange.Response, error) {
	return nil, errors.New("exchange is down")
}

func TestObtainBacktestCursors(t *testing.T) {
	svc := New()
	svc.SetBacktest(newTs(t, "2020-02-01 00:00"), newTs(t, "2020-02-02 00:00"))

	windows := make([][2]time.Time, 0)

	for s, e, c := svc.obtainBacktestCursors(nil); c; s, e, c = svc.obtainBacktestCursors(&s) {
		windows = append(windows, [2]time.Time{s, e})
	}

	if len(windows) != 3 {
		t.Fatalf("Expected 3 backtest windows, but got %d. (Windows: %v)", len(windows), windows)
	}

	if expected := newTs(t, "2020-02-01 12:00").Add(-1 * time.Nanosecond); !windows[0][1].Equal(expected) {
		t.Errorf("Expected the first window to end at %s, but it ended at %s.", expected, windows[0][1])
	}

	if !windows[2][0].Equal(windows[2][1]) || !windows[2][1].Equal(newTs(t, "2020-02-02 00:00")) {
		t.Errorf("Expected the last window to be clamped to the backtest end, but got %v.", windows[2])
	}
}

func TestBacktest(t *testing.T) {
	dir := t.TempDir()

	oneMin := &strings.Builder{}
	for i := 0; i < 10; i++ {
		fmt.Fprintf(oneMin, "2020-02-01 10:%02d,10,%d,9,10\n", i, 11+i)
	}

	fiveMin := "2020-02-01 10:00,10,15,9,10\n2020-02-01 10:05,10,20,9,10\n"

	for name, contents := range map[string]string{"1m": oneMin.String(), "5m": fiveMin} {
		if err := os.WriteFile(filepath.Join(dir, name+".csv"), []byte(contents), 0o644); err != nil {
			t.Fatalf("Failed to write fixture. (Error: %s)", err)
		}
	}

	svc := New()
	svc.SetClient(csvfile.NewClient(filepath.Join(dir, csvfile.PeriodPlaceholder+".csv")))
	svc.SetBacktest(newTs(t, "2020-02-01 10:00"), newTs(t, "2020-02-01 10:09"))

	produced := make([]string, 0)

	for _, interval := range []exchange.Interval{exchange.FiveMinute, exchange.OneMinute} {
		interval := interval

		svc.RegisterCandleCloseHandler(interval, func(c *candle.Candle) {
			produced = append(produced, fmt.Sprintf("%s@%s", interval, c.Start().Format("15:04")))
		})
	}

	chStarted, err := svc.Start()
	if err != nil {
		t.Fatalf("Failed to start the monitor service. (Error: %s)", err)
	}

	waitFor(t, chStarted, "start up")
	waitFor(t, svc.Done(), "the backtest to complete")

	if err := svc.Err(); err != nil {
		t.Fatalf("Expected the backtest to succeed, but it failed. (Error: %s)", err)
	}

	expected := []string{
		"1m@10:00", "1m@10:01", "1m@10:02", "1m@10:03", "1m@10:04", "5m@10:00",
		"1m@10:05", "1m@10:06", "1m@10:07", "1m@10:08", "1m@10:09", "5m@10:05",
	}

	if strings.Join(produced, " ") != strings.Join(expected, " ") {
		t.Errorf("Expected candles to be produced as %v, but got %v.", expected, produced)
	}

	chStopped, _ := svc.Stop()
	waitFor(t, chStopped, "shut down")
}

func TestBacktestClientFailure(t *testing.T) {
	svc := New()
	svc.SetClient(failingClient{})
	svc.SetBacktest(newTs(t, "2020-02-01 10:00"), newTs(t, "2020-02-01 10:09"))
	svc.RegisterCandleCloseHandler(exchange.OneMinute, func(*candle.Candle) {
		t.Errorf("Expected no candles to be produced.")
	})

	if _, err := svc.Start(); err != nil {
		t.Fatalf("Failed to start the monitor service. (Error: %s)", err)
	}

	waitFor(t, svc.Done(), "the backtest to fail")

	if svc.Err() == nil {
		t.Errorf("Expected the client failure to be reported.")
	}
}

func TestStartValidation(t *testing.T) {
	if _, err := New().Start(); err == nil {
		t.Errorf("Expected starting without handlers to fail.")
	}

	svc := New()
	svc.SetBacktest(newTs(t, "2020-02-01 10:00"), newTs(t, "2020-02-01 10:09"))
	svc.RegisterCandleCloseHandler(exchange.OneMinute, func(*candle.Candle) {})

	if _, err := svc.Start(); err == nil {
		t.Errorf("Expected backtesting without a client to fail.")
	}
}

func TestLiveTrades(t *testing.T) {
	upgrader := ws.Upgrader{}
	chSubscribed := make(chan coinbasepro.Message, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Failed to upgrade the connection. (Error: %s)", err)

			return
		}
		defer conn.Close()

		subscribe := coinbasepro.Message{}
		if err := conn.ReadJSON(&subscribe); err != nil {
			t.Errorf("Failed to read the subscription request. (Error: %s)", err)

			return
		}

		chSubscribed <- subscribe

		for _, msg := range []string{
			`{"type": "subscriptions"}`,
			`{"type": "last_match", "price": "10.00", "time": "2020-02-01T10:00:30.000000Z"}`,
			`{"type": "heartbeat"}`,
			`{"type": "match", "price": "11.00", "time": "2020-02-01T10:00:40.000000Z"}`,
			`{"type": "match", "price": "9.50", "time": "2020-02-01T10:01:05.000000Z"}`,
		} {
			if err := conn.WriteMessage(ws.TextMessage, []byte(msg)); err != nil {
				t.Errorf("Failed to write a feed message. (Error: %s)", err)

				return
			}
		}

		//
		// Hold the connection open until the monitor hangs up.
		//
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	chClosed := make(chan *candle.Candle, 1)

	svc := New()
	svc.SetCandleService(candle.New())
	svc.SetProduct("BTC-USD")
	svc.SetFeedURL("ws" + strings.TrimPrefix(srv.URL, "http"))
	svc.RegisterCandleCloseHandler(exchange.OneMinute, func(c *candle.Candle) {
		chClosed <- c
	})

	if _, err := svc.Start(); err != nil {
		t.Fatalf("Failed to start the monitor service. (Error: %s)", err)
	}

	select {
	case subscribe := <-chSubscribed:
		if subscribe.Type != "subscribe" || len(subscribe.Channels) != 2 || subscribe.Channels[1].Name != "matches" {
			t.Errorf("Expected a heartbeat and matches subscription, but got %+v.", subscribe)
		}

	case <-time.After(5 * time.Second):
		t.Fatalf("Timed out waiting for the subscription request.")
	}

	select {
	case c := <-chClosed:
		if !c.Start().Equal(time.Date(2020, 2, 1, 10, 0, 0, 0, time.UTC)) {
			t.Errorf("Expected the 10:00 candle to close, but got the one starting at %s.", c.Start())
		}

		if !c.HighAmt().Equal(decimal.NewFromInt(11)) || !c.LowAmt().Equal(decimal.NewFromInt(10)) {
			t.Errorf("Expected the closed candle to range from 10 to 11, but got %s.", c)
		}

	case <-time.After(5 * time.Second):
		t.Fatalf("Timed out waiting for a candle to close.")
	}

	chStopped, _ := svc.Stop()
	waitFor(t, chStopped, "shut down")

	if err := svc.Err(); err != nil {
		t.Errorf("Expected a clean shut down, but got %s.", err)
	}
}
