package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/logrusorgru/aurora"
	"github.com/lukehollenback/tanglism/exchange"
	"github.com/lukehollenback/tanglism/exchange/binance"
	"github.com/lukehollenback/tanglism/exchange/csvfile"
	"github.com/lukehollenback/tanglism/metrics"
	"github.com/lukehollenback/tanglism/tracker"
	"github.com/lukehollenback/tanglism/tracker/candle"
	"github.com/lukehollenback/tanglism/tracker/monitor"
	"github.com/lukehollenback/tanglism/tracker/parting"
	"github.com/lukehollenback/tanglism/tracker/writer"
)

var (
	cfgSource       *string
	cfgCSVFile      *string
	cfgFetchRetries *uint64
	cfgMetricsAddr  *string
)

func init() {
	//
	// Register and parse configuration flags.
	//
	cfgSource = flag.String(
		"source",
		"binance",
		"Where historical candles are loaded from when backtesting. Valid values are binance and csv.",
	)

	cfgCSVFile = flag.String(
		"csv-file",
		"candles-"+csvfile.PeriodPlaceholder+".csv",
		"The CSV file of historical candles to backtest against when the source is csv. "+
			csvfile.PeriodPlaceholder+" is replaced with each period.",
	)

	cfgFetchRetries = flag.Uint64(
		"fetch-retries",
		5,
		"How many times a transiently-failing historical candle request is retried.",
	)

	cfgMetricsAddr = flag.String(
		"metrics-addr",
		"",
		"The address to serve prometheus metrics on (e.g. :9090). Metrics are not served if empty.",
	)
}

func main() {
	flag.Parse()

	//
	// Register a kill signal handler with the operating system so that we can gracefully shutdown if
	// necessary.
	//
	osInterrupt := make(chan os.Signal, 1)

	signal.Notify(osInterrupt, os.Interrupt)

	//
	// Expose metrics if desired.
	//
	metrics.Register()

	if *cfgMetricsAddr != "" {
		srv := metrics.Serve(*cfgMetricsAddr)
		defer srv.Close()
	}

	//
	// Wire the historical candle source and the parting trackers into the monitor service.
	//
	client, err := newClient(*cfgSource)
	if err != nil {
		log.Fatalf("Failed to set up the historical candle source. (Error: %s)", err)
	}

	monitor.Instance().SetClient(client)

	trackers, err := parting.Init()
	if err != nil {
		log.Fatalf("Failed to initialize the parting trackers. (Error: %s)", err)
	}

	//
	// Start up all necessary services. The monitor service goes last because it immediately begins
	// producing candles.
	//
	services := []tracker.Service{writer.Instance(), candle.Instance(), monitor.Instance()}

	for _, service := range services {
		chStarted, err := service.Start()
		if err != nil {
			log.Fatalf("Failed to start a service. (Error: %s)", err)
		}

		<-chStarted
	}

	//
	// Block until the monitor service runs dry or we are shut down by the operating system.
	//
	select {
	case <-monitor.Instance().Done():
		if err := monitor.Instance().Err(); err != nil {
			log.Printf("The monitor service has failed. Shutting down all services... (Error: %s)", err)
		} else if monitor.Instance().Backtest() {
			parting.Finish(trackers)
		}

	case <-osInterrupt:
		log.Print("An operating system interrupt has been received. Shutting down all services...")
	}

	//
	// Stop all running services, in reverse order.
	//
	for i := len(services) - 1; i >= 0; i-- {
		chStopped, err := services[i].Stop()
		if err != nil {
			log.Fatalf("Failed to stop a service. (Error: %s)", err)
		}

		<-chStopped
	}

	//
	// Wrap everything up.
	//
	for _, t := range trackers {
		log.Printf("%s: %s partings.", t.Interval(), aurora.Bold(len(t.Partings())))
	}

	log.Print("Goodbye.")
}

//
// newClient instantiates the configured historical candle source.
//
func newClient(source string) (exchange.Client, error) {
	switch source {
	case "binance":
		client := binance.NewClient()
		client.SetMaxRetries(*cfgFetchRetries)

		if key := os.Getenv("BINANCE_API_KEY"); key != "" {
			client.Auth(key, os.Getenv("BINANCE_API_SECRET"))
		}

		return client, nil

	case "csv":
		return csvfile.NewClient(*cfgCSVFile), nil

	default:
		return nil, fmt.Errorf("unknown candle source %q", source)
	}
}
