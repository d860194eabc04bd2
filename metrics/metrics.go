package metrics

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/lukehollenback/tanglism/constants"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	Name      = "≪metrics-service≫"
	namespace = "tanglism"
)

var (
	once   sync.Once
	logger *log.Logger

	//
	// CandlesConsumed counts closed candles fed into a parting shaper, by candle period.
	//
	CandlesConsumed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "candles_consumed_total",
		Help:      "Total closed candles consumed by parting shapers",
	}, []string{"period"})

	//
	// Partings counts confirmed partings, by candle period and kind (top or bottom).
	//
	Partings = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "partings_total",
		Help:      "Total partings detected",
	}, []string{"period", "kind"})

	//
	// FetchRetries counts retried historical candle requests.
	//
	FetchRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_retries_total",
		Help:      "Total retried historical candle requests",
	})
)

func init() {
	logger = log.New(log.Writer(), fmt.Sprintf(constants.LogPrefixFmt, Name), log.Ldate|log.Ltime|log.Lmsgprefix)
}

//
// Register registers every collector with the provided registerer, or with the default one if none
// is given. Only the first call has any effect.
//
func Register(registerers ...prometheus.Registerer) {
	once.Do(func() {
		var reg prometheus.Registerer = prometheus.DefaultRegisterer

		if len(registerers) > 0 && registerers[0] != nil {
			reg = registerers[0]
		}

		reg.MustRegister(CandlesConsumed, Partings, FetchRetries)
	})
}

//
// Serve exposes the default registry on the provided address under /metrics. The returned server
// is already listening in its own goroutine; shut it down with its Close() method.
//
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("Metrics endpoint failed. (Error: %s)", err)
		}
	}()

	logger.Printf("Serving metrics on %s/metrics.", addr)

	return srv
}
