package writer

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/lukehollenback/tanglism/constants"
	"github.com/lukehollenback/tanglism/morph"
)

const (
	Name     = "≪writer-service≫"
	FileName = "partings.csv"

	PeriodKey        = "Period"
	KindKey          = "Kind"
	StartKey         = "Start"
	EndKey           = "End"
	ExtremumKey      = "Extremum"
	ExtremumPriceKey = "ExtremumPrice"
	CountKey         = "Count"
)

var (
	o      *Service
	once   sync.Once
	logger *log.Logger

	cfgOutputDir *string
)

func init() {
	//
	// Initialize the logger.
	//
	logger = log.New(log.Writer(), fmt.Sprintf(constants.LogPrefixFmt, Name), log.Ldate|log.Ltime|log.Lmsgprefix)

	//
	// Determine the current working directory. If that cannot be done for some reason, we are in a
	// critical failure state.
	//
	workingDir, err := os.Getwd()
	if err != nil {
		logger.Fatalf("Failed to determine the current working directory. (Error: %s)", err)
	}

	//
	// Register and parse configuration flags.
	//
	cfgOutputDir = flag.String(
		"writer-dir",
		workingDir,
		fmt.Sprintf("The directory the %s should output its CSV file of partings to.", Name),
	)
}

//
// Service represents a parting writer service instance. Every parting it is handed becomes one row
// of a CSV file.
//
type Service struct {
	mu         *sync.Mutex
	chKill     chan bool
	chStopped  chan bool
	outputDir  string
	outputFile *os.File
	writer     *csv.Writer
}

//
// Instance returns a singleton instance of the service.
//
func Instance() *Service {
	once.Do(func() {
		o = New(*cfgOutputDir)
	})

	return o
}

//
// New instantiates a standalone writer service that outputs to the provided directory. Most
// callers want Instance().
//
func New(outputDir string) *Service {
	return &Service{
		mu:        &sync.Mutex{},
		outputDir: outputDir,
	}
}

//
// Start fires up the service. It is up to the caller to not call this multiple times in a row
// without stopping the service and waiting for full termination in between. A channel that can be
// blocked on for a "true" value – which indicates that start up is complete – is returned.
//
func (o *Service) Start() (<-chan bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	//
	// (Re)initialize our instance variables.
	//
	o.chKill = make(chan bool, 1)
	o.chStopped = make(chan bool, 1)

	//
	// Create the output CSV file.
	//
	var err error

	outputFilePath := filepath.Join(o.outputDir, FileName)
	o.outputFile, err = os.Create(outputFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	logger.Printf("Outputting CSV to %s.", outputFilePath)

	//
	// Create the CSV writer and use it to write out the header row.
	//
	o.writer = csv.NewWriter(o.outputFile)

	err = o.write([]string{PeriodKey, KindKey, StartKey, EndKey, ExtremumKey, ExtremumPriceKey, CountKey})
	if err != nil {
		return nil, err
	}

	//
	// Fire off a goroutine as the executor for the service.
	//
	go o.service()

	//
	// Return our "started" channel in case the caller wants to block on it and log some debug info.
	//
	chStarted := make(chan bool, 1)
	chStarted <- true

	logger.Printf("Started.")

	return chStarted, nil
}

//
// Stop tells the service to shut down. It is up to the caller to not call this multiple times in
// a row without starting the service first. A channel that can be blocked on for a "true" value –
// which indicates that shut down is complete – is returned.
//
func (o *Service) Stop() (<-chan bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	//
	// Log some debug info.
	//
	logger.Printf("Stopping...")

	//
	// Tell the goroutines that were spun off by the service to shutdown.
	//
	o.chKill <- true

	//
	// Return the "stopped" channel that the caller can block on if they need to know that the
	// service has completely shutdown.
	//
	return o.chStopped, nil
}

//
// Write outputs a row describing the provided parting of the provided candle period.
//
func (o *Service) Write(period string, parting morph.Parting) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.writer == nil {
		return errors.New("cannot write partings before the writer service has been started")
	}

	return o.write([]string{
		period,
		parting.Kind(),
		parting.Start.Format(time.RFC3339),
		parting.End.Format(time.RFC3339),
		parting.Extremum.Format(time.RFC3339),
		parting.ExtremumPrice.String(),
		strconv.Itoa(parting.Count),
	})
}

//
// write outputs a single row and pushes it through to the output file so that the file can be
// watched while the service runs.
//
func (o *Service) write(record []string) error {
	if err := o.writer.Write(record); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}

	o.writer.Flush()

	if err := o.writer.Error(); err != nil {
		return fmt.Errorf("failed to flush row: %w", err)
	}

	return nil
}

//
// service executes the top-level logic of the service. It is intended to be spun off into its own
// goroutine when the service is started.
//
func (o *Service) service() {
	//
	// Yield indefinitely.
	//
	<-o.chKill

	o.mu.Lock()

	//
	// Flush the CSV writer's buffer to the output file.
	//
	o.writer.Flush()
	o.writer = nil

	//
	// Close the handle on the output file.
	//
	err := o.outputFile.Close()
	if err != nil {
		logger.Printf("Failed to close handle on output file. (Error: %s)", err)
	}

	o.mu.Unlock()

	//
	// Send the signal that we have shut down.
	//
	o.chStopped <- true
}
