package constants

import (
	"time"
)

const (
	LogPrefixFmt = "%-19s "
	TwelveHours  = 12 * time.Hour

	//
	// TimestampLayout is the minute-resolution layout accepted on the command line and in candle
	// CSV files.
	//
	TimestampLayout = "2006-01-02 15:04"
)
