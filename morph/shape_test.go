package morph

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

const (
	tsLayout = "2006-01-02 15:04"
)

func newTs(t *testing.T, s string) time.Time {
	t.Helper()

	ts, err := time.Parse(tsLayout, s)
	if err != nil {
		t.Fatalf("Failed to parse test timestamp %q. (Error: %s)", s, err)
	}

	return ts
}

func newK(t *testing.T, ts string, high string, low string) Candle {
	t.Helper()

	return Candle{
		Timestamp: newTs(t, ts),
		High:      decimal.RequireFromString(high),
		Low:       decimal.RequireFromString(low),
	}
}

func TestNewMergedCandle(t *testing.T) {
	k := newK(t, "2020-02-01 10:00", "10.10", "10.00")
	ck := NewMergedCandle(k)

	if !ck.Start.Equal(k.Timestamp) || !ck.End.Equal(k.Timestamp) || !ck.Extremum.Equal(k.Timestamp) {
		t.Errorf("Expected all timestamps of the merged candle to be %s, got %+v.", k.Timestamp, ck)
	}

	if !ck.High.Equal(k.High) || !ck.Low.Equal(k.Low) {
		t.Errorf("Expected high/low of %s/%s, got %s/%s.", k.High, k.Low, ck.High, ck.Low)
	}

	if ck.Count != 1 {
		t.Errorf("Expected a count of 1, got %d.", ck.Count)
	}
}

func TestMergeInclusiveIndependent(t *testing.T) {
	ck := NewMergedCandle(newK(t, "2020-02-01 10:00", "10.10", "10.00"))
	k := newK(t, "2020-02-01 10:01", "10.15", "10.05")

	if _, ok := MergeInclusive(ck, k, true); ok {
		t.Errorf("Candles that merely overlap should not be merged.")
	}
}

func TestMergeInclusiveUpwardContainsIncoming(t *testing.T) {
	ck := NewMergedCandle(newK(t, "2020-02-01 10:00", "10.20", "10.00"))
	k := newK(t, "2020-02-01 10:01", "10.15", "10.05")

	merged, ok := MergeInclusive(ck, k, true)
	if !ok {
		t.Fatalf("Expected the contained candle to be merged.")
	}

	if !merged.High.Equal(decimal.RequireFromString("10.20")) {
		t.Errorf("Expected an upward merge high of 10.20, got %s.", merged.High)
	}

	if !merged.Low.Equal(decimal.RequireFromString("10.05")) {
		t.Errorf("Expected an upward merge low of 10.05, got %s.", merged.Low)
	}

	if !merged.Extremum.Equal(ck.Extremum) {
		t.Errorf("Expected the extremum to stay at %s, got %s.", ck.Extremum, merged.Extremum)
	}

	if !merged.Start.Equal(ck.Start) || !merged.End.Equal(k.Timestamp) {
		t.Errorf("Expected the merge to span %s → %s, got %s → %s.", ck.Start, k.Timestamp, merged.Start, merged.End)
	}

	if merged.Count != 2 {
		t.Errorf("Expected a count of 2, got %d.", merged.Count)
	}
}

func TestMergeInclusiveDownwardIncomingContains(t *testing.T) {
	ck := NewMergedCandle(newK(t, "2020-02-01 10:00", "10.15", "10.05"))
	k := newK(t, "2020-02-01 10:01", "10.20", "10.00")

	merged, ok := MergeInclusive(ck, k, false)
	if !ok {
		t.Fatalf("Expected the containing candle to be merged.")
	}

	if !merged.High.Equal(decimal.RequireFromString("10.15")) {
		t.Errorf("Expected a downward merge high of 10.15, got %s.", merged.High)
	}

	if !merged.Low.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("Expected a downward merge low of 10.00, got %s.", merged.Low)
	}

	if !merged.Extremum.Equal(k.Timestamp) {
		t.Errorf("Expected the extremum to move to %s, got %s.", k.Timestamp, merged.Extremum)
	}
}

func TestMergeInclusiveEqualRanges(t *testing.T) {
	ck := NewMergedCandle(newK(t, "2020-02-01 10:00", "10.10", "10.00"))
	k := newK(t, "2020-02-01 10:01", "10.10", "10.00")

	merged, ok := MergeInclusive(ck, k, true)
	if !ok {
		t.Fatalf("Identical ranges should merge.")
	}

	// NOTE ~> Both containment tests hold; the existing candle wins the tie.

	if !merged.Extremum.Equal(ck.Extremum) {
		t.Errorf("Expected the extremum to stay at %s, got %s.", ck.Extremum, merged.Extremum)
	}
}

func TestMergeInclusiveKeepsCount(t *testing.T) {
	ck := NewMergedCandle(newK(t, "2020-02-01 10:00", "10.30", "10.00"))

	ck, _ = MergeInclusive(ck, newK(t, "2020-02-01 10:01", "10.20", "10.10"), true)
	ck, ok := MergeInclusive(ck, newK(t, "2020-02-01 10:02", "10.25", "10.12"), true)

	if !ok {
		t.Fatalf("Expected the third candle to be merged.")
	}

	if ck.Count != 3 {
		t.Errorf("Expected a count of 3 after two merges, got %d.", ck.Count)
	}

	if !ck.Low.Equal(decimal.RequireFromString("10.12")) {
		t.Errorf("Expected the upward low to ratchet to 10.12, got %s.", ck.Low)
	}
}

func TestPartingKind(t *testing.T) {
	if (Parting{Top: true}).Kind() != "top" || (Parting{}).Kind() != "bottom" {
		t.Errorf("Parting kinds should be \"top\" and \"bottom\".")
	}
}
