package history

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func sampleAt(ts int64) Sample {
	return NewSample(time.UnixMilli(ts), decimal.NewFromInt(100), decimal.NewFromInt(102))
}

func TestNewSampleAverage(t *testing.T) {
	s := NewSample(time.UnixMilli(1000), decimal.NewFromInt(100), decimal.NewFromInt(102))
	if !s.AveragePrice.Equal(decimal.NewFromInt(101)) {
		t.Fatalf("average should be 101, got %s", s.AveragePrice)
	}
	if s.Timestamp != 1000 {
		t.Fatalf("timestamp should be 1000, got %d", s.Timestamp)
	}
	if s.DisplayTime == "" {
		t.Fatal("display time should be rendered at capture")
	}
}

func TestPruneBounds(t *testing.T) {
	now := time.Now()
	retention := 30 * 24 * time.Hour

	series := Series{
		sampleAt(now.Add(-31 * 24 * time.Hour).UnixMilli()),
		sampleAt(now.Add(-retention).UnixMilli()), // exactly at the boundary
		sampleAt(now.Add(-time.Hour).UnixMilli()),
		sampleAt(now.UnixMilli()),
	}

	pruned := Prune(series, now, retention)
	if len(pruned) != 3 {
		t.Fatalf("expected 3 samples after prune, got %d", len(pruned))
	}

	cutoff := now.UnixMilli() - retention.Milliseconds()
	for _, s := range pruned {
		if s.Timestamp < cutoff {
			t.Fatalf("sample at %d survived past the retention cutoff %d", s.Timestamp, cutoff)
		}
	}
}

func TestPruneIdempotent(t *testing.T) {
	now := time.Now()
	series := Series{sampleAt(now.UnixMilli())}

	once := Prune(series, now, DefaultRetention)
	twice := Prune(once, now, DefaultRetention)
	if len(once) != len(twice) {
		t.Fatalf("pruning an already-pruned series should be a no-op")
	}
}

func TestAppendDedupMonotonicity(t *testing.T) {
	attempts := []int64{1000, 2000, 5999, 6000, 8000, 11000, 11001}

	series := Series{}
	for _, ts := range attempts {
		series, _ = series.Append(sampleAt(ts), 5*time.Second)
	}

	if len(series) > len(attempts) {
		t.Fatalf("series can never be longer than the attempt count")
	}

	// accepted: 1000, 6000, 11000
	want := []int64{1000, 6000, 11000}
	if len(series) != len(want) {
		t.Fatalf("expected %d accepted samples, got %d", len(want), len(series))
	}
	for i, ts := range want {
		if series[i].Timestamp != ts {
			t.Fatalf("sample %d: expected timestamp %d, got %d", i, ts, series[i].Timestamp)
		}
	}

	for i := 1; i < len(series); i++ {
		if series[i].Timestamp-series[i-1].Timestamp < 5000 {
			t.Fatalf("consecutive samples closer than the dedup interval")
		}
	}
}

func TestAppendKeepsEarliestOfWindow(t *testing.T) {
	series := Series{}

	series, ok := series.Append(sampleAt(1000), 5*time.Second)
	if !ok {
		t.Fatal("first sample must always be accepted")
	}

	later := NewSample(time.UnixMilli(3000), decimal.NewFromInt(100), decimal.NewFromInt(104))
	series, ok = series.Append(later, 5*time.Second)
	if ok {
		t.Fatal("sample 2000ms after the last must be rejected, not substituted")
	}
	if len(series) != 1 || series[0].Timestamp != 1000 {
		t.Fatalf("the earliest sample of the window must survive")
	}
}
