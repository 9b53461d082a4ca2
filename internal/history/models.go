package history

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultRetention is the maximum age a sample may reach before it is pruned.
	DefaultRetention = 30 * 24 * time.Hour
	// DefaultDedupInterval is the minimum spacing between two stored samples.
	DefaultDedupInterval = 5 * time.Second

	displayTimeLayout = "02 Jan 15:04"
)

// Sample is one observed USDT/VES quote at a point in time.
type Sample struct {
	// Timestamp is the capture instant in milliseconds since epoch.
	Timestamp int64 `json:"timestamp"`
	// DisplayTime is the chart label rendered once at capture time.
	DisplayTime  string          `json:"time"`
	AveragePrice decimal.Decimal `json:"averagePrice"`
	BuyPrice     decimal.Decimal `json:"buyPrice"`
	SellPrice    decimal.Decimal `json:"sellPrice"`
}

// NewSample builds a sample for the given capture instant with the average
// and display label derived up front.
func NewSample(at time.Time, buy, sell decimal.Decimal) Sample {
	return Sample{
		Timestamp:    at.UnixMilli(),
		DisplayTime:  at.Format(displayTimeLayout),
		AveragePrice: buy.Add(sell).Div(decimal.NewFromInt(2)),
		BuyPrice:     buy,
		SellPrice:    sell,
	}
}

// Time returns the capture instant.
func (s Sample) Time() time.Time {
	return time.UnixMilli(s.Timestamp)
}

// Series is an append-only price history ordered by non-decreasing timestamp.
type Series []Sample

// Last returns the most recent sample, if any.
func (s Series) Last() (Sample, bool) {
	if len(s) == 0 {
		return Sample{}, false
	}
	return s[len(s)-1], true
}

// Prune returns the series with every sample older than retention (relative
// to now) removed. Samples exactly at the boundary are kept.
func Prune(s Series, now time.Time, retention time.Duration) Series {
	if retention <= 0 {
		retention = DefaultRetention
	}

	cutoff := now.UnixMilli() - retention.Milliseconds()
	result := make(Series, 0, len(s))
	for _, sample := range s {
		if sample.Timestamp >= cutoff {
			result = append(result, sample)
		}
	}
	return result
}

// Append adds candidate to the series unless it falls inside the dedup window
// of the last stored sample. The earliest sample of any window wins; later
// candidates within minGap of it are rejected, never substituted. The second
// return reports whether the candidate was stored.
func (s Series) Append(candidate Sample, minGap time.Duration) (Series, bool) {
	if minGap <= 0 {
		minGap = DefaultDedupInterval
	}

	last, ok := s.Last()
	if ok && candidate.Timestamp-last.Timestamp < minGap.Milliseconds() {
		return s, false
	}
	return append(s, candidate), true
}
