package fetcher

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a P2P marketplace buy/sell observation. Time is the source's own
// quote instant and is zero when the source omits it.
type Quote struct {
	Ask  decimal.Decimal
	Bid  decimal.Decimal
	Time time.Time
}

// P2PQuoteFetcher retrieves the peer-to-peer USDT/VES quote.
type P2PQuoteFetcher interface {
	FetchQuote(ctx context.Context) (Quote, error)
}

// OfficialRateFetcher retrieves one central-bank reference rate.
type OfficialRateFetcher interface {
	FetchRate(ctx context.Context) (decimal.Decimal, error)
}

// CrossRateFetcher retrieves the EUR/USD cross rate used to derive the EUR
// reference when the official source has no EUR endpoint.
type CrossRateFetcher interface {
	FetchEURUSD(ctx context.Context) (decimal.Decimal, error)
}
