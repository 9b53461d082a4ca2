package aggregator

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"vesrates/internal/fetcher"
	"vesrates/internal/scheduler"
)

// EURMode selects how the EUR reference rate is obtained.
type EURMode string

const (
	// EURModeEndpoint fetches EUR from its own official endpoint.
	EURModeEndpoint EURMode = "endpoint"
	// EURModeCross derives EUR from USD via a cross-rate source.
	EURModeCross EURMode = "cross"
	// EURModeNone omits the EUR rate entirely.
	EURModeNone EURMode = "none"
)

// OfficialRate is the central-bank view of the snapshot.
type OfficialRate struct {
	USD              decimal.Decimal
	EUR              decimal.Decimal
	AsOf             time.Time
	PercentChangeUSD decimal.Decimal
	PercentChangeEUR decimal.Decimal
}

// P2PRate is the peer-to-peer marketplace view of the snapshot.
type P2PRate struct {
	Buy     decimal.Decimal
	Sell    decimal.Decimal
	Average decimal.Decimal
	AsOf    time.Time
}

// Snapshot is the merged best-known view of both rate sources. Each sub-rate
// is either freshly fetched or carried over unchanged from the previous
// cycle; a failed fetch never blanks a last-good value.
type Snapshot struct {
	Official  *OfficialRate
	P2P       *P2PRate
	Loading   bool
	LastError string
}

// Options tune the aggregation cycle.
type Options struct {
	Interval time.Duration
	EURMode  EURMode
}

// Aggregator polls the official and P2P sources once per cycle and publishes
// a merged snapshot with per-source staleness tolerance.
type Aggregator struct {
	opts   Options
	p2p    fetcher.P2PQuoteFetcher
	usd    fetcher.OfficialRateFetcher
	eur    fetcher.OfficialRateFetcher
	cross  fetcher.CrossRateFetcher
	logger zerolog.Logger

	mu   sync.Mutex
	snap Snapshot

	now func() time.Time
}

// New constructs an aggregator. eur and cross may be nil depending on the
// configured EUR mode.
func New(opts Options, p2p fetcher.P2PQuoteFetcher, usd fetcher.OfficialRateFetcher, eur fetcher.OfficialRateFetcher, cross fetcher.CrossRateFetcher, logger zerolog.Logger) *Aggregator {
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}
	if opts.EURMode == "" {
		opts.EURMode = EURModeEndpoint
	}

	return &Aggregator{
		opts:   opts,
		p2p:    p2p,
		usd:    usd,
		eur:    eur,
		cross:  cross,
		logger: logger.With().Str("component", "aggregator").Logger(),
		snap:   Snapshot{Loading: true},
		now:    time.Now,
	}
}

// Run drives the aggregation loop until ctx is cancelled.
func (a *Aggregator) Run(ctx context.Context) error {
	loop := scheduler.New(scheduler.Options{Interval: a.opts.Interval, Immediate: true}, a.logger)
	return loop.Run(ctx, a.Cycle)
}

// Cycle fetches both sources independently and merges the results. A failure
// in one source never short-circuits the other and never disturbs either
// source's last-good value.
func (a *Aggregator) Cycle(ctx context.Context, _ time.Time) error {
	official := a.fetchOfficial(ctx)
	p2p := a.fetchP2P(ctx)

	if ctx.Err() != nil {
		return ctx.Err()
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if official != nil {
		a.snap.Official = official
	}
	if p2p != nil {
		a.snap.P2P = p2p
	}
	a.snap.Loading = false
	a.snap.LastError = ""

	return nil
}

func (a *Aggregator) fetchP2P(ctx context.Context) *P2PRate {
	quote, err := a.p2p.FetchQuote(ctx)
	if err != nil {
		a.logger.Warn().Err(err).Msg("p2p fetch failed, keeping previous value")
		return nil
	}

	asOf := quote.Time
	if asOf.IsZero() {
		asOf = a.now()
	}

	return &P2PRate{
		Buy:     quote.Ask,
		Sell:    quote.Bid,
		Average: quote.Ask.Add(quote.Bid).Div(decimal.NewFromInt(2)),
		AsOf:    asOf,
	}
}

func (a *Aggregator) fetchOfficial(ctx context.Context) *OfficialRate {
	usd, err := a.usd.FetchRate(ctx)
	if err != nil {
		a.logger.Warn().Err(err).Msg("official usd fetch failed, keeping previous value")
		return nil
	}

	rate := &OfficialRate{USD: usd, AsOf: a.now()}

	switch a.opts.EURMode {
	case EURModeEndpoint:
		if a.eur == nil {
			break
		}
		eur, err := a.eur.FetchRate(ctx)
		if err != nil {
			a.logger.Warn().Err(err).Msg("official eur fetch failed")
			break
		}
		rate.EUR = eur
	case EURModeCross:
		// Derivation is chained only off a successful positive USD fetch.
		if a.cross == nil || usd.Sign() <= 0 {
			break
		}
		eurusd, err := a.cross.FetchEURUSD(ctx)
		if err != nil {
			a.logger.Warn().Err(err).Msg("cross rate fetch failed")
			break
		}
		rate.EUR = usd.Mul(eurusd)
	case EURModeNone:
	}

	a.mu.Lock()
	prev := a.snap.Official
	a.mu.Unlock()

	if prev != nil {
		rate.PercentChangeUSD = percentChange(prev.USD, rate.USD)
		rate.PercentChangeEUR = percentChange(prev.EUR, rate.EUR)
	}

	return rate
}

// Snapshot returns a copy of the current merged view.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap := a.snap
	if a.snap.Official != nil {
		official := *a.snap.Official
		snap.Official = &official
	}
	if a.snap.P2P != nil {
		p2p := *a.snap.P2P
		snap.P2P = &p2p
	}
	return snap
}

func percentChange(prev, cur decimal.Decimal) decimal.Decimal {
	if prev.Sign() <= 0 {
		return decimal.Zero
	}
	return cur.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100))
}
