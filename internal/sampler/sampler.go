package sampler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"vesrates/internal/fetcher"
	"vesrates/internal/history"
	"vesrates/internal/scheduler"
)

// Quote is the freshest successfully fetched buy/sell pair. It always tracks
// the latest fetch, even when the corresponding sample was deduplicated out
// of the series.
type Quote struct {
	Buy     decimal.Decimal
	Sell    decimal.Decimal
	Average decimal.Decimal
}

// Snapshot is the externally observable sampler state.
type Snapshot struct {
	Series     history.Series
	Quote      *Quote
	LastUpdate time.Time
	// Loading is true until stored history surfaces or the first fetch
	// attempt completes, whatever its outcome.
	Loading  bool
	Updating bool
}

// Options tune the sampling cadence and series policy.
type Options struct {
	SampleInterval time.Duration
	PruneInterval  time.Duration
	DedupInterval  time.Duration
	Retention      time.Duration
}

// Sampler polls the P2P quote source and evolves the local price history.
type Sampler struct {
	opts   Options
	source fetcher.P2PQuoteFetcher
	store  *history.Store
	logger zerolog.Logger

	mu         sync.Mutex
	series     history.Series
	quote      *Quote
	lastUpdate time.Time
	loading    bool
	updating   bool

	now func() time.Time
}

// New constructs a sampler. store may be nil, in which case the history is
// kept in memory only for this run.
func New(opts Options, source fetcher.P2PQuoteFetcher, store *history.Store, logger zerolog.Logger) *Sampler {
	if opts.SampleInterval <= 0 {
		opts.SampleInterval = 10 * time.Second
	}
	if opts.PruneInterval <= 0 {
		opts.PruneInterval = time.Hour
	}
	if opts.DedupInterval <= 0 {
		opts.DedupInterval = history.DefaultDedupInterval
	}
	if opts.Retention <= 0 {
		opts.Retention = history.DefaultRetention
	}

	return &Sampler{
		opts:    opts,
		source:  source,
		store:   store,
		logger:  logger.With().Str("component", "sampler").Logger(),
		series:  history.Series{},
		loading: true,
		now:     time.Now,
	}
}

// Hydrate loads the persisted history and, when non-empty, surfaces its last
// sample as the current quote so callers see last-known data before the
// first network round trip completes.
func (s *Sampler) Hydrate(ctx context.Context) {
	now := s.now()
	series := s.store.Load(ctx, now)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.series = series
	if last, ok := series.Last(); ok {
		s.quote = &Quote{Buy: last.BuyPrice, Sell: last.SellPrice, Average: last.AveragePrice}
		s.lastUpdate = last.Time()
		s.loading = false
		s.logger.Info().Int("samples", len(series)).Msg("hydrated history from store")
	}
}

// Run drives the sampling and pruning loops until ctx is cancelled.
func (s *Sampler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	sample := scheduler.New(scheduler.Options{Interval: s.opts.SampleInterval, Immediate: true}, s.logger)
	prune := scheduler.New(scheduler.Options{Interval: s.opts.PruneInterval}, s.logger)

	g.Go(func() error { return sample.Run(ctx, s.Cycle) })
	g.Go(func() error { return prune.Run(ctx, s.PruneCycle) })

	return g.Wait()
}

// Cycle performs one fetch attempt. On success it appends a dedup-gated
// sample, persists the series, and refreshes the current quote; on failure
// it leaves all state untouched. Either way the loading flag latches false.
func (s *Sampler) Cycle(ctx context.Context, _ time.Time) error {
	s.mu.Lock()
	s.updating = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.updating = false
		s.mu.Unlock()
	}()

	quote, err := s.source.FetchQuote(ctx)

	// Never apply a late result after teardown.
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading = false

	if err != nil {
		s.logger.Warn().Err(err).Msg("quote fetch failed, keeping previous state")
		return nil
	}

	now := s.now()
	candidate := history.NewSample(now, quote.Ask, quote.Bid)

	var appended bool
	s.series, appended = s.series.Append(candidate, s.opts.DedupInterval)
	s.series = history.Prune(s.series, now, s.opts.Retention)

	// Save unconditionally so a deduplicated fetch still refreshes retention.
	s.store.Save(ctx, now, s.series)

	s.quote = &Quote{Buy: quote.Ask, Sell: quote.Bid, Average: candidate.AveragePrice}
	s.lastUpdate = now

	s.logger.Debug().
		Bool("appended", appended).
		Int("samples", len(s.series)).
		Str("average", candidate.AveragePrice.String()).
		Msg("sample cycle complete")

	return nil
}

// PruneCycle trims expired samples even when no new quote arrives, so a
// long-idle run still honours the retention window.
func (s *Sampler) PruneCycle(ctx context.Context, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	before := len(s.series)
	s.series = history.Prune(s.series, now, s.opts.Retention)
	s.store.Save(ctx, now, s.series)

	if dropped := before - len(s.series); dropped > 0 {
		s.logger.Info().Int("dropped", dropped).Msg("pruned expired samples")
	}
	return nil
}

// Snapshot returns a copy of the observable sampler state.
func (s *Sampler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	series := make(history.Series, len(s.series))
	copy(series, s.series)

	var quote *Quote
	if s.quote != nil {
		q := *s.quote
		quote = &q
	}

	return Snapshot{
		Series:     series,
		Quote:      quote,
		LastUpdate: s.lastUpdate,
		Loading:    s.loading,
		Updating:   s.updating,
	}
}
