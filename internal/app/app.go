package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"vesrates/internal/aggregator"
	"vesrates/internal/config"
	"vesrates/internal/fetcher"
	"vesrates/internal/history"
	"vesrates/internal/sampler"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newP2PFetcher() fetcher.P2PQuoteFetcher {
	return fetcher.NewP2P(fetcher.P2POptions{
		URL:       a.Config.P2P.URL,
		Timeout:   a.Config.P2P.RequestTimeout,
		UserAgent: a.Config.P2P.UserAgent,
	}, a.Logger)
}

func (a *App) newAggregator() *aggregator.Aggregator {
	cfg := a.Config.Official

	usd := fetcher.NewOfficial(fetcher.OfficialOptions{
		URL:       cfg.USDURL,
		Timeout:   cfg.RequestTimeout,
		UserAgent: a.Config.P2P.UserAgent,
	}, a.Logger)

	var eur fetcher.OfficialRateFetcher
	if cfg.EURURL != "" {
		eur = fetcher.NewOfficial(fetcher.OfficialOptions{
			URL:       cfg.EURURL,
			Timeout:   cfg.RequestTimeout,
			UserAgent: a.Config.P2P.UserAgent,
		}, a.Logger)
	}

	var cross fetcher.CrossRateFetcher
	if cfg.CrossURL != "" {
		cross = fetcher.NewCross(fetcher.CrossOptions{
			URL:       cfg.CrossURL,
			Timeout:   cfg.RequestTimeout,
			UserAgent: a.Config.P2P.UserAgent,
		}, a.Logger)
	}

	return aggregator.New(aggregator.Options{
		Interval: cfg.Interval,
		EURMode:  aggregator.EURMode(cfg.EURMode),
	}, a.newP2PFetcher(), usd, eur, cross, a.Logger)
}

// openStore opens the local history database. A failure degrades to
// in-memory-only operation rather than aborting the command.
func (a *App) openStore() (*history.Store, func()) {
	store, err := history.OpenStore(history.StoreOptions{
		Path:      a.Config.History.DBPath,
		Retention: a.Config.History.Retention,
	}, a.Logger)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("history store unavailable, running in memory only")
		return nil, func() {}
	}
	return store, store.Close
}

// Watch runs the sampler and aggregator loops until interrupted.
func (a *App) Watch(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore := a.openStore()
	defer closeStore()

	smp := sampler.New(sampler.Options{
		SampleInterval: a.Config.P2P.SampleInterval,
		PruneInterval:  a.Config.History.PruneInterval,
		DedupInterval:  a.Config.History.DedupInterval,
		Retention:      a.Config.History.Retention,
	}, a.newP2PFetcher(), store, a.Logger)

	smp.Hydrate(ctx)

	agg := a.newAggregator()

	a.Logger.Info().Msg("starting rate watcher")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return smp.Run(ctx) })
	g.Go(func() error { return agg.Run(ctx) })

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("watcher terminated with error")
		return err
	}

	a.Logger.Info().Msg("rate watcher stopped")
	return nil
}

// fetchSnapshot runs a single aggregation cycle and returns the result.
func (a *App) fetchSnapshot(ctx context.Context) (aggregator.Snapshot, error) {
	agg := a.newAggregator()
	if err := agg.Cycle(ctx, time.Now()); err != nil {
		return aggregator.Snapshot{}, err
	}
	return agg.Snapshot(), nil
}

// ExportOptions hold parameters for exporting the stored history.
type ExportOptions struct {
	From      *time.Time
	To        *time.Time
	PNGPath   string
	CSVPath   string
	MaxPoints int
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Limit int
}

// ConvertOptions configure a one-shot conversion.
type ConvertOptions struct {
	Amount string
	From   string
	To     string
	Swap   bool
}
