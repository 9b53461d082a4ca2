package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

const (
	// StorageKey is the single fixed key the serialized series lives under.
	StorageKey = "usdt_price_history"

	createHistorySQL = `CREATE TABLE IF NOT EXISTS price_history (
        key   TEXT PRIMARY KEY,
        value BLOB NOT NULL
    );`

	loadSeriesSQL = `SELECT value FROM price_history WHERE key = ?;`

	saveSeriesSQL = `INSERT INTO price_history (key, value) VALUES (?, ?)
    ON CONFLICT (key) DO UPDATE SET value = excluded.value;`
)

// StoreOptions tune the local history store.
type StoreOptions struct {
	Path      string
	Retention time.Duration
}

// Store persists the whole price series as one JSON document under a single
// key in a local sqlite file. Every read and write re-applies the retention
// filter, and no operation ever surfaces a failure to its caller beyond
// Open itself.
type Store struct {
	opts   StoreOptions
	db     *sql.DB
	logger zerolog.Logger
}

// OpenStore opens (and if needed creates) the local history database.
func OpenStore(opts StoreOptions, logger zerolog.Logger) (*Store, error) {
	if opts.Path == "" {
		return nil, errors.New("history db path not configured")
	}
	if opts.Retention <= 0 {
		opts.Retention = DefaultRetention
	}

	db, err := sql.Open("sqlite", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping history db: %w", err)
	}

	log := logger.With().Str("component", "history_store").Logger()

	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		log.Warn().Err(err).Msg("failed to set WAL mode")
	}
	if _, err := db.Exec(createHistorySQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history table: %w", err)
	}

	return &Store{opts: opts, db: db, logger: log}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() {
	if s == nil || s.db == nil {
		return
	}
	_ = s.db.Close()
}

// Load reads the persisted series. A missing row, unreadable database, or
// bytes that fail to parse as a sample array all yield an empty series; the
// caller never sees an error. Expired samples are filtered before returning.
func (s *Store) Load(ctx context.Context, now time.Time) Series {
	if s == nil || s.db == nil {
		return Series{}
	}

	var raw []byte
	err := s.db.QueryRowContext(ctx, loadSeriesSQL, StorageKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return Series{}
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load stored history")
		return Series{}
	}

	var series Series
	if err := json.Unmarshal(raw, &series); err != nil {
		s.logger.Error().Err(err).Msg("stored history unparseable, starting empty")
		return Series{}
	}

	return Prune(series, now, s.opts.Retention)
}

// Save re-applies the retention filter and overwrites the stored series.
// Persistence failures are logged and swallowed so the in-memory series keeps
// working when the disk is unavailable or full.
func (s *Store) Save(ctx context.Context, now time.Time, series Series) {
	if s == nil || s.db == nil {
		return
	}

	pruned := Prune(series, now, s.opts.Retention)

	raw, err := json.Marshal(pruned)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to serialize history")
		return
	}

	if _, err := s.db.ExecContext(ctx, saveSeriesSQL, StorageKey, raw); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist history, continuing in memory")
	}
}
