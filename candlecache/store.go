package candlecache

import (
	"context"
	"log"

	"oraclehouse/candlecache/candlefetch"
	"oraclehouse/candlecache/candlelock"
	"oraclehouse/candlecache/candlelog"
	"oraclehouse/candlecache/candlemodel"
	"oraclehouse/candlecache/candlepartition"
	"oraclehouse/candlecache/candlestore"
)

func dataDir(base string, loc candlemodel.DataLocation) string {
	return candlepartition.DataDir(base, loc)
}

// Store is the public entry point: a configured candle cache rooted at a
// base directory, tying storage, the range log, locking, and the fetch
// orchestrator together.
type Store struct {
	cfg Config

	// Logger traces fetch-loop progress (batch sizes, termination reason)
	// and range-log corruption warnings. Defaults to log.Default() when nil.
	Logger *log.Logger
}

// New builds a Store from cfg, which must already be valid (see
// Config.Validate).
func New(cfg Config) *Store {
	return &Store{cfg: cfg}
}

func (s *Store) logger() *log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return log.Default()
}

func (s *Store) warner() candlelog.Warner {
	return func(msg string) { s.logger().Printf("candlecache: %s", msg) }
}

// Read returns every cached row for loc within [start, end] (either bound
// may be nil for unbounded), sorted ascending by time.
func (s *Store) Read(loc candlemodel.DataLocation, start, end *int64) ([]candlemodel.CandleRow, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	return candlestore.Read(s.cfg.BaseDir, loc, start, end)
}

// Save persists rows for loc without acquiring the location lock; callers
// already holding it (e.g. inside a fetch callback) should use this.
func (s *Store) Save(loc candlemodel.DataLocation, rows []candlemodel.CandleRow) error {
	if err := loc.Validate(); err != nil {
		return err
	}
	return candlestore.Save(s.cfg.BaseDir, loc, rows)
}

// SaveLocked is Save guarded by loc's advisory lock.
func (s *Store) SaveLocked(loc candlemodel.DataLocation, rows []candlemodel.CandleRow) error {
	if err := loc.Validate(); err != nil {
		return err
	}
	return candlestore.SaveLocked(s.cfg.BaseDir, loc, rows)
}

// GetOHLCVWithCache assembles up to count rows for loc via the fetch
// orchestrator (spec §4.E), using fetch to fill whatever the cache can't
// supply. See candlefetch.GetOHLCVWithCache for the full contract.
func (s *Store) GetOHLCVWithCache(
	ctx context.Context,
	loc candlemodel.DataLocation,
	startTime *int64,
	count int,
	fetch candlefetch.FetchCallback,
	params map[string]any,
	enableCache bool,
) ([]candlemodel.CandleRow, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	return candlefetch.GetOHLCVWithCache(ctx, s.cfg.BaseDir, loc, startTime, count, fetch, params, enableCache, s.warner())
}

// CheckContinuity reports the gaps in loc's cached range log.
func (s *Store) CheckContinuity(loc candlemodel.DataLocation) ([]candlemodel.Gap, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	dir := dataDir(s.cfg.BaseDir, loc)
	return candlelog.CheckContinuity(dir, s.warner())
}

// GetDataRange reports the overall cached span for loc, or nil if nothing
// has been cached yet.
func (s *Store) GetDataRange(loc candlemodel.DataLocation) (*candlemodel.DataRange, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	dir := dataDir(s.cfg.BaseDir, loc)
	return candlelog.GetDataRange(dir, s.warner())
}

// FindMissingRanges reports the sub-ranges of [targetStart, targetEnd] not
// yet covered by loc's cache.
func (s *Store) FindMissingRanges(loc candlemodel.DataLocation, targetStart, targetEnd int64) ([]candlemodel.DataRange, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	dir := dataDir(s.cfg.BaseDir, loc)
	return candlelog.FindMissingRanges(dir, targetStart, targetEnd, s.warner())
}

// Lock acquires loc's advisory lock directly, honoring the configured
// acquire timeout if one is set, for callers that need to hold it across
// several Store calls.
func (s *Store) Lock(loc candlemodel.DataLocation) (candlelock.Unlock, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	dir := dataDir(s.cfg.BaseDir, loc)
	if timeout := s.cfg.AcquireTimeout(); timeout > 0 {
		return candlelock.AcquireTimeout(dir, timeout)
	}
	return candlelock.Acquire(dir)
}
