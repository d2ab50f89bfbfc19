// Package candlefetch implements the fetch orchestrator (spec §4.E): the
// component that mixes cached reads with bounded, batched calls to an
// upstream callback to assemble a requested window of candles.
package candlefetch

import (
	"context"
	"fmt"
	"sort"

	"oraclehouse/candlecache/candlelock"
	"oraclehouse/candlecache/candlelog"
	"oraclehouse/candlecache/candlemodel"
	"oraclehouse/candlecache/candlepartition"
	"oraclehouse/candlecache/candlestore"
)

func warnf(w candlelog.Warner, format string, args ...any) {
	if w == nil {
		return
	}
	w(fmt.Sprintf(format, args...))
}

// MaxPerRequest is the upper bound on a single FetchCallback batch; the
// orchestrator never requests more than this in one call.
const MaxPerRequest = 1500

// FetchCallback fetches up to count rows from upstream starting at
// startTime (nil meaning "latest"). It is total: it may return fewer rows
// than requested, an empty slice, or a row at exactly startTime (a
// boundary echo) — callers must tolerate all three.
type FetchCallback func(ctx context.Context, symbol string, period candlemodel.Period, startTime *int64, count int, params map[string]any) ([]candlemodel.CandleRow, error)

// GetOHLCVWithCache assembles up to count rows for loc starting at or
// after startTime (nil meaning "latest"), reading from the cache where
// possible and falling back to bounded, batched calls to fetch for
// whatever the cache cannot supply. The whole call runs under loc's
// advisory lock. warn receives the range log's corruption notice (if any)
// and a trace line per network round (batch size, running total), plus the
// termination reason when the loop stops on an empty, no-progress, or
// short response; a nil warn drops them all.
func GetOHLCVWithCache(
	ctx context.Context,
	base string,
	loc candlemodel.DataLocation,
	startTime *int64,
	count int,
	fetch FetchCallback,
	params map[string]any,
	enableCache bool,
	warn candlelog.Warner,
) ([]candlemodel.CandleRow, error) {
	if count == 0 {
		return nil, nil
	}

	dir := candlepartition.DataDir(base, loc)
	unlock, err := candlelock.Acquire(dir)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := candlelog.Compact(dir, warn); err != nil {
		return nil, err
	}

	if startTime == nil {
		return fetchLatest(ctx, base, loc, count, fetch, params, enableCache)
	}

	return fetchWithSeed(ctx, base, loc, *startTime, count, fetch, params, enableCache, warn)
}

func fetchLatest(
	ctx context.Context,
	base string,
	loc candlemodel.DataLocation,
	count int,
	fetch FetchCallback,
	params map[string]any,
	enableCache bool,
) ([]candlemodel.CandleRow, error) {
	result, err := fetch(ctx, loc.Symbol, loc.Period, nil, count, params)
	if err != nil {
		return nil, err
	}
	if len(result) > 0 && enableCache {
		if err := candlestore.Save(base, loc, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func fetchWithSeed(
	ctx context.Context,
	base string,
	loc candlemodel.DataLocation,
	startTime int64,
	count int,
	fetch FetchCallback,
	params map[string]any,
	enableCache bool,
	warn candlelog.Warner,
) ([]candlemodel.CandleRow, error) {
	dir := candlepartition.DataDir(base, loc)

	var result []candlemodel.CandleRow
	current := startTime
	firstRound := true

	if enableCache {
		entries, err := candlelog.Read(dir, warn)
		if err != nil {
			return nil, err
		}
		if entry, ok := findSeedEntry(entries, startTime); ok {
			end := entry.DataEnd
			rows, rerr := candlestore.Read(base, loc, &startTime, &end)
			if rerr != nil {
				return nil, rerr
			}
			result = rows
			current = entry.DataEnd
		}
	}

	remaining := count - len(result)

	for remaining > 0 {
		batchSize := remaining
		if firstRound {
			if batchSize > MaxPerRequest {
				batchSize = MaxPerRequest
			}
		} else {
			if batchSize+1 < MaxPerRequest {
				batchSize = batchSize + 1
			} else {
				batchSize = MaxPerRequest
			}
		}

		seed := current
		newRows, err := fetch(ctx, loc.Symbol, loc.Period, &seed, batchSize, params)
		if err != nil {
			return nil, err
		}
		warnf(warn, "fetch round: batch_size=%d returned=%d total=%d", batchSize, len(newRows), len(result))
		if len(newRows) == 0 {
			warnf(warn, "fetch terminated: empty upstream response")
			break // Termination A: upstream returned nothing.
		}

		prevLen := len(result)
		result = dedupKeepLatestSorted(result, newRows)
		if len(result) == prevLen {
			warnf(warn, "fetch terminated: no progress (boundary echo only)")
			break // Termination B: no progress, upstream only echoed the boundary.
		}

		current = result[len(result)-1].Time
		remaining = count - len(result)
		firstRound = false

		if len(newRows) < batchSize {
			warnf(warn, "fetch terminated: upstream returned fewer rows than requested")
			break // Termination C: upstream signalled exhaustion.
		}
	}

	if len(result) > count {
		result = result[:count]
	}
	if len(result) > 0 && enableCache {
		if err := candlestore.Save(base, loc, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func findSeedEntry(entries []candlemodel.LogEntry, startTime int64) (candlemodel.LogEntry, bool) {
	for _, e := range entries {
		if e.DataStart <= startTime && startTime <= e.DataEnd {
			return e, true
		}
	}
	return candlemodel.LogEntry{}, false
}

func dedupKeepLatestSorted(existing, incoming []candlemodel.CandleRow) []candlemodel.CandleRow {
	byTime := make(map[int64]candlemodel.CandleRow, len(existing)+len(incoming))
	for _, r := range existing {
		byTime[r.Time] = r
	}
	for _, r := range incoming {
		byTime[r.Time] = r
	}
	out := make([]candlemodel.CandleRow, 0, len(byTime))
	for _, r := range byTime {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}
