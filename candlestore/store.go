// Package candlestore implements the partitioned columnar storage layer
// (spec §4.B): reading and writing candle rows under a DataLocation's
// directory tree, grouped into calendar-window partition files and
// deduplicated on write.
package candlestore

import (
	"os"
	"path/filepath"
	"sort"

	"oraclehouse/candlecache/candlefile"
	"oraclehouse/candlecache/candlelock"
	"oraclehouse/candlecache/candlelog"
	"oraclehouse/candlecache/candlemodel"
	"oraclehouse/candlecache/candlepartition"
)

// Read returns every row for loc in [start, end] (inclusive bounds, either
// may be nil meaning unbounded), sorted ascending by time. A location with
// no directory yet yields an empty result, not an error.
func Read(base string, loc candlemodel.DataLocation, start, end *int64) ([]candlemodel.CandleRow, error) {
	dir := candlepartition.DataDir(base, loc)
	rows, err := readDir(dir)
	if err != nil {
		return nil, err
	}
	return filterRange(rows, start, end), nil
}

func readDir(dir string) ([]candlemodel.CandleRow, error) {
	files, err := candlefile.ListPartitionFiles(dir)
	if err != nil {
		return nil, err
	}
	var rows []candlemodel.CandleRow
	for _, f := range files {
		fileRows, rerr := candlefile.ReadPartitionFile(f)
		if rerr != nil {
			return nil, rerr
		}
		rows = append(rows, fileRows...)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Time < rows[j].Time })
	return rows, nil
}

func filterRange(rows []candlemodel.CandleRow, start, end *int64) []candlemodel.CandleRow {
	if start == nil && end == nil {
		return rows
	}
	out := make([]candlemodel.CandleRow, 0, len(rows))
	for _, r := range rows {
		if start != nil && r.Time < *start {
			continue
		}
		if end != nil && r.Time > *end {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Save persists rows to loc's partition files, merging with whatever is
// already on disk per partition (incoming rows win on a time collision —
// the "last-bar updates" case), sorts each partition ascending, rewrites
// it crash-consistently, then appends one range-log entry spanning the
// whole batch. Saving an empty slice is a no-op: no directory or files are
// created and no log entry is written.
func Save(base string, loc candlemodel.DataLocation, rows []candlemodel.CandleRow) error {
	if len(rows) == 0 {
		return nil
	}

	dir := candlepartition.DataDir(base, loc)
	groups := groupByPartition(rows, loc.Period)

	for key, incoming := range groups {
		path := filepath.Join(dir, key+".csv")
		existing, err := candlefile.ReadPartitionFile(path)
		if err != nil && !os.IsNotExist(err) {
			return err
		}
		merged := dedupKeepLatest(existing, incoming)
		if err := candlefile.WritePartitionFile(path, merged); err != nil {
			return err
		}
	}

	minT, maxT := rows[0].Time, rows[0].Time
	for _, r := range rows {
		if r.Time < minT {
			minT = r.Time
		}
		if r.Time > maxT {
			maxT = r.Time
		}
	}
	return candlelog.Append(dir, minT, maxT, len(rows))
}

// SaveLocked is Save wrapped in the location's advisory lock, for callers
// that are not already running under the orchestrator's lock.
func SaveLocked(base string, loc candlemodel.DataLocation, rows []candlemodel.CandleRow) error {
	dir := candlepartition.DataDir(base, loc)
	unlock, err := candlelock.Acquire(dir)
	if err != nil {
		return err
	}
	defer unlock()
	return Save(base, loc, rows)
}

func groupByPartition(rows []candlemodel.CandleRow, period candlemodel.Period) map[string][]candlemodel.CandleRow {
	groups := make(map[string][]candlemodel.CandleRow)
	for _, r := range rows {
		key := candlepartition.PartitionKey(r.Time, period)
		groups[key] = append(groups[key], r)
	}
	return groups
}

// dedupKeepLatest merges existing and incoming, keeping the incoming row
// whenever both share a time, and returns the result sorted ascending.
func dedupKeepLatest(existing, incoming []candlemodel.CandleRow) []candlemodel.CandleRow {
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
