// Package candlefile implements the low-level columnar partition-file
// codec shared by the storage layer and the range-log's rebuild path, so
// neither has to import the other to read raw candle data off disk.
//
// Partitions are stored one-per-calendar-window as CSV files (grounded in
// the teacher's CandleStore.SnapshotCSV/LoadCSV round trip), with floats
// round-tripped via strconv's shortest-exact formatting so a read after a
// write reproduces the input bit-for-bit.
package candlefile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"oraclehouse/candlecache/candlemodel"
)

var header = []string{"time", "open", "high", "low", "close", "volume"}

// ListPartitionFiles returns the sorted paths of every "*.csv" partition
// file directly inside dir. A missing directory yields an empty, nil-error
// result — spec.md §4.B requires reads to tolerate an absent location.
func ListPartitionFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if filepath.Ext(e.Name()) == ".csv" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// ReadPartitionFile parses one partition file into candle rows, in file
// order (callers sort/merge as needed).
func ReadPartitionFile(path string) ([]candlemodel.CandleRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	if _, err := r.Read(); err != nil { // header
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}

	var rows []candlemodel.CandleRow
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		row, perr := parseRow(rec)
		if perr != nil {
			return nil, fmt.Errorf("candlefile: %s: %w", path, perr)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(rec []string) (candlemodel.CandleRow, error) {
	var row candlemodel.CandleRow
	if len(rec) != 6 {
		return row, fmt.Errorf("expected 6 columns, got %d", len(rec))
	}
	t, err := strconv.ParseInt(rec[0], 10, 64)
	if err != nil {
		return row, err
	}
	vals := make([]float64, 5)
	for i, s := range rec[1:] {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return row, err
		}
		vals[i] = v
	}
	row.Time = t
	row.Open, row.High, row.Low, row.Close, row.Volume = vals[0], vals[1], vals[2], vals[3], vals[4]
	return row, nil
}

// WritePartitionFile writes rows (expected pre-sorted, pre-deduplicated)
// to path, crash-consistently: write to a temp file in the same directory
// then rename over the destination.
func WritePartitionFile(path string, rows []candlemodel.CandleRow) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		tmp.Close()
		os.Remove(tmpPath)
	}()

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		rec := []string{
			strconv.FormatInt(row.Time, 10),
			formatFloat(row.Open),
			formatFloat(row.High),
			formatFloat(row.Low),
			formatFloat(row.Close),
			formatFloat(row.Volume),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
