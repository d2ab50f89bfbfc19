// Package candlelog implements the append-only range-log journal (spec
// §4.C) and, over the entries it reads, the continuity analyzer (§4.D):
// gap detection and missing-range planning for a target window.
package candlelog

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"oraclehouse/candlecache/candlefile"
	"oraclehouse/candlecache/candlemodel"
)

const fileName = "fetch_log.jsonl"

// Warner receives the single warning the log manager emits when it finds
// and repairs a corrupt journal. A nil Warner silently drops the message.
type Warner func(msg string)

func warn(w Warner, format string, args ...any) {
	if w == nil {
		return
	}
	w(fmt.Sprintf(format, args...))
}

// LogPath returns the journal file path for a location directory.
func LogPath(dir string) string {
	return filepath.Join(dir, fileName)
}

// Append writes one log entry with source "api", the default for data
// landed directly from an upstream fetch.
func Append(dir string, dataStart, dataEnd int64, count int) error {
	return AppendSource(dir, dataStart, dataEnd, count, candlemodel.SourceAPI)
}

// AppendSource writes one log entry with an explicit source tag.
func AppendSource(dir string, dataStart, dataEnd int64, count int, source string) error {
	n := count
	entry := candlemodel.LogEntry{
		FetchTime: time.Now().UTC(),
		DataStart: dataStart,
		DataEnd:   dataEnd,
		Count:     &n,
		Source:    source,
	}
	if err := entry.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := sonic.Marshal(entry)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(LogPath(dir), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(append(b, '\n')); err != nil {
		return err
	}
	return nil
}

// readOnce parses every non-empty line until the first one that fails,
// returning the entries read so far and whether it stopped on corruption.
func readOnce(dir string) (entries []candlemodel.LogEntry, corrupted bool, err error) {
	path := LogPath(dir)
	f, ferr := os.Open(path)
	if ferr != nil {
		if os.IsNotExist(ferr) {
			return nil, false, nil
		}
		return nil, false, ferr
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry candlemodel.LogEntry
		if uerr := sonic.UnmarshalString(line, &entry); uerr != nil {
			return entries, true, nil
		}
		entries = append(entries, entry)
	}
	if serr := scanner.Err(); serr != nil {
		return entries, false, serr
	}
	return entries, false, nil
}

// Read parses the journal into a slice of entries sorted by DataStart. On
// the first unparseable line it emits one warning via w, rebuilds the log
// from the partition files on disk, and re-reads the rebuilt journal.
func Read(dir string, w Warner) ([]candlemodel.LogEntry, error) {
	entries, corrupted, err := readOnce(dir)
	if err != nil {
		return nil, err
	}
	if corrupted {
		warn(w, "range log corrupted in %s, rebuilding from partition data", dir)
		if rerr := RebuildFromData(dir); rerr != nil {
			return nil, rerr
		}
		entries, _, err = readOnce(dir)
		if err != nil {
			return nil, err
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].DataStart < entries[j].DataStart })
	return entries, nil
}

// CanMerge reports whether two entries abut or overlap: a.End == b.Start,
// b.End == a.Start, or their ranges intersect.
func CanMerge(a, b candlemodel.LogEntry) bool {
	if a.DataEnd == b.DataStart || b.DataEnd == a.DataStart {
		return true
	}
	return a.DataStart <= b.DataEnd && b.DataStart <= a.DataEnd
}

// Compact folds consecutive mergeable entries into one, rewriting the
// journal atomically. Merged entries take Count = nil and Source =
// "compacted"; non-mergeable entries (gaps) are preserved verbatim.
func Compact(dir string, w Warner) error {
	entries, err := Read(dir, w)
	if err != nil {
		return err
	}
	if len(entries) < 2 {
		return nil
	}

	compacted := make([]candlemodel.LogEntry, 0, len(entries))
	compacted = append(compacted, entries[0])
	for _, e := range entries[1:] {
		last := &compacted[len(compacted)-1]
		if CanMerge(*last, e) {
			if e.DataStart < last.DataStart {
				last.DataStart = e.DataStart
			}
			if e.DataEnd > last.DataEnd {
				last.DataEnd = e.DataEnd
			}
			last.Count = nil
			last.Source = candlemodel.SourceCompacted
			continue
		}
		compacted = append(compacted, e)
	}

	return writeEntries(dir, compacted)
}

func writeEntries(dir string, entries []candlemodel.LogEntry) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, fileName+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		tmp.Close()
		os.Remove(tmpPath)
	}()

	w := bufio.NewWriter(tmp)
	for _, e := range entries {
		b, merr := sonic.Marshal(e)
		if merr != nil {
			return merr
		}
		if _, werr := w.Write(append(b, '\n')); werr != nil {
			return werr
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, LogPath(dir))
}

// RebuildFromData reconstructs the journal from the partition files
// present in dir, conservatively treating all persisted data as one
// continuous span (a real gap inside the data, if any, will be rediscovered
// naturally on a later query). A directory with no partition data is left
// untouched.
func RebuildFromData(dir string) error {
	files, err := candlefile.ListPartitionFiles(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return nil
	}

	var rows []candlemodel.CandleRow
	for _, f := range files {
		fileRows, rerr := candlefile.ReadPartitionFile(f)
		if rerr != nil {
			return rerr
		}
		rows = append(rows, fileRows...)
	}
	if len(rows) == 0 {
		return nil
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Time < rows[j].Time })

	minT, maxT := rows[0].Time, rows[0].Time
	for _, r := range rows {
		if r.Time < minT {
			minT = r.Time
		}
		if r.Time > maxT {
			maxT = r.Time
		}
	}

	count := len(rows)
	entry := candlemodel.LogEntry{
		FetchTime: time.Now().UTC(),
		DataStart: minT,
		DataEnd:   maxT,
		Count:     &count,
		Source:    candlemodel.SourceRebuilt,
	}
	return writeEntries(dir, []candlemodel.LogEntry{entry})
}
