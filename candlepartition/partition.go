// Package candlepartition implements the pure time/partition utilities of
// the cache core: period-to-milliseconds conversion, partition-key
// derivation, symbol sanitization, and directory-path composition.
package candlepartition

import (
	"fmt"
	"path/filepath"
	"time"

	"oraclehouse/candlecache/candlemodel"
)

// periodMillis holds every period whose bucket width is a fixed number of
// milliseconds. 1M (calendar month) is deliberately absent: spec.md §9
// says the core must never compute a step size for it.
var periodMillis = map[candlemodel.Period]int64{
	candlemodel.Period1m:  60_000,
	candlemodel.Period3m:  3 * 60_000,
	candlemodel.Period5m:  5 * 60_000,
	candlemodel.Period15m: 15 * 60_000,
	candlemodel.Period30m: 30 * 60_000,
	candlemodel.Period1h:  3_600_000,
	candlemodel.Period2h:  2 * 3_600_000,
	candlemodel.Period4h:  4 * 3_600_000,
	candlemodel.Period6h:  6 * 3_600_000,
	candlemodel.Period8h:  8 * 3_600_000,
	candlemodel.Period12h: 12 * 3_600_000,
	candlemodel.Period1d:  24 * 3_600_000,
	candlemodel.Period3d:  3 * 24 * 3_600_000,
	candlemodel.Period1w:  7 * 24 * 3_600_000,
}

// PeriodToMillis returns the fixed bucket width of p in milliseconds.
// 1M and any unrecognized token return an error.
func PeriodToMillis(p candlemodel.Period) (int64, error) {
	ms, ok := periodMillis[p]
	if !ok {
		return 0, fmt.Errorf("candlepartition: unsupported period %q", p)
	}
	return ms, nil
}

// minuteFamily, hourFamily are the period sets partitioned by month/year
// respectively; everything else (day-level and above, including 1M) is
// partitioned by decade.
var minuteFamily = map[candlemodel.Period]bool{
	candlemodel.Period1m: true, candlemodel.Period3m: true, candlemodel.Period5m: true,
	candlemodel.Period15m: true, candlemodel.Period30m: true,
}

var hourFamily = map[candlemodel.Period]bool{
	candlemodel.Period1h: true, candlemodel.Period2h: true, candlemodel.Period4h: true,
	candlemodel.Period6h: true, candlemodel.Period8h: true, candlemodel.Period12h: true,
}

// PartitionKey returns the calendar-window key a timestamp falls into,
// per spec.md §3: month (YYYY-MM) for minute-level periods, year (YYYY)
// for hour-level periods, and decade (YYYY0s) for day-level and above.
func PartitionKey(tsMs int64, p candlemodel.Period) string {
	t := time.UnixMilli(tsMs).UTC()
	switch {
	case minuteFamily[p]:
		return fmt.Sprintf("%04d-%02d", t.Year(), t.Month())
	case hourFamily[p]:
		return fmt.Sprintf("%04d", t.Year())
	default:
		decadeStart := (t.Year() / 10) * 10
		return fmt.Sprintf("%ds", decadeStart)
	}
}

// Sanitize replaces characters that can't appear in a path segment with
// underscores; symbols typically look like "BTC/USDT" or "BTC:USDT".
func Sanitize(symbol string) string {
	out := make([]rune, 0, len(symbol))
	for _, r := range symbol {
		switch r {
		case '/', ':':
			out = append(out, '_')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}

// DataDir composes the on-disk directory for a location:
// base/exchange/mode/market/sanitize(symbol)/period/
func DataDir(base string, loc candlemodel.DataLocation) string {
	return filepath.Join(base, loc.Exchange, string(loc.Mode), string(loc.Market), Sanitize(loc.Symbol), string(loc.Period))
}
