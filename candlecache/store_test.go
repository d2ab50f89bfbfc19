package candlecache

import (
	"context"
	"testing"

	"oraclehouse/candlecache/candlemodel"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	cfg := Default()
	cfg.BaseDir = t.TempDir()
	return New(cfg)
}

func testLoc() candlemodel.DataLocation {
	return candlemodel.DataLocation{
		Exchange: "okx",
		Mode:     candlemodel.ModeLive,
		Market:   candlemodel.MarketSpot,
		Symbol:   "BTC-USDT",
		Period:   candlemodel.Period1m,
	}
}

func TestStoreSaveAndRead(t *testing.T) {
	s := testStore(t)
	loc := testLoc()

	rows := []candlemodel.CandleRow{{Time: 1000, Open: 1, High: 1, Low: 1, Close: 1, Volume: 1}}
	if err := s.Save(loc, rows); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Read(loc, nil, nil)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
}

func TestStoreRejectsInvalidLocation(t *testing.T) {
	s := testStore(t)
	bad := testLoc()
	bad.Period = "bogus"

	if _, err := s.Read(bad, nil, nil); err == nil {
		t.Fatalf("expected validation error for bad period")
	}
}

func TestStoreGetOHLCVWithCache(t *testing.T) {
	s := testStore(t)
	loc := testLoc()

	fetch := func(ctx context.Context, symbol string, period candlemodel.Period, startTime *int64, count int, params map[string]any) ([]candlemodel.CandleRow, error) {
		out := make([]candlemodel.CandleRow, count)
		for i := range out {
			out[i] = candlemodel.CandleRow{Time: *startTime + int64(i)*60000, Open: 1, High: 1, Low: 1, Close: 1, Volume: 1}
		}
		return out, nil
	}

	start := int64(0)
	result, err := s.GetOHLCVWithCache(context.Background(), loc, &start, 5, fetch, nil, true)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(result) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(result))
	}

	dataRange, err := s.GetDataRange(loc)
	if err != nil {
		t.Fatalf("get data range: %v", err)
	}
	if dataRange == nil {
		t.Fatalf("expected a non-nil data range after caching")
	}
}

func TestStoreFindMissingRanges(t *testing.T) {
	s := testStore(t)
	loc := testLoc()

	missing, err := s.FindMissingRanges(loc, 1000, 5000)
	if err != nil {
		t.Fatalf("find missing: %v", err)
	}
	if len(missing) != 1 || missing[0].Start != 1000 || missing[0].End != 5000 {
		t.Fatalf("unexpected missing ranges for empty cache: %+v", missing)
	}
}

func TestStoreLockRoundTrip(t *testing.T) {
	s := testStore(t)
	loc := testLoc()

	unlock, err := s.Lock(loc)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	unlock()
}
