package candlemodel

import "testing"

func TestCandleRowValidate(t *testing.T) {
	ok := CandleRow{Time: 1000, Open: 10, High: 12, Low: 9, Close: 11, Volume: 5}
	if err := ok.Validate(); err != nil {
		t.Fatalf("expected valid row, got %v", err)
	}

	bad := CandleRow{Time: 1000, Open: 10, High: 9, Low: 9, Close: 11, Volume: 5}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected high < max(open,close) to fail validation")
	}

	negative := CandleRow{Time: 1000, Open: -1, High: 12, Low: 9, Close: 11, Volume: 5}
	if err := negative.Validate(); err == nil {
		t.Fatalf("expected negative open to fail validation")
	}
}

func TestDataLocationValidate(t *testing.T) {
	loc := DataLocation{Exchange: "binance", Mode: ModeLive, Market: MarketFuture, Symbol: "BTC/USDT", Period: Period15m}
	if err := loc.Validate(); err != nil {
		t.Fatalf("expected valid location, got %v", err)
	}

	bad := loc
	bad.Mode = "paper"
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected unknown mode to fail validation")
	}

	bad2 := loc
	bad2.Exchange = ""
	if err := bad2.Validate(); err == nil {
		t.Fatalf("expected empty exchange to fail validation")
	}
}

func TestLogEntryValidate(t *testing.T) {
	ok := LogEntry{DataStart: 100, DataEnd: 200, Source: SourceAPI}
	if err := ok.Validate(); err != nil {
		t.Fatalf("expected valid entry, got %v", err)
	}

	bad := LogEntry{DataStart: 200, DataEnd: 100, Source: SourceAPI}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected data_start > data_end to fail validation")
	}
}

func TestGapValidate(t *testing.T) {
	ok := Gap{GapAfter: 100, GapBefore: 200}
	if err := ok.Validate(); err != nil {
		t.Fatalf("expected valid gap, got %v", err)
	}

	bad := Gap{GapAfter: 200, GapBefore: 100}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected gap_after >= gap_before to fail validation")
	}
}

func TestIsValidPeriod(t *testing.T) {
	if !IsValidPeriod(Period1m) {
		t.Fatalf("expected 1m to be valid")
	}
	if IsValidPeriod("2m") {
		t.Fatalf("expected 2m to be invalid")
	}
}
