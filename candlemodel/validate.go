package candlemodel

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func get() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterStructValidation(candleRowLevel, CandleRow{})
	})
	return validate
}

// candleRowLevel enforces low <= min(open,close) <= max(open,close) <= high,
// the one OHLC invariant field tags alone can't express.
func candleRowLevel(sl validator.StructLevel) {
	c := sl.Current().Interface().(CandleRow)
	lo := c.Open
	if c.Close < lo {
		lo = c.Close
	}
	hi := c.Open
	if c.Close > hi {
		hi = c.Close
	}
	if c.Low > lo {
		sl.ReportError(c.Low, "Low", "Low", "hloc_low", "")
	}
	if c.High < hi {
		sl.ReportError(c.High, "High", "High", "hloc_high", "")
	}
}

// Validate checks the CandleRow OHLC invariants from spec §3/§4.G.
func (c CandleRow) Validate() error {
	if err := get().Struct(c); err != nil {
		return fmt.Errorf("candlemodel: invalid candle row: %w", err)
	}
	return nil
}

// Validate checks that the location's fields are non-empty and that mode,
// market, and period are members of their closed enums.
func (l DataLocation) Validate() error {
	if err := get().Struct(l); err != nil {
		return fmt.Errorf("candlemodel: invalid data location: %w", err)
	}
	return nil
}

// Validate checks DataStart <= DataEnd.
func (e LogEntry) Validate() error {
	if err := get().Struct(e); err != nil {
		return fmt.Errorf("candlemodel: invalid log entry: %w", err)
	}
	return nil
}

// Validate checks GapAfter < GapBefore.
func (g Gap) Validate() error {
	if err := get().Struct(g); err != nil {
		return fmt.Errorf("candlemodel: invalid gap: %w", err)
	}
	return nil
}

// Validate checks Start <= End.
func (r DataRange) Validate() error {
	if err := get().Struct(r); err != nil {
		return fmt.Errorf("candlemodel: invalid data range: %w", err)
	}
	return nil
}

// IsValidPeriod reports whether p is a member of the closed period set.
func IsValidPeriod(p Period) bool {
	for _, v := range ValidPeriods {
		if v == p {
			return true
		}
	}
	return false
}
