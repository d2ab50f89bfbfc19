package candlelog

import "oraclehouse/candlecache/candlemodel"

// CheckContinuity reads the journal, folds mergeable neighbours (sorted by
// DataStart) together in memory the same way Compact does, and returns one
// Gap between every pair of folded spans that cannot merge. The journal
// file itself is not rewritten.
func CheckContinuity(dir string, w Warner) ([]candlemodel.Gap, error) {
	entries, err := Read(dir, w)
	if err != nil {
		return nil, err
	}
	if len(entries) < 2 {
		return nil, nil
	}

	var gaps []candlemodel.Gap
	prev := entries[0]
	for _, curr := range entries[1:] {
		if CanMerge(prev, curr) {
			if curr.DataEnd > prev.DataEnd {
				prev.DataEnd = curr.DataEnd
			}
			continue
		}
		gaps = append(gaps, candlemodel.Gap{GapAfter: prev.DataEnd, GapBefore: curr.DataStart})
		prev = curr
	}
	return gaps, nil
}

// GetDataRange returns the overall [min(DataStart), max(DataEnd)] span
// known to the journal, or nil if the journal is empty.
func GetDataRange(dir string, w Warner) (*candlemodel.DataRange, error) {
	entries, err := Read(dir, w)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	start, end := entries[0].DataStart, entries[0].DataEnd
	for _, e := range entries {
		if e.DataStart < start {
			start = e.DataStart
		}
		if e.DataEnd > end {
			end = e.DataEnd
		}
	}
	return &candlemodel.DataRange{Start: start, End: end}, nil
}

// FindMissingRanges returns the ordered sub-ranges of [targetStart,
// targetEnd] not covered by the journal: a pre-range prefix, every gap
// that falls inside the target, and a post-range suffix. When the journal
// is empty the whole target range is returned as the single missing span.
func FindMissingRanges(dir string, targetStart, targetEnd int64, w Warner) ([]candlemodel.DataRange, error) {
	dataRange, err := GetDataRange(dir, w)
	if err != nil {
		return nil, err
	}
	if dataRange == nil {
		return []candlemodel.DataRange{{Start: targetStart, End: targetEnd}}, nil
	}

	gaps, err := CheckContinuity(dir, w)
	if err != nil {
		return nil, err
	}

	var missing []candlemodel.DataRange
	if targetStart < dataRange.Start {
		missing = append(missing, candlemodel.DataRange{Start: targetStart, End: dataRange.Start})
	}
	for _, g := range gaps {
		if g.GapAfter >= targetStart && g.GapBefore <= targetEnd {
			missing = append(missing, candlemodel.DataRange{Start: g.GapAfter, End: g.GapBefore})
		}
	}
	if targetEnd > dataRange.End {
		missing = append(missing, candlemodel.DataRange{Start: dataRange.End, End: targetEnd})
	}
	return missing, nil
}
