package candlelog

import "testing"

func TestCheckContinuityNoGaps(t *testing.T) {
	dir := t.TempDir()
	must(t, Append(dir, 1000, 2000, 10))
	must(t, Append(dir, 2000, 3000, 10))

	gaps, err := CheckContinuity(dir, nil)
	if err != nil {
		t.Fatalf("check continuity: %v", err)
	}
	if len(gaps) != 0 {
		t.Fatalf("expected no gaps, got %+v", gaps)
	}
}

func TestCheckContinuityWithGap(t *testing.T) {
	dir := t.TempDir()
	must(t, Append(dir, 1000, 2000, 10))
	must(t, Append(dir, 3000, 4000, 10))

	gaps, err := CheckContinuity(dir, nil)
	if err != nil {
		t.Fatalf("check continuity: %v", err)
	}
	if len(gaps) != 1 {
		t.Fatalf("expected 1 gap, got %+v", gaps)
	}
	if gaps[0].GapAfter != 2000 || gaps[0].GapBefore != 3000 {
		t.Fatalf("unexpected gap: %+v", gaps[0])
	}
}

func TestFindMissingRangesCompleteMiss(t *testing.T) {
	dir := t.TempDir()
	missing, err := FindMissingRanges(dir, 1000, 5000, nil)
	if err != nil {
		t.Fatalf("find missing: %v", err)
	}
	if len(missing) != 1 || missing[0].Start != 1000 || missing[0].End != 5000 {
		t.Fatalf("unexpected missing ranges: %+v", missing)
	}
}

func TestFindMissingRangesPartial(t *testing.T) {
	dir := t.TempDir()
	must(t, Append(dir, 2000, 3000, 10))
	must(t, Append(dir, 4000, 5000, 10))

	missing, err := FindMissingRanges(dir, 1000, 6000, nil)
	if err != nil {
		t.Fatalf("find missing: %v", err)
	}
	if len(missing) != 3 {
		t.Fatalf("expected 3 missing ranges, got %+v", missing)
	}
	if missing[0].Start != 1000 || missing[0].End != 2000 {
		t.Fatalf("unexpected prefix range: %+v", missing[0])
	}
	if missing[1].Start != 3000 || missing[1].End != 4000 {
		t.Fatalf("unexpected gap range: %+v", missing[1])
	}
	if missing[2].Start != 5000 || missing[2].End != 6000 {
		t.Fatalf("unexpected suffix range: %+v", missing[2])
	}
}

func TestGetDataRangeEmpty(t *testing.T) {
	dir := t.TempDir()
	r, err := GetDataRange(dir, nil)
	if err != nil {
		t.Fatalf("get data range: %v", err)
	}
	if r != nil {
		t.Fatalf("expected nil range, got %+v", r)
	}
}
