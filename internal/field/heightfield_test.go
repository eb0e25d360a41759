package field

import (
	"math"
	"sync/atomic"
	"testing"
)

func TestNormalizeMapsRangeToUnitInterval(t *testing.T) {
	hf, err := FromValues(3, 2, []float64{-2, 0.5, 7, 3, 3.3, 1})
	if err != nil {
		t.Fatalf("from values: %v", err)
	}
	lo, hi := hf.Normalize()
	if lo != -2 || hi != 7 {
		t.Fatalf("unexpected source range [%f,%f]", lo, hi)
	}
	gotLo, gotHi := MinMax(hf.Data)
	if gotLo != 0 || gotHi != 1 {
		t.Fatalf("expected [0,1], got [%v,%v]", gotLo, gotHi)
	}
	if want := 2.5 / 9; math.Abs(hf.At(1, 0)-want) > 1e-12 {
		t.Fatalf("unexpected mid value %f want %f", hf.At(1, 0), want)
	}
}

func TestNormalizeConstantFieldIsZero(t *testing.T) {
	hf, _ := FromValues(2, 2, []float64{0.4, 0.4, 0.4, 0.4})
	hf.Normalize()
	for i, v := range hf.Data {
		if v != 0 {
			t.Fatalf("cell %d = %f, want 0", i, v)
		}
	}
}

func TestFreezeDetachesBuffer(t *testing.T) {
	hf, _ := New(4, 3)
	hf.Set(2, 1, 0.75)
	snap := hf.Freeze()
	if hf.Data != nil {
		t.Fatalf("expected heightfield buffer to be released")
	}
	if snap.Width() != 4 || snap.Length() != 3 || snap.At(2, 1) != 0.75 {
		t.Fatalf("unexpected snapshot contents")
	}
	values := snap.Values()
	values[0] = 99
	if snap.At(0, 0) == 99 {
		t.Fatalf("Values must return a copy")
	}
}

func TestSnapshotEqual(t *testing.T) {
	a, _ := NewSnapshot(2, 1, []float64{0.1, 0.2})
	b, _ := NewSnapshot(2, 1, []float64{0.1, 0.2})
	c, _ := NewSnapshot(2, 1, []float64{0.1, 0.3})
	if !a.Equal(b) {
		t.Fatalf("expected identical snapshots to be equal")
	}
	if a.Equal(c) {
		t.Fatalf("expected differing snapshots to differ")
	}
}

func TestSlopeFlatAndRamp(t *testing.T) {
	flat, _ := NewSnapshot(3, 3, make([]float64, 9))
	if got := flat.Slope(1, 1, 10, 1); got != 0 {
		t.Fatalf("flat slope = %f", got)
	}

	// height rises by 0.1 per cell along x; scaled by 10 gives a 45 degree ramp.
	values := make([]float64, 9)
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			values[x+y*3] = 0.1 * float64(x)
		}
	}
	ramp, _ := NewSnapshot(3, 3, values)
	for _, x := range []int{0, 1, 2} {
		if got := ramp.Slope(x, 1, 10, 1); math.Abs(got-45) > 1e-9 {
			t.Fatalf("slope at x=%d = %f, want 45", x, got)
		}
	}
}

func TestForRowsCoversEveryRowOnce(t *testing.T) {
	const rows = 97
	var hits [rows]int32
	ForRows(8, rows, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			atomic.AddInt32(&hits[y], 1)
		}
	})
	for y, n := range hits {
		if n != 1 {
			t.Fatalf("row %d visited %d times", y, n)
		}
	}
}

func TestWorkerCount(t *testing.T) {
	if got := WorkerCount(4, 2); got != 2 {
		t.Fatalf("WorkerCount(4,2) = %d", got)
	}
	if got := WorkerCount(3, 100); got != 3 {
		t.Fatalf("WorkerCount(3,100) = %d", got)
	}
	if got := WorkerCount(0, 0); got != 0 {
		t.Fatalf("WorkerCount(0,0) = %d", got)
	}
	if got := WorkerCount(0, 1); got != 1 {
		t.Fatalf("WorkerCount(0,1) = %d", got)
	}
}
