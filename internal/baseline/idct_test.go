package baseline

import "testing"

// A DC-only coefficient block's 1/8-scale (m=1) output must equal the
// average pixel value of a full 8x8 decode of the same block — the
// defining property that makes truncated-IDCT scaling correct.
func TestIDCTScaled_DCOnlyMatchesFullAverage(t *testing.T) {
	var coef [64]int32
	coef[0] = 160 // arbitrary DC magnitude

	full := idctScaled(&coef, 8)
	var sum float64
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			sum += full[y][x]
		}
	}
	avg := sum / 64

	reduced := idctScaled(&coef, 1)
	got := reduced[0][0]

	if diff := got - avg; diff > 0.01 || diff < -0.01 {
		t.Fatalf("1x1 DC-only output = %v, want avg of 8x8 output = %v", got, avg)
	}
}

func TestIDCTScaled_AllZeroCoefficientsProduceZero(t *testing.T) {
	var coef [64]int32
	for _, m := range []int{1, 2, 4, 8} {
		out := idctScaled(&coef, m)
		for y := 0; y < m; y++ {
			for x := 0; x < m; x++ {
				if out[y][x] != 0 {
					t.Fatalf("m=%d: out[%d][%d] = %v, want 0", m, y, x, out[y][x])
				}
			}
		}
	}
}

func TestClamp255_LevelShiftsAndClamps(t *testing.T) {
	cases := []struct {
		in   float64
		want byte
	}{
		{0, 128},
		{-200, 0},
		{200, 255},
		{-128, 0},
		{127, 255},
	}
	for _, c := range cases {
		if got := clamp255(c.in); got != c.want {
			t.Fatalf("clamp255(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}
