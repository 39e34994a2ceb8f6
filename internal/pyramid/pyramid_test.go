package pyramid

import "testing"

// fakeJpeg builds a OneJpeg carrying only the fields Build reads
// (Width/Height) — no real file or index is needed to exercise the
// accounting logic.
func fakeJpeg(w, h int) *OneJpeg { return &OneJpeg{Width: w, Height: h} }

func TestBuild_SingleLevel_AccumulatesPixelDims(t *testing.T) {
	// A 2x2 grid of 100x100 fragments at z=0.
	frags := []Fragment{
		{Z: 0, X: 0, Y: 0, Jpeg: fakeJpeg(100, 100)},
		{Z: 0, X: 1, Y: 0, Jpeg: fakeJpeg(100, 100)},
		{Z: 0, X: 0, Y: 1, Jpeg: fakeJpeg(100, 100)},
		{Z: 0, X: 1, Y: 1, Jpeg: fakeJpeg(100, 100)},
	}
	levels, notes, err := Build(frags)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(notes) != 0 {
		t.Fatalf("unexpected collision notes: %v", notes)
	}
	if len(levels) != 4 {
		t.Fatalf("len(levels) = %d, want 4 (one z times four scale_denoms)", len(levels))
	}
	// Widths: 200/1, 200/2=100, 200/4=50, 200/8=25, sorted descending.
	wantWidths := []int{200, 100, 50, 25}
	for i, l := range levels {
		if got := l.PublishedWidth(); got != wantWidths[i] {
			t.Fatalf("levels[%d].PublishedWidth() = %d, want %d", i, got, wantWidths[i])
		}
		if l.PixelW != 200 || l.PixelH != 200 {
			t.Fatalf("levels[%d] PixelW/H = %d/%d, want 200/200", i, l.PixelW, l.PixelH)
		}
		if l.JpegsAcross != 2 || l.JpegsDown != 2 {
			t.Fatalf("levels[%d] grid = %dx%d, want 2x2", i, l.JpegsAcross, l.JpegsDown)
		}
	}
}

func TestBuild_RejectsOutOfOrderFragments(t *testing.T) {
	frags := []Fragment{
		{Z: 0, X: 0, Y: 0, Jpeg: fakeJpeg(100, 100)},
		{Z: 0, X: 1, Y: 0, Jpeg: fakeJpeg(100, 100)},
		{Z: 0, X: 0, Y: 1, Jpeg: fakeJpeg(100, 100)}, // should come after y=0,x=1 fine
		// now a bad jump: z=0,x=1,y=0 again (not a valid successor)
		{Z: 0, X: 1, Y: 0, Jpeg: fakeJpeg(100, 100)},
	}
	if _, _, err := Build(frags); err == nil {
		t.Fatalf("expected ErrFragmentOrder, got nil")
	}
}

func TestBuild_RejectsNonZeroFirstFragment(t *testing.T) {
	frags := []Fragment{
		{Z: 0, X: 1, Y: 0, Jpeg: fakeJpeg(100, 100)},
	}
	if _, _, err := Build(frags); err == nil {
		t.Fatalf("expected ErrFragmentOrder for non-(0,0,0) first fragment, got nil")
	}
}

func TestBuild_MultiLevel_NoScaleDenomDownsampleTracksDepth(t *testing.T) {
	frags := []Fragment{
		{Z: 0, X: 0, Y: 0, Jpeg: fakeJpeg(200, 200)},
		{Z: 1, X: 0, Y: 0, Jpeg: fakeJpeg(100, 100)},
	}
	levels, _, err := Build(frags)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// z=0 scale_denom=1 should have no_scale_denom_downsample == 1.
	// z=1 scale_denom=1 should have no_scale_denom_downsample == 2
	// (level0_pixel_w=200, this level's pixel_w=100).
	var z0s1, z1s1 *Level
	for _, l := range levels {
		if l.PixelW == 200 && l.ScaleDenom == 1 {
			z0s1 = l
		}
		if l.PixelW == 100 && l.ScaleDenom == 1 {
			z1s1 = l
		}
	}
	if z0s1 == nil || z1s1 == nil {
		t.Fatalf("expected to find both z=0 and z=1 scale_denom=1 levels")
	}
	if z0s1.NoScaleDenomDownsample != 1 {
		t.Fatalf("z0 NoScaleDenomDownsample = %d, want 1", z0s1.NoScaleDenomDownsample)
	}
	if z1s1.NoScaleDenomDownsample != 2 {
		t.Fatalf("z1 NoScaleDenomDownsample = %d, want 2", z1s1.NoScaleDenomDownsample)
	}
}

func TestValidate_DetectsMismatchedGrid(t *testing.T) {
	l := &Level{
		JpegsAcross: 2,
		JpegsDown:   2,
		PixelW:      200,
		PixelH:      200,
		Jpegs: []*OneJpeg{
			fakeJpeg(100, 100), fakeJpeg(100, 100),
			fakeJpeg(100, 100), fakeJpeg(100, 100),
		},
	}
	if err := Validate(l); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	bad := &Level{JpegsAcross: 2, JpegsDown: 2, PixelW: 200, PixelH: 200, Jpegs: []*OneJpeg{fakeJpeg(100, 100)}}
	if err := Validate(bad); err == nil {
		t.Fatalf("expected error for mismatched grid size")
	}
}
