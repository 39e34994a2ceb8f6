package slide

import (
	"testing"

	"github.com/mpetrov/slidejpeg/internal/pyramid"
)

func TestReadOneJpeg_FullTile_ProducesUniformGrayBGRA(t *testing.T) {
	f := buildGrayFragment(t)
	jp, err := pyramid.NewOneJpeg(f)
	if err != nil {
		t.Fatalf("NewOneJpeg: %v", err)
	}
	defer jp.Close()

	dest := make([]uint32, 16*16)
	if err := ReadOneJpeg(dest, 16, jp, 0, 0, 1, 16, 16); err != nil {
		t.Fatalf("ReadOneJpeg: %v", err)
	}
	for i, px := range dest {
		if px != 0xFF808080 {
			t.Fatalf("dest[%d] = %#x, want 0xFF808080", i, px)
		}
	}
}

func TestReadOneJpeg_OffsetSubRegion_StaysWithinBounds(t *testing.T) {
	f := buildGrayFragment(t)
	jp, err := pyramid.NewOneJpeg(f)
	if err != nil {
		t.Fatalf("NewOneJpeg: %v", err)
	}
	defer jp.Close()

	dest := make([]uint32, 8*8)
	if err := ReadOneJpeg(dest, 8, jp, 8, 8, 1, 8, 8); err != nil {
		t.Fatalf("ReadOneJpeg: %v", err)
	}
	for i, px := range dest {
		if px != 0xFF808080 {
			t.Fatalf("dest[%d] = %#x, want 0xFF808080", i, px)
		}
	}
}

func TestReadOneJpeg_HalfScale_ProducesQuarterSize(t *testing.T) {
	f := buildGrayFragment(t)
	jp, err := pyramid.NewOneJpeg(f)
	if err != nil {
		t.Fatalf("NewOneJpeg: %v", err)
	}
	defer jp.Close()

	dest := make([]uint32, 8*8)
	if err := ReadOneJpeg(dest, 8, jp, 0, 0, 2, 8, 8); err != nil {
		t.Fatalf("ReadOneJpeg: %v", err)
	}
	for i, px := range dest {
		if px != 0xFF808080 {
			t.Fatalf("dest[%d] = %#x, want 0xFF808080", i, px)
		}
	}
}
