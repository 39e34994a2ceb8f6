package slide

import (
	"fmt"
	"os"

	"github.com/mpetrov/slidejpeg/internal/baseline"
	"github.com/mpetrov/slidejpeg/internal/jpegio"
	"github.com/mpetrov/slidejpeg/internal/pyramid"
)

// ReadOneJpeg decodes the sub-rectangle of jp starting at pre-scale
// coordinates (x, y), at scale denominator s, cropped to (w, h) output
// pixels, and writes BGRA words into dest with pitch stride (spec.md
// §4.5). Opens its own file handle rather than sharing jp.File, so
// concurrent requests against the same OneJpeg never contend on a
// single file cursor (spec.md §5: "prefer an independent handle").
func ReadOneJpeg(dest []uint32, stride int, jp *pyramid.OneJpeg, x, y, s, w, h int) error {
	tileX := x / jp.TileWidth
	tileY := y / jp.TileHeight

	widthInTiles := ceilDiv(w*s+x%jp.TileWidth, jp.TileWidth)
	if max := jp.Index.WidthInTiles - tileX; widthInTiles > max {
		widthInTiles = max
	}
	heightInTiles := ceilDiv(h*s+y%jp.TileHeight, jp.TileHeight)
	if max := jp.Index.HeightInTiles - tileY; heightInTiles > max {
		heightInTiles = max
	}
	if widthInTiles <= 0 || heightInTiles <= 0 {
		return nil
	}

	strideInTiles := jp.Index.WidthInTiles
	topleft := tileY*strideInTiles + tileX

	f, err := os.Open(jp.File.Name())
	if err != nil {
		return fmt.Errorf("opening independent handle: %w", err)
	}
	defer f.Close()

	src := jpegio.New(f, jp.Index.McuStarts, topleft, widthInTiles, strideInTiles)
	// Advance past the JPEG header exactly once: the header tables
	// (quant/Huffman/frame geometry) were already parsed by BuildIndex
	// and don't change per request, so there's no need to re-parse them
	// here — just skip the same number of bytes ParseHeader would have
	// consumed, landing the source at mcu_starts[0].
	if err := src.Skip(int(jp.Index.McuStarts[0])); err != nil {
		return fmt.Errorf("skipping header: %w", err)
	}

	pix, outW, outH, err := baseline.DecodeRegion(src, jp.Index.Header, s, widthInTiles, heightInTiles)
	if err != nil {
		return err
	}

	dx := (x % jp.TileWidth) / s
	dy := (y % jp.TileHeight) / s

	rowsAvailable := outH - dy
	rows := h
	if rowsAvailable < rows {
		rows = rowsAvailable
	}
	colsAvailable := outW - dx
	cols := w
	if colsAvailable < cols {
		cols = colsAvailable
	}
	if rows <= 0 || cols <= 0 {
		return nil
	}

	for r := 0; r < rows; r++ {
		srcRow := (dy + r) * outW * 3
		dstRow := r * stride
		for c := 0; c < cols; c++ {
			o := srcRow + (dx+c)*3
			rr, g, b := pix[o], pix[o+1], pix[o+2]
			dest[dstRow+c] = 0xFF000000 | uint32(rr)<<16 | uint32(g)<<8 | uint32(b)
		}
	}
	return nil
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }
