package baseline

import (
	"fmt"
	"io"
	"os"

	"github.com/mpetrov/slidejpeg/internal/jpegio"
)

// Index is the result of a One-JPEG Index pass (spec.md §4.1): the
// parsed header plus the restart-marker offset table random access is
// built on.
type Index struct {
	Header *Header

	McuStarts []int64

	TileWidth  int
	TileHeight int

	// WidthInTiles/HeightInTiles are the file's own tile-grid extent —
	// the stride used by internal/jpegio.Source when a reader later
	// requests a sub-rectangle of this same file.
	WidthInTiles  int
	HeightInTiles int
}

// BuildIndex opens a header-only, unrestricted Source over file (no
// random access yet — there is nothing to seek to until this very scan
// produces it), parses the header, and then scans the entropy-coded
// segment byte-by-byte for restart markers to build McuStarts.
func BuildIndex(file *os.File) (*Index, error) {
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("baseline: seeking to start of file: %w", err)
	}
	src := jpegio.New(file, nil, 0, 0, 0)

	header, err := ParseHeader(src)
	if err != nil {
		return nil, err
	}

	mcusPerRow := header.MCUsPerRow()
	mcuRows := header.MCURowsInScan()
	if header.RestartInterval <= 0 || mcusPerRow%header.RestartInterval != 0 {
		return nil, ErrNoRestartMarkers
	}
	widthInTiles := mcusPerRow / header.RestartInterval
	n := widthInTiles * mcuRows

	starts := make([]int64, 0, n)
	starts = append(starts, src.Position())

	for len(starts) < n {
		b, err := src.NextByte()
		if err != nil {
			return nil, fmt.Errorf("baseline: scanning restart markers: %w", err)
		}
		if b != 0xFF {
			continue
		}
		// Consume any run of 0xFF fill bytes before the real marker byte.
		var m byte
		for {
			m, err = src.NextByte()
			if err != nil {
				return nil, fmt.Errorf("baseline: scanning restart markers: %w", err)
			}
			if m != 0xFF {
				break
			}
		}
		if isRST(m) {
			starts = append(starts, src.Position())
		} else if m == markerEOI {
			goto done
		}
		// Anything else (e.g. a stuffed 0x00 from entropy data) is not a
		// marker boundary at all; keep scanning.
	}
done:

	if len(starts) < 2 {
		return nil, ErrNoRestartMarkers
	}
	for i := 1; i < len(starts); i++ {
		if starts[i] <= starts[i-1] {
			return nil, fmt.Errorf("%w: mcu_starts not strictly increasing", ErrUnsupportedMarker)
		}
	}

	tileWidth := header.Width / widthInTiles
	tileHeight := header.Height / mcuRows
	if tileWidth*widthInTiles != header.Width || tileHeight*mcuRows != header.Height {
		return nil, fmt.Errorf("%w: width/height not a multiple of tile geometry", ErrUnsupportedMarker)
	}

	return &Index{
		Header:        header,
		McuStarts:     starts,
		TileWidth:     tileWidth,
		TileHeight:    tileHeight,
		WidthInTiles:  widthInTiles,
		HeightInTiles: mcuRows,
	}, nil
}
