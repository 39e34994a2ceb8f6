// Package slide implements the Region Router and One-JPEG Reader: given
// a requested rectangle in a level's published coordinate space, it
// walks the intersected file grid and drives one random-access decode
// per intersected file, assembling the results into a caller-owned BGRA
// buffer.
package slide

import (
	"fmt"

	"github.com/mpetrov/slidejpeg/internal/pyramid"
)

// ReadRegion writes up to w*h BGRA pixels (native-endian 0xAARRGGBB
// words) into dest, row-major with pitch w. Only the part of the request
// inside the level's pixel extent is written; the rest of dest is left
// untouched. An out-of-range level index
// is not an error: it writes nothing, matching get_dimensions returning
// (0,0) for the same index (spec.md §4.4, §7).
func ReadRegion(dest []uint32, levels []*pyramid.Level, level, x, y, w, h int) error {
	if level < 0 || level >= len(levels) {
		return nil
	}
	if w <= 0 || h <= 0 {
		return nil
	}
	L := levels[level]
	s := L.ScaleDenom
	d := L.NoScaleDenomDownsample

	srcX0 := (x * d / s) * s
	srcY0 := (y * d / s) * s
	endSrcX := min(srcX0+w*s, L.PixelW)
	endSrcY := min(srcY0+h*s, L.PixelH)

	for srcY := srcY0; srcY < endSrcY; {
		fileY := srcY / L.Image00H
		originY := fileY * L.Image00H
		endInFileY := min((fileY+1)*L.Image00H, endSrcY) - originY
		startInFileY := srcY - originY
		destH := (endInFileY - startInFileY) / s
		destY := (srcY - srcY0) / s

		for srcX := srcX0; srcX < endSrcX; {
			fileX := srcX / L.Image00W
			originX := fileX * L.Image00W
			endInFileX := min((fileX+1)*L.Image00W, endSrcX) - originX
			startInFileX := srcX - originX
			destW := (endInFileX - startInFileX) / s
			destX := (srcX - srcX0) / s

			if fileY >= L.JpegsDown || fileX >= L.JpegsAcross {
				return fmt.Errorf("slide: region (%d,%d) maps outside the %dx%d file grid", fileX, fileY, L.JpegsAcross, L.JpegsDown)
			}
			jp := L.Jpegs[fileY*L.JpegsAcross+fileX]

			if destW > 0 && destH > 0 {
				sub := sliceWindow(dest, w, destX, destY, destW, destH)
				if err := ReadOneJpeg(sub, w, jp, startInFileX, startInFileY, s, destW, destH); err != nil {
					return fmt.Errorf("slide: decoding file at grid (%d,%d): %w", fileX, fileY, err)
				}
			}

			srcX = originX + endInFileX
		}
		srcY = originY + endInFileY
	}
	return nil
}

// sliceWindow returns the sub-slice of dest (row-major, pitch w) whose
// top-left corner is (x,y), sized so callers can write up to h rows of
// up to width pixels without needing dest's full bounds threaded
// through every call.
func sliceWindow(dest []uint32, pitch, x, y, width, height int) []uint32 {
	start := y*pitch + x
	// One row short of covering the full rectangle's byte span is fine:
	// ReadOneJpeg only ever indexes dest[row*pitch : row*pitch+width] for
	// row in [0,height), never past dest's declared length as long as
	// dest itself was sized pitch*totalHeight by the caller.
	return dest[start:]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
