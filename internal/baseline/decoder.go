package baseline

import (
	"fmt"

	"github.com/mpetrov/slidejpeg/internal/jpegio"
)

// zigZag maps zig-zag scan position -> natural (row-major) position
// within an 8x8 block, the standard JPEG coefficient ordering.
var zigZag = [64]int{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

type plane struct {
	w, h, stride int
	data         []byte
}

// DecodeRegion decodes exactly widthInTiles x heightInTiles tiles (as
// the caller has already configured src's window via jpegio.New) at the
// given scale denominator, returning an interleaved RGB buffer.
// widthInTiles/heightInTiles are expressed in the same tile units as
// internal/jpegio.Source's width/stride parameters: widthInTiles is the
// number of restart-interval-wide bands, heightInTiles the number of MCU
// rows. This is the "lie about dimensions" step of spec.md §4.5: the
// decoder only ever sees and decodes this smaller, internally consistent
// image, never the full file.
func DecodeRegion(src *jpegio.Source, h *Header, scaleDenom, widthInTiles, heightInTiles int) (pix []byte, outW, outH int, err error) {
	if scaleDenom != 1 && scaleDenom != 2 && scaleDenom != 4 && scaleDenom != 8 {
		return nil, 0, 0, fmt.Errorf("baseline: unsupported scale_denom %d", scaleDenom)
	}
	m := 8 / scaleDenom

	totalMCUCols := widthInTiles * h.RestartInterval
	totalMCURows := heightInTiles

	planes := make([]plane, len(h.Components))
	for i, c := range h.Components {
		w := totalMCUCols * c.H * m
		ht := totalMCURows * c.V * m
		planes[i] = plane{w: w, h: ht, stride: w, data: make([]byte, w*ht)}
	}

	br := newBitReader(src)
	dcPred := make([]int, len(h.Components))

	for mcuRow := 0; mcuRow < totalMCURows; mcuRow++ {
		for tileCol := 0; tileCol < widthInTiles; tileCol++ {
			for i := range dcPred {
				dcPred[i] = 0
			}
			for k := 0; k < h.RestartInterval; k++ {
				mcuCol := tileCol*h.RestartInterval + k
				if err := decodeMCU(br, h, planes, dcPred, mcuCol, mcuRow, m); err != nil {
					return nil, 0, 0, fmt.Errorf("baseline: decoding MCU (%d,%d): %w", mcuCol, mcuRow, err)
				}
			}
			isLast := mcuRow == totalMCURows-1 && tileCol == widthInTiles-1
			if !isLast {
				if err := consumeRestart(src, br); err != nil {
					return nil, 0, 0, err
				}
			}
		}
	}

	outW = totalMCUCols * h.HmaxH * m
	outH = totalMCURows * h.HmaxV * m
	pix = assembleRGB(h, planes, outW, outH)
	return pix, outW, outH, nil
}

// consumeRestart discards the current bit-buffer partial byte (the
// encoder byte-aligns before every RSTn) and reads the two marker bytes
// directly off the source, bypassing the bit reader.
func consumeRestart(src *jpegio.Source, br *bitReader) error {
	br.resetAtRestart()
	b0, err := src.NextByte()
	if err != nil {
		return fmt.Errorf("baseline: reading restart marker: %w", err)
	}
	b1, err := src.NextByte()
	if err != nil {
		return fmt.Errorf("baseline: reading restart marker: %w", err)
	}
	if b0 != 0xFF || !(isRST(b1) || b1 == markerEOI) {
		return fmt.Errorf("%w: expected restart marker, got %02X %02X", ErrInvalidScanData, b0, b1)
	}
	return nil
}

func decodeMCU(br *bitReader, h *Header, planes []plane, dcPred []int, mcuCol, mcuRow, m int) error {
	for ci, c := range h.Components {
		sc := h.scanComponents[ci]
		for by := 0; by < c.V; by++ {
			for bx := 0; bx < c.H; bx++ {
				var coefZZ [64]int32
				symbol, err := br.decode(h.huffDC[sc.td])
				if err != nil {
					return err
				}
				diff, err := br.receiveExtend(int(symbol))
				if err != nil {
					return err
				}
				dcPred[ci] += diff
				coefZZ[0] = int32(dcPred[ci])

				k := 1
				for k < 64 {
					rs, err := br.decode(h.huffAC[sc.ta])
					if err != nil {
						return err
					}
					run := int(rs >> 4)
					size := int(rs & 0x0F)
					if size == 0 {
						if run == 15 {
							k += 16 // ZRL: 16 zero coefficients
							continue
						}
						break // EOB
					}
					k += run
					if k >= 64 {
						break
					}
					val, err := br.receiveExtend(size)
					if err != nil {
						return err
					}
					coefZZ[k] = int32(val)
					k++
				}

				var coef [64]int32
				qt := h.quant[c.Tq]
				if qt == nil {
					return ErrMissingTable
				}
				for i := 0; i < 64; i++ {
					coef[zigZag[i]] = coefZZ[i] * int32(qt[i])
				}

				samples := idctScaled(&coef, m)
				pl := &planes[ci]
				originX := (mcuCol*c.H + bx) * m
				originY := (mcuRow*c.V + by) * m
				for y := 0; y < m; y++ {
					row := pl.data[(originY+y)*pl.stride+originX:]
					for x := 0; x < m; x++ {
						row[x] = clamp255(samples[y][x])
					}
				}
			}
		}
	}
	return nil
}

// assembleRGB upsamples every component plane to full MCU resolution
// with nearest-neighbor replication and applies the standard JFIF
// YCbCr->RGB matrix when three components are present.
func assembleRGB(h *Header, planes []plane, outW, outH int) []byte {
	pix := make([]byte, outW*outH*3)
	if len(planes) == 1 {
		p := &planes[0]
		for y := 0; y < outH; y++ {
			sy := y * p.h / outH
			for x := 0; x < outW; x++ {
				sx := x * p.w / outW
				v := p.data[sy*p.stride+sx]
				o := (y*outW + x) * 3
				pix[o], pix[o+1], pix[o+2] = v, v, v
			}
		}
		return pix
	}

	yP, cbP, crP := &planes[0], &planes[1], &planes[2]
	for y := 0; y < outH; y++ {
		yy := y * yP.h / outH
		by := y * cbP.h / outH
		ry := y * crP.h / outH
		for x := 0; x < outW; x++ {
			yx := x * yP.w / outW
			bx := x * cbP.w / outW
			rx := x * crP.w / outW

			yv := float64(yP.data[yy*yP.stride+yx])
			cb := float64(cbP.data[by*cbP.stride+bx]) - 128
			cr := float64(crP.data[ry*crP.stride+rx]) - 128

			r := clampF(yv + 1.402*cr)
			g := clampF(yv - 0.344136*cb - 0.714136*cr)
			b := clampF(yv + 1.772*cb)

			o := (y*outW + x) * 3
			pix[o], pix[o+1], pix[o+2] = r, g, b
		}
	}
	return pix
}

func clampF(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v + 0.5)
}
