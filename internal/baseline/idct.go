package baseline

import "math"

// cosTable[x][u] = cos((2x+1)*u*pi/16), the basis this decoder's inverse
// DCT shares with a full 8-point decode — only x is ever fractional, to
// address the center of an x-pixel run when computing a truncated
// (scaled) output block below.
var cosTable [8][8]float64

func init() {
	for x := 0; x < 8; x++ {
		for u := 0; u < 8; u++ {
			cosTable[x][u] = math.Cos(float64(2*x+1) * float64(u) * math.Pi / 16)
		}
	}
}

func alpha(u int) float64 {
	if u == 0 {
		return 1 / math.Sqrt2
	}
	return 1
}

// idctScaled performs the inverse DCT of an 8x8 block of dequantized
// coefficients, but only evaluates the low m x m frequencies and only
// produces an m x m output block (m = 8/scaleDenom). This is the
// reduced-size IDCT trick that makes 1/2, 1/4 and 1/8 decode nearly free:
// instead of computing all 64 output samples and discarding most of
// them, only the coefficients and output positions that survive
// downscaling are ever touched.
//
// For m < 8 the output sample centers are not integers (e.g. m=4 samples
// land at the centers of adjacent pixel pairs in the full-resolution
// block), so the cosine basis is evaluated at fractional x via direct
// math.Cos calls rather than the precomputed 8-point table.
func idctScaled(coef *[64]int32, m int) [][]float64 {
	out := make([][]float64, m)
	for i := range out {
		out[i] = make([]float64, m)
	}
	if m == 8 {
		idctScaled8(coef, out)
		return out
	}

	step := 8.0 / float64(m)
	xc := make([]float64, m)
	for x := 0; x < m; x++ {
		xc[x] = (float64(x)+0.5)*step - 0.5
	}

	cosCache := make([][]float64, m)
	for u := 0; u < m; u++ {
		cosCache[u] = make([]float64, m)
		for x := 0; x < m; x++ {
			cosCache[u][x] = math.Cos((2*xc[x] + 1) * float64(u) * math.Pi / 16)
		}
	}

	for y := 0; y < m; y++ {
		for x := 0; x < m; x++ {
			var sum float64
			for v := 0; v < m; v++ {
				av := alpha(v)
				rowBase := v * 8
				var rowSum float64
				for u := 0; u < m; u++ {
					c := coef[rowBase+u]
					if c == 0 {
						continue
					}
					rowSum += alpha(u) * float64(c) * cosCache[u][x]
				}
				sum += av * rowSum * cosCache[v][y]
			}
			out[y][x] = sum / 4
		}
	}
	return out
}

// idctScaled8 is the m=8 (scale_denom=1) case: a direct separable
// evaluation using the precomputed integer-sample cosine table. Uses the
// classic row/column 1-D pass split rather than a flattened double sum,
// the same structural shape as a full-size decode.
func idctScaled8(coef *[64]int32, out [][]float64) {
	var tmp [8][8]float64
	for v := 0; v < 8; v++ {
		rowBase := v * 8
		for x := 0; x < 8; x++ {
			var sum float64
			for u := 0; u < 8; u++ {
				c := coef[rowBase+u]
				if c == 0 {
					continue
				}
				sum += alpha(u) * float64(c) * cosTable[x][u]
			}
			tmp[v][x] = sum
		}
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			var sum float64
			for v := 0; v < 8; v++ {
				sum += alpha(v) * tmp[v][x] * cosTable[y][v]
			}
			out[y][x] = sum / 4
		}
	}
}

func clamp255(v float64) byte {
	iv := int(math.Round(v)) + 128
	if iv < 0 {
		return 0
	}
	if iv > 255 {
		return 255
	}
	return byte(iv)
}
