// slideregion is a single-operation debug tool: it loads a set of JPEG
// fragments, reads one region, and writes the result as a PNG. Mirrors
// the teacher's cmd/debug in spirit (one operation, plain stderr
// reporting on failure).
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"strconv"
	"strings"

	"github.com/mpetrov/slidejpeg/internal/slide"
)

func main() {
	var (
		level int
		x, y  int
		w, h  int
		out   string
	)
	flag.IntVar(&level, "level", 0, "pyramid level index to read from")
	flag.IntVar(&x, "x", 0, "region left, in the level's published coordinate space")
	flag.IntVar(&y, "y", 0, "region top, in the level's published coordinate space")
	flag.IntVar(&w, "w", 256, "region width in pixels")
	flag.IntVar(&h, "h", 256, "region height in pixels")
	flag.StringVar(&out, "out", "region.png", "output PNG path")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: slideregion [flags] <z,x,y,path> [z,x,y,path ...]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	var frags []slide.FragmentInput
	for _, arg := range flag.Args() {
		fz, fx, fy, path, err := parseFragmentArg(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening %s: %v\n", path, err)
			os.Exit(1)
		}
		frags = append(frags, slide.FragmentInput{Z: fz, X: fx, Y: fy, File: f})
	}

	b, err := slide.AddJpegOps(frags, 256)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer b.Destroy()

	dest := make([]uint32, w*h)
	if err := b.ReadRegion(dest, x, y, level, w, h); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading region: %v\n", err)
		os.Exit(1)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i, px := range dest {
		a := byte(px >> 24)
		r := byte(px >> 16)
		g := byte(px >> 8)
		bch := byte(px)
		img.SetRGBA(i%w, i/w, color.RGBA{R: r, G: g, B: bch, A: a})
	}

	f, err := os.Create(out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", out, err)
		os.Exit(1)
	}
	defer f.Close()

	enc := &png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(f, img); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding PNG: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %dx%d region from level %d to %s\n", w, h, level, out)
}

func parseFragmentArg(arg string) (z, x, y int, path string, err error) {
	parts := strings.SplitN(arg, ",", 4)
	if len(parts) != 4 {
		return 0, 0, 0, "", fmt.Errorf("malformed fragment arg %q, want z,x,y,path", arg)
	}
	z, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, "", fmt.Errorf("parsing z in %q: %w", arg, err)
	}
	x, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, "", fmt.Errorf("parsing x in %q: %w", arg, err)
	}
	y, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, 0, "", fmt.Errorf("parsing y in %q: %w", arg, err)
	}
	return z, x, y, parts[3], nil
}
