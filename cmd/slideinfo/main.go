// slideinfo loads a set of JPEG fragments into a Backend and prints a
// metadata report: level geometry, tile dimensions, and the comment
// carried by the first fragment. Mirrors the teacher's cmd/coginfo in
// shape (plain fmt.Printf report, os.Exit(1) on error).
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mpetrov/slidejpeg/internal/slide"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: slideinfo <z,x,y,path> [z,x,y,path ...]\n")
		fmt.Fprintf(os.Stderr, "  fragments must be given in ascending (z,x,y) order, starting at 0,0,0\n")
		os.Exit(1)
	}

	var frags []slide.FragmentInput
	for _, arg := range os.Args[1:] {
		z, x, y, path, err := parseFragmentArg(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening %s: %v\n", path, err)
			os.Exit(1)
		}
		frags = append(frags, slide.FragmentInput{Z: z, X: x, Y: y, File: f})
	}

	b, err := slide.AddJpegOps(frags, 256)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer b.Destroy()

	fmt.Println(b.Describe())
	fmt.Printf("Comment: %q\n", b.GetComment())

	for level := 0; ; level++ {
		w, h := b.GetDimensions(level)
		if w == 0 && h == 0 {
			break
		}
		fmt.Printf("  level %d: %dx%d\n", level, w, h)
	}

	// Raw header peek of the first fragment, to sanity-check the marker
	// bytes independent of the Fancy Source's seek-based parse.
	peekPath := os.Args[1][strings.LastIndex(os.Args[1], ",")+1:]
	pf, err := os.Open(peekPath)
	if err != nil {
		fmt.Printf("header peek unavailable: %v\n", err)
		return
	}
	defer pf.Close()
	raw := make([]byte, 32)
	n, err := pf.ReadAt(raw, 0)
	if err != nil && err != io.EOF {
		fmt.Printf("header peek unavailable: %v\n", err)
		return
	}
	fmt.Printf("First %d bytes of fragment 0: % x\n", n, raw[:n])
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
