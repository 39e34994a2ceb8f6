// Package pyramid builds the logical resolution levels a backend serves
// from an ordered list of JPEG fragments: one OneJpeg per file, grouped
// into a dense file grid per pyramid depth, fanned out into four scale
// denominators each.
package pyramid

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/mpetrov/slidejpeg/internal/baseline"
)

// ErrFragmentOrder is returned when fragments are not supplied in strict
// (z,x,y) lexicographic order, or the first fragment is not (0,0,0).
var ErrFragmentOrder = errors.New("pyramid: fragment order violation")

// OneJpeg is one input file: its open handle plus the restart-marker
// index built over it. Immutable after NewOneJpeg returns; the file
// handle is owned by this OneJpeg for its lifetime.
type OneJpeg struct {
	File  *os.File
	Index *baseline.Index

	Width, Height         int
	TileWidth, TileHeight int
	Comment               string
}

// NewOneJpeg builds the One-JPEG Index over an already-open file. On
// error the caller retains ownership of file (mirrors OpenAll's
// "close everything already opened on failure" discipline one level up,
// in slide.AddJpegOps).
func NewOneJpeg(file *os.File) (*OneJpeg, error) {
	idx, err := baseline.BuildIndex(file)
	if err != nil {
		return nil, err
	}
	return &OneJpeg{
		File:       file,
		Index:      idx,
		Width:      idx.Header.Width,
		Height:     idx.Header.Height,
		TileWidth:  idx.TileWidth,
		TileHeight: idx.TileHeight,
		Comment:    idx.Header.Comment,
	}, nil
}

// Close releases the underlying file handle.
func (j *OneJpeg) Close() error { return j.File.Close() }

// Fragment is one input tuple (z, x, y, jpeg) in the caller-supplied
// order (spec.md §3).
type Fragment struct {
	Z, X, Y int
	Jpeg    *OneJpeg
}

// Level is one logical pyramid resolution: a dense file grid shared by
// all four scale denominators derived from the same input depth.
type Level struct {
	JpegsAcross, JpegsDown int
	PixelW, PixelH         int
	Image00W, Image00H     int
	ScaleDenom             int
	NoScaleDenomDownsample int
	Jpegs                  []*OneJpeg // row-major, jpegsDown x jpegsAcross
}

// PublishedWidth/Height are the dimensions a caller of get_dimensions
// sees: the pre-scale pixel extent divided by this level's scale_denom.
func (l *Level) PublishedWidth() int  { return l.PixelW / l.ScaleDenom }
func (l *Level) PublishedHeight() int { return l.PixelH / l.ScaleDenom }

// CollisionNote records a published-width collision between two
// distinct (z, scale_denom) pairs during Build — see DESIGN.md's
// decision on spec.md §9's "map insertion collisions" open question.
type CollisionNote struct {
	PublishedWidth int
	LostZ          int
	LostScaleDenom int
	KeptZ          int
	KeptScaleDenom int
}

var scaleDenoms = [4]int{1, 2, 4, 8}

// Build validates fragment order, accumulates each input depth into a
// dense file grid, and fans each out into four Levels (one per scale
// denominator), sorted by published width descending.
func Build(fragments []Fragment) ([]*Level, []CollisionNote, error) {
	if len(fragments) == 0 {
		return nil, nil, nil
	}
	if fragments[0].Z != 0 || fragments[0].X != 0 || fragments[0].Y != 0 {
		return nil, nil, fmt.Errorf("%w: first fragment must be (0,0,0), got (%d,%d,%d)",
			ErrFragmentOrder, fragments[0].Z, fragments[0].X, fragments[0].Y)
	}

	type rawLevel struct {
		z                  int
		lastX, lastY       int
		pixelW, pixelH     int
		image00W, image00H int
		jpegs              []*OneJpeg
	}

	var rawLevels []rawLevel
	cur := rawLevel{z: 0, lastX: -1, lastY: -1}

	flush := func() {
		rawLevels = append(rawLevels, cur)
	}

	for i, f := range fragments {
		if i > 0 {
			p := fragments[i-1]
			if !isSuccessor(p.Z, p.X, p.Y, f.Z, f.X, f.Y) {
				return nil, nil, fmt.Errorf("%w: (%d,%d,%d) does not follow (%d,%d,%d)",
					ErrFragmentOrder, f.Z, f.X, f.Y, p.Z, p.X, p.Y)
			}
			if f.Z != cur.z {
				flush()
				cur = rawLevel{z: f.Z, lastX: -1, lastY: -1}
			}
		}
		if f.Y == 0 {
			cur.pixelW += f.Jpeg.Width
		}
		if f.X == 0 {
			cur.pixelH += f.Jpeg.Height
		}
		if f.X == 0 && f.Y == 0 {
			cur.image00W = f.Jpeg.Width
			cur.image00H = f.Jpeg.Height
		}
		cur.lastX, cur.lastY = maxInt(cur.lastX, f.X), maxInt(cur.lastY, f.Y)
		cur.jpegs = append(cur.jpegs, f.Jpeg)
	}
	flush()
	level0PixelW := rawLevels[0].pixelW

	byWidth := make(map[int]*Level, len(rawLevels)*4)
	var order []int
	var notes []CollisionNote

	for _, rl := range rawLevels {
		across := rl.lastX + 1
		down := rl.lastY + 1
		if across*down != len(rl.jpegs) {
			return nil, nil, fmt.Errorf("%w: level z=%d grid %dx%d does not match %d fragments",
				ErrFragmentOrder, rl.z, across, down, len(rl.jpegs))
		}
		for _, s := range scaleDenoms {
			lvl := &Level{
				JpegsAcross:            across,
				JpegsDown:              down,
				PixelW:                 rl.pixelW,
				PixelH:                 rl.pixelH,
				Image00W:               rl.image00W,
				Image00H:               rl.image00H,
				ScaleDenom:             s,
				NoScaleDenomDownsample: level0PixelW / rl.pixelW,
				Jpegs:                  rl.jpegs,
			}
			w := lvl.PublishedWidth()
			if existing, ok := byWidth[w]; ok {
				notes = append(notes, CollisionNote{
					PublishedWidth: w,
					LostZ:          -1, // prior owner's z isn't tracked past overwrite
					LostScaleDenom: existing.ScaleDenom,
					KeptZ:          rl.z,
					KeptScaleDenom: s,
				})
			} else {
				order = append(order, w)
			}
			byWidth[w] = lvl
		}
	}

	sort.Sort(sort.Reverse(sort.IntSlice(order)))
	levels := make([]*Level, 0, len(order))
	seen := make(map[int]bool, len(order))
	for _, w := range order {
		if seen[w] {
			continue
		}
		seen[w] = true
		levels = append(levels, byWidth[w])
	}
	return levels, notes, nil
}

// LevelForScale returns the index of the level whose pre-scale pixel
// width is pixelW (which identifies one input depth z) and whose
// scale_denom equals s, or -1 if none matches exactly; no nearest-width
// fallback is attempted. Supplements the spec's
// Level[] with a lookup a caller otherwise has to do by linear scan
// every time it wants "depth z at half resolution."
func LevelForScale(levels []*Level, pixelW, s int) int {
	for i, l := range levels {
		if l.PixelW == pixelW && l.ScaleDenom == s {
			return i
		}
	}
	return -1
}

// Validate re-checks the grid size and the row-0/column-0 pixel sums of
// spec.md §8 invariant 1 after construction; it does not check that
// non-edge fragments share image00's dimensions. Useful as a cheap
// consistency check in tests or a debug CLI rather than during Build's
// hot path.
func Validate(l *Level) error {
	if len(l.Jpegs) != l.JpegsAcross*l.JpegsDown {
		return fmt.Errorf("pyramid: level has %d jpegs, want %dx%d", len(l.Jpegs), l.JpegsAcross, l.JpegsDown)
	}
	var rowW, colH int
	for x := 0; x < l.JpegsAcross; x++ {
		rowW += l.Jpegs[x].Width
	}
	for y := 0; y < l.JpegsDown; y++ {
		colH += l.Jpegs[y*l.JpegsAcross].Height
	}
	if rowW != l.PixelW {
		return fmt.Errorf("pyramid: row-0 width sum %d != PixelW %d", rowW, l.PixelW)
	}
	if colH != l.PixelH {
		return fmt.Errorf("pyramid: column-0 height sum %d != PixelH %d", colH, l.PixelH)
	}
	return nil
}

func isSuccessor(pz, px, py, z, x, y int) bool {
	switch {
	case z == pz+1 && x == 0 && y == 0:
		return true
	case z == pz && y == py+1 && x == 0:
		return true
	case z == pz && y == py && x == px+1:
		return true
	default:
		return false
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

