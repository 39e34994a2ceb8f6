package slide

import (
	"fmt"
	"io"
	"os"

	"github.com/mpetrov/slidejpeg/internal/cache"
	"github.com/mpetrov/slidejpeg/internal/pyramid"
)

// FragmentInput is one caller-supplied fragment for AddJpegOps: an
// already-open file plus its grid position. Ownership of File transfers
// to the backend (or, on setup failure, is closed by AddJpegOps itself)
// — mirroring spec.md §6's "elements are consumed" setup contract.
type FragmentInput struct {
	Z, X, Y int
	File    *os.File
}

// Logger is the narrow interface Backend uses to note conditions itself:
// every failed read_region (an unexpected EOF mid-decode among them) is
// reported through it. *log.Logger satisfies this.
type Logger interface {
	Printf(format string, args ...interface{})
}

type discardLogger struct{}

func (discardLogger) Printf(string, ...interface{}) {}

// Backend is the external interface of §6: read_region, get_dimensions,
// get_comment, destroy, built by AddJpegOps.
type Backend struct {
	jpegs  []*pyramid.OneJpeg
	levels []*pyramid.Level
	cache  *cache.Cache
	Logger Logger
}

// AddJpegOps builds the One-JPEG Index for every fragment and runs the
// Pyramid Builder over the result, producing a ready-to-query Backend.
// On any error every file passed in fragments is closed before
// returning, since spec.md §6 treats setup as all-or-nothing.
func AddJpegOps(fragments []FragmentInput, cacheSize int) (*Backend, error) {
	jpegs := make([]*pyramid.OneJpeg, 0, len(fragments))
	closeAll := func() {
		for _, j := range jpegs {
			j.Close()
		}
	}

	frags := make([]pyramid.Fragment, len(fragments))
	for i, in := range fragments {
		jp, err := pyramid.NewOneJpeg(in.File)
		if err != nil {
			closeAll()
			for _, rest := range fragments[i:] {
				rest.File.Close()
			}
			return nil, fmt.Errorf("slide: indexing fragment (%d,%d,%d): %w", in.Z, in.X, in.Y, err)
		}
		jpegs = append(jpegs, jp)
		frags[i] = pyramid.Fragment{Z: in.Z, X: in.X, Y: in.Y, Jpeg: jp}
	}

	levels, notes, err := pyramid.Build(frags)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("slide: building pyramid: %w", err)
	}

	b := &Backend{
		jpegs:  jpegs,
		levels: levels,
		cache:  cache.New(cacheSize),
		Logger: discardLogger{},
	}
	for _, n := range notes {
		b.Logger.Printf("slide: level published-width collision at width %d (z=%d,s=%d overwrote s=%d)",
			n.PublishedWidth, n.KeptZ, n.KeptScaleDenom, n.LostScaleDenom)
	}
	return b, nil
}

// ReadRegion writes w*h BGRA pixels into dest (pitch w) from the given
// level, as spec.md §4.4. Out-of-range level writes nothing and returns
// nil, matching GetDimensions' zero-dimensions convention.
func (b *Backend) ReadRegion(dest []uint32, x, y, level, w, h int) error {
	if err := ReadRegion(dest, b.levels, level, x, y, w, h); err != nil {
		b.Logger.Printf("slide: read_region(level=%d,x=%d,y=%d,w=%d,h=%d): %v", level, x, y, w, h, err)
		return err
	}
	return nil
}

// GetDimensions returns the published (scaled) dimensions of level, or
// (0,0) if level is out of range.
func (b *Backend) GetDimensions(level int) (int, int) {
	if level < 0 || level >= len(b.levels) {
		return 0, 0
	}
	l := b.levels[level]
	return l.PublishedWidth(), l.PublishedHeight()
}

// Cache exposes the backend's tile cache to callers that want to
// memoize decoded tiles by (file_index, tile_x, tile_y, scale_denom)
// themselves — spec.md §5 is explicit that this core never consults a
// cache on its own behalf.
func (b *Backend) Cache() *cache.Cache { return b.cache }

// GetComment returns the comment of the first JPEG, or "" if none were
// ever added.
func (b *Backend) GetComment() string {
	if len(b.jpegs) == 0 {
		return ""
	}
	return b.jpegs[0].Comment
}

// Describe returns a one-line human-readable summary of the backend's
// fragments, levels, and first comment — used by cmd/slideinfo.
func (b *Backend) Describe() string {
	if len(b.jpegs) == 0 {
		return "slide: no fragments loaded"
	}
	w0, h0 := b.GetDimensions(0)
	return fmt.Sprintf("slide: %d fragment(s), %d level(s), level0=%dx%d, tile=%dx%d, comment=%q",
		len(b.jpegs), len(b.levels), w0, h0, b.jpegs[0].TileWidth, b.jpegs[0].TileHeight, b.jpegs[0].Comment)
}

// Destroy closes every file handle and drops the level array and cache.
// Safe to call more than once.
func (b *Backend) Destroy() {
	if b.jpegs == nil {
		return
	}
	for _, j := range b.jpegs {
		j.Close()
	}
	b.jpegs = nil
	b.levels = nil
	b.cache = nil
}

var _ io.Closer = destroyCloser{}

// destroyCloser adapts Backend.Destroy to io.Closer for callers that
// want to `defer backend.AsCloser().Close()`.
type destroyCloser struct{ b *Backend }

func (d destroyCloser) Close() error { d.b.Destroy(); return nil }

// AsCloser exposes Destroy through io.Closer.
func (b *Backend) AsCloser() io.Closer { return destroyCloser{b} }
