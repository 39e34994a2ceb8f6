// slideserve is a concurrent multi-request demo driver: it loads a set
// of JPEG fragments once, then drives a configurable pool of workers
// issuing random read_region requests against the resulting Backend,
// reporting throughput. It exists to exercise spec.md §5's concurrency
// model end-to-end (one decoder per thread, independent file handles),
// not to be a real tile server. Worker-pool shape (buffered job
// channel, sync.WaitGroup, atomic counters, single buffered error
// channel) mirrors the teacher's internal/tile/generator.go.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mpetrov/slidejpeg/internal/slide"
)

type job struct {
	level, x, y, w, h int
}

func main() {
	var (
		concurrency int
		requests    int
		regionSize  int
		verbose     bool
	)
	flag.IntVar(&concurrency, "concurrency", 4, "number of parallel workers")
	flag.IntVar(&requests, "requests", 100, "total number of read_region requests to issue")
	flag.IntVar(&regionSize, "region-size", 256, "width/height in pixels of each requested region")
	flag.BoolVar(&verbose, "verbose", false, "log each request")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: slideserve [flags] <z,x,y,path> [z,x,y,path ...]\n\n")
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
			log.Fatalf("Error: %v", err)
		}
		f, err := os.Open(path)
		if err != nil {
			log.Fatalf("Error opening %s: %v", path, err)
		}
		frags = append(frags, slide.FragmentInput{Z: fz, X: fx, Y: fy, File: f})
	}

	b, err := slide.AddJpegOps(frags, concurrency*8)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	defer b.Destroy()

	w0, h0 := b.GetDimensions(0)
	if w0 == 0 || h0 == 0 {
		log.Fatalf("level 0 has no published dimensions")
	}

	rng := rand.New(rand.NewSource(1))
	jobs := make(chan job, concurrency*2)
	errCh := make(chan error, 1)
	var wg sync.WaitGroup
	var completed, bytesRead, emptyRequests atomic.Int64

	start := time.Now()
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				dest := make([]uint32, j.w*j.h)
				if err := b.ReadRegion(dest, j.x, j.y, j.level, j.w, j.h); err != nil {
					select {
					case errCh <- fmt.Errorf("read_region(level=%d,x=%d,y=%d): %w", j.level, j.x, j.y, err):
					default:
					}
					return
				}
				completed.Add(1)
				bytesRead.Add(int64(len(dest) * 4))
				if dest[0] == 0 {
					emptyRequests.Add(1)
				}
				if verbose {
					log.Printf("read_region level=%d x=%d y=%d w=%d h=%d", j.level, j.x, j.y, j.w, j.h)
				}
			}
		}()
	}

	for i := 0; i < requests; i++ {
		x := rng.Intn(maxInt(1, w0-regionSize))
		y := rng.Intn(maxInt(1, h0-regionSize))
		jobs <- job{level: 0, x: x, y: y, w: regionSize, h: regionSize}
	}
	close(jobs)
	wg.Wait()

	select {
	case err := <-errCh:
		log.Fatalf("Error: %v", err)
	default:
	}

	elapsed := time.Since(start)
	fmt.Printf("Completed %d requests (%d empty) in %s, %d bytes read, %.1f req/s\n",
		completed.Load(), emptyRequests.Load(), elapsed, bytesRead.Load(), float64(completed.Load())/elapsed.Seconds())
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
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
