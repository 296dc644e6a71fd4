// Bench is a benchmarking tool for measuring surface extraction throughput
// and memory usage on synthetic hexahedral blocks.
//
// Usage:
//
//	go run ./cmd/bench -nx 200 -ny 200 -nz 200 -workers 8 -blank 0.05
//
// Flags:
//
//	-nx, -ny, -nz  Block size in cells (default: 128 each)
//	-blank         Share of cells hidden by ghost flags (default: 0)
//	-seed          Blanking seed (default: 0x1234)
//	-workers       Number of parallel workers (default: GOMAXPROCS)
//	-mode          Input: unstructured, structured or generic (default: unstructured)
//	-merge         Compact output points (default: true)
//	-fast          Fast mode for blanked structured grids (default: false)
//	-strips        Triangle strips for unblanked structured grids (default: false)
//	-runs          Timed extractions after one warm-up (default: 3)
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/metrics"
	"runtime/pprof"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/tamirms/meshskin"
	"github.com/tamirms/meshskin/internal/synth"
)

// getMaxRSS returns the maximum resident set size in bytes.
// Uses getrusage(RUSAGE_SELF) which tracks peak RSS since process start.
func getMaxRSS() uint64 {
	var rusage syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &rusage); err != nil {
		return 0
	}
	// On macOS, MaxRss is in bytes. On Linux, it's in kilobytes.
	maxRSS := uint64(rusage.Maxrss)
	if runtime.GOOS == "linux" {
		maxRSS *= 1024
	}
	return maxRSS
}

// genericGrid hides the concrete type so Extract takes the cell by cell path.
type genericGrid struct {
	meshskin.Dataset
}

func main() {
	nxFlag := flag.Int("nx", 128, "cells along x")
	nyFlag := flag.Int("ny", 128, "cells along y")
	nzFlag := flag.Int("nz", 128, "cells along z")
	blankFlag := flag.Float64("blank", 0, "share of hidden cells")
	seedFlag := flag.Uint("seed", 0x1234, "blanking seed")
	workersFlag := flag.Int("workers", 0, "number of parallel workers (0 = GOMAXPROCS)")
	modeFlag := flag.String("mode", "unstructured", "input: unstructured, structured or generic")
	mergeFlag := flag.Bool("merge", true, "compact output points")
	fastFlag := flag.Bool("fast", false, "fast mode for blanked structured grids")
	stripsFlag := flag.Bool("strips", false, "triangle strips for unblanked structured grids")
	runsFlag := flag.Int("runs", 3, "timed extractions")
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file (extraction phase only)")
	memprofile := flag.String("memprofile", "", "write memory profile to file (extraction phase only)")
	flag.Parse()

	block := synth.Block{
		NX:         *nxFlag,
		NY:         *nyFlag,
		NZ:         *nzFlag,
		BlankRatio: *blankFlag,
		Seed:       uint32(*seedFlag),
	}

	fmt.Println("Generating block...")
	genStart := time.Now()
	var input meshskin.Dataset
	switch *modeFlag {
	case "unstructured":
		input = synth.UnstructuredGrid(block.Mesh())
	case "structured":
		input = block.Structured()
	case "generic":
		input = genericGrid{synth.UnstructuredGrid(block.Mesh())}
	default:
		fmt.Printf("Unknown mode: %s (use 'unstructured', 'structured' or 'generic')\n", *modeFlag)
		return
	}
	genDuration := time.Since(genStart)

	opts := []meshskin.Option{
		meshskin.WithWorkers(*workersFlag),
		meshskin.WithMergePoints(*mergeFlag),
		meshskin.WithFastMode(*fastFlag),
		meshskin.WithStrips(*stripsFlag),
	}
	path, err := meshskin.Classify(input, opts...)
	if err != nil {
		fmt.Printf("Classify failed: %v\n", err)
		return
	}

	fmt.Println("Warming up...")
	if _, err := meshskin.Extract(context.Background(), input, opts...); err != nil {
		fmt.Printf("Extract failed: %v\n", err)
		return
	}

	runtime.GC()
	time.Sleep(50 * time.Millisecond)
	var baseline runtime.MemStats
	runtime.ReadMemStats(&baseline)
	baselineRSS := getMaxRSS()

	// 10ms sampling for peak memory (both heap and RSS).
	// Uses runtime/metrics instead of ReadMemStats to avoid stop-the-world pauses.
	var peakAlloc atomic.Uint64
	var peakRSS atomic.Uint64
	peakAlloc.Store(baseline.Alloc)
	peakRSS.Store(baselineRSS)
	done := make(chan struct{})
	go func() {
		samples := []metrics.Sample{
			{Name: "/memory/classes/heap/objects:bytes"},
		}
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				metrics.Read(samples)
				heapBytes := samples[0].Value.Uint64()
				for {
					old := peakAlloc.Load()
					if heapBytes <= old || peakAlloc.CompareAndSwap(old, heapBytes) {
						break
					}
				}
				rss := getMaxRSS()
				for {
					old := peakRSS.Load()
					if rss <= old || peakRSS.CompareAndSwap(old, rss) {
						break
					}
				}
			}
		}
	}()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			fmt.Printf("could not create CPU profile: %v\n", err)
			return
		}
		defer func() { _ = f.Close() }()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Printf("could not start CPU profile: %v\n", err)
			return
		}
	}

	fmt.Printf("Extracting (%s path, %d runs)...\n", path, *runsFlag)
	var (
		skin *meshskin.PolyData
		best time.Duration
		sum  time.Duration
	)
	for r := 0; r < *runsFlag; r++ {
		start := time.Now()
		skin, err = meshskin.Extract(context.Background(), input, opts...)
		elapsed := time.Since(start)
		if err != nil {
			break
		}
		sum += elapsed
		if best == 0 || elapsed < best {
			best = elapsed
		}
	}

	if *cpuprofile != "" {
		pprof.StopCPUProfile()
	}
	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			fmt.Printf("could not create memory profile: %v\n", err)
		} else {
			runtime.GC()
			if err := pprof.WriteHeapProfile(f); err != nil {
				fmt.Printf("could not write memory profile: %v\n", err)
			}
			_ = f.Close()
		}
	}

	close(done)

	var final runtime.MemStats
	runtime.ReadMemStats(&final)
	if final.Alloc > peakAlloc.Load() {
		peakAlloc.Store(final.Alloc)
	}
	finalRSS := getMaxRSS()
	if finalRSS > peakRSS.Load() {
		peakRSS.Store(finalRSS)
	}
	peakHeapMem := peakAlloc.Load() - baseline.Alloc
	peakRSSMem := peakRSS.Load() - baselineRSS

	if err != nil {
		fmt.Printf("Extract failed: %v\n", err)
		return
	}
	if *runsFlag < 1 || skin == nil {
		fmt.Println("No timed runs")
		return
	}

	numCells := input.NumberOfCells()
	mean := sum / time.Duration(*runsFlag)
	digest := skin.Digest()

	fmt.Printf("\n")
	fmt.Printf("╔═════════════════════╦══════════════════╗\n")
	fmt.Printf("║ Path: %-14s║ Workers: %-8d║\n", path, workerCount(*workersFlag))
	fmt.Printf("╠═════════════════════╬══════════════════╣\n")
	fmt.Printf("║ Input cells         ║ %12d     ║\n", numCells)
	fmt.Printf("║ Input points        ║ %12d     ║\n", input.NumberOfPoints())
	fmt.Printf("║ Output polys        ║ %12d     ║\n", skin.Polys.NumberOfCells())
	fmt.Printf("║ Output points       ║ %12d     ║\n", skin.NumberOfPoints())
	fmt.Printf("║ 64-bit ids          ║ %12t     ║\n", skin.Polys.Is64Bit())
	fmt.Printf("║ Generate time       ║ %8.3f sec     ║\n", genDuration.Seconds())
	fmt.Printf("║ Best extract time   ║ %8.3f sec     ║\n", best.Seconds())
	fmt.Printf("║ Mean extract time   ║ %8.3f sec     ║\n", mean.Seconds())
	fmt.Printf("║ Throughput          ║ %8.2f Mcell/s ║\n", float64(numCells)/best.Seconds()/1_000_000)
	fmt.Printf("║ Peak heap memory    ║ %8.1f MB      ║\n", float64(peakHeapMem)/1_000_000)
	fmt.Printf("║ Peak RSS memory     ║ %8.1f MB      ║\n", float64(peakRSSMem)/1_000_000)
	fmt.Printf("╚═════════════════════╩══════════════════╝\n")
	fmt.Printf("digest %016x%016x\n", digest.Hi, digest.Lo)
}

func workerCount(n int) int {
	if n < 1 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}
