package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"runtime"
	"slices"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samcharles93/clprng/internal/logger"
	"github.com/samcharles93/clprng/internal/prng"
	"github.com/samcharles93/clprng/internal/stream"
)

func benchCmd() *cli.Command {
	var (
		streams int64
		count   int64
		runs    int64
		bins    int64
	)

	flags := append([]cli.Flag{}, deviceFlags()...)
	flags = append(flags, generatorFlags()...)
	flags = append(flags,
		&cli.Int64Flag{
			Name:        "streams",
			Usage:       "concurrent streams, each on its own context",
			Value:       4,
			Destination: &streams,
		},
		&cli.Int64Flag{
			Name:        "count",
			Aliases:     []string{"n"},
			Usage:       "elements generated per stream per run",
			Value:       1 << 22,
			Destination: &count,
		},
		&cli.Int64Flag{
			Name:        "runs",
			Usage:       "number of benchmark runs",
			Value:       3,
			Destination: &runs,
		},
		&cli.Int64Flag{
			Name:        "bins",
			Usage:       "histogram bins for the uniformity check",
			Value:       64,
			Destination: &bins,
		},
	)

	return &cli.Command{
		Name:    "bench",
		Aliases: []string{"benchmark"},
		Usage:   "Measure stream throughput across concurrent streams",
		Flags:   flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)

			applyDeviceFlags(cmd)
			if err := applyGeneratorFlags(cmd); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if streams < 1 || count < 1 || runs < 1 || bins < 2 {
				return cli.Exit("error: --streams, --count and --runs must be positive and --bins at least 2", 1)
			}
			dev, err := resolveDevice()
			if err != nil {
				return exitErr("resolve device", err)
			}

			pool := make([]*stream.Stream, streams)
			defer func() {
				for _, s := range pool {
					if s != nil {
						_ = s.Close()
					}
				}
			}()
			base := uint64(0)
			if settings.Seed != nil {
				base = *settings.Seed
			}
			for i := range pool {
				s, err := openStream(ctx, dev, nil)
				if err != nil {
					return exitErr(fmt.Sprintf("open stream %d", i), err)
				}
				pool[i] = s
				if err := s.SetSeed(base + uint64(i)); err != nil {
					return exitErr("seed", err)
				}
			}

			p := pool[0].Precision()
			chunk := min(int(count), pool[0].BufferEntries())
			scratch := make([][]byte, len(pool))
			for i := range scratch {
				scratch[i] = make([]byte, chunk*p.Size())
			}

			fmt.Println("=== clprng benchmark ===")
			fmt.Printf("Device:     %s\n", dev.Name())
			fmt.Printf("Algorithm:  %s (%s)\n", pool[0].Name(), p)
			fmt.Printf("Lanes:      %d\n", pool[0].LaunchConfig().Lanes())
			fmt.Printf("Buffer:     %d entries\n", pool[0].BufferEntries())
			fmt.Printf("Streams:    %d x %d elements\n", streams, count)
			fmt.Printf("GOMAXPROCS: %d\n", runtime.GOMAXPROCS(0))
			fmt.Println()

			var rates []float64
			for run := range int(runs) {
				log.Info("benchmark run", "run", run+1)
				runRates := make([]float64, len(pool))
				g, gctx := errgroup.WithContext(ctx)
				for i, s := range pool {
					g.Go(func() error {
						start := time.Now()
						for remaining := int(count); remaining > 0; {
							if err := gctx.Err(); err != nil {
								return err
							}
							n := min(remaining, chunk)
							if err := s.GenerateStream(n, scratch[i][:n*p.Size()]); err != nil {
								return fmt.Errorf("stream %d: %w", i, err)
							}
							remaining -= n
						}
						runRates[i] = float64(count) / time.Since(start).Seconds() / 1e6
						return nil
					})
				}
				if err := g.Wait(); err != nil {
					return exitErr(fmt.Sprintf("run %d", run+1), err)
				}
				rates = append(rates, runRates...)
			}

			mean, std := stat.MeanStdDev(rates, nil)
			sorted := slices.Clone(rates)
			slices.Sort(sorted)
			median := stat.Quantile(0.5, stat.Empirical, sorted, nil)
			fmt.Println("=== Per-stream throughput (M elements/s) ===")
			fmt.Printf("%-8s %10s %10s %10s %10s %10s\n", "Samples", "Mean", "StdDev", "Median", "Min", "Max")
			fmt.Printf("%-8d %10.2f %10.2f %10.2f %10.2f %10.2f\n",
				len(rates), mean, std, median, sorted[0], sorted[len(sorted)-1])
			fmt.Printf("Aggregate:  %.2f M elements/s\n", mean*float64(streams))

			chi2, pValue := uniformity(scratch[0][:chunk*p.Size()], p, int(bins))
			fmt.Printf("\nUniformity: chi2=%.2f df=%d p=%.4f (last %d elements of stream 0)\n",
				chi2, bins-1, pValue, chunk)
			return nil
		},
	}
}

// uniformity bins the elements over [0, 1) and returns the chi-square
// statistic against a flat histogram together with its upper-tail p-value.
func uniformity(raw []byte, p prng.Precision, bins int) (float64, float64) {
	es := p.Size()
	n := len(raw) / es
	if n == 0 {
		return 0, 1
	}
	counts := make([]float64, bins)
	for i := range n {
		b := raw[i*es:]
		var u float64
		switch p {
		case prng.Uint32:
			u = float64(binary.LittleEndian.Uint32(b)) / (1 << 32)
		case prng.Uint64:
			u = float64(binary.LittleEndian.Uint64(b)>>11) / (1 << 53)
		case prng.Float32:
			u = float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
		default:
			u = math.Float64frombits(binary.LittleEndian.Uint64(b))
		}
		counts[min(int(u*float64(bins)), bins-1)]++
	}
	expected := make([]float64, bins)
	for i := range expected {
		expected[i] = float64(n) / float64(bins)
	}
	chi2 := stat.ChiSquare(counts, expected)
	return chi2, 1 - distuv.ChiSquared{K: float64(bins - 1)}.CDF(chi2)
}
