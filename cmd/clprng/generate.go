package main

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/clprng/internal/logger"
	"github.com/samcharles93/clprng/internal/prng"
)

func generateCmd() *cli.Command {
	var (
		count  int64
		format string
		output string
	)

	flags := append([]cli.Flag{}, deviceFlags()...)
	flags = append(flags, generatorFlags()...)
	flags = append(flags,
		&cli.Int64Flag{
			Name:        "count",
			Aliases:     []string{"n"},
			Usage:       "number of elements to generate",
			Value:       16,
			Destination: &count,
		},
		&cli.StringFlag{
			Name:        "format",
			Aliases:     []string{"f"},
			Usage:       "output format (text, binary)",
			Value:       "text",
			Destination: &format,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "output file (default stdout)",
			Destination: &output,
		},
	)

	return &cli.Command{
		Name:    "generate",
		Aliases: []string{"gen"},
		Usage:   "Generate random numbers on a device",
		Flags:   flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)

			applyDeviceFlags(cmd)
			if err := applyGeneratorFlags(cmd); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if count < 0 {
				return cli.Exit("error: --count must not be negative", 1)
			}
			if format != "text" && format != "binary" {
				return cli.Exit(fmt.Sprintf("error: unknown format %q (expected text or binary)", format), 1)
			}

			dev, err := resolveDevice()
			if err != nil {
				return exitErr("resolve device", err)
			}
			s, err := openStream(ctx, dev, nil)
			if err != nil {
				return exitErr("open stream", err)
			}
			defer func() { _ = s.Close() }()

			var out io.Writer = os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				defer func() { _ = f.Close() }()
				out = f
			}
			w := bufio.NewWriter(out)

			start := time.Now()
			p := s.Precision()
			es := p.Size()
			chunk := s.BufferEntries()
			raw := make([]byte, min(int(count), chunk)*es)
			for remaining := int(count); remaining > 0; {
				n := min(remaining, chunk)
				buf := raw[:n*es]
				if err := s.GenerateStream(n, buf); err != nil {
					return exitErr("generate", err)
				}
				if format == "binary" {
					_, err = w.Write(buf)
				} else {
					err = writeText(w, p, buf)
				}
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: write: %v", err), 1)
				}
				remaining -= n
			}
			if err := w.Flush(); err != nil {
				return cli.Exit(fmt.Sprintf("error: write: %v", err), 1)
			}
			log.Debug("generated", "algorithm", s.Name(), "precision", p.String(),
				"count", count, "device", dev.Name(), "elapsed", time.Since(start))
			return nil
		},
	}
}

// writeText prints little-endian elements of precision p, one per line.
func writeText(w *bufio.Writer, p prng.Precision, raw []byte) error {
	es := p.Size()
	var line []byte
	for off := 0; off < len(raw); off += es {
		line = line[:0]
		switch p {
		case prng.Uint32:
			line = strconv.AppendUint(line, uint64(binary.LittleEndian.Uint32(raw[off:])), 10)
		case prng.Uint64:
			line = strconv.AppendUint(line, binary.LittleEndian.Uint64(raw[off:]), 10)
		case prng.Float32:
			v := math.Float32frombits(binary.LittleEndian.Uint32(raw[off:]))
			line = strconv.AppendFloat(line, float64(v), 'g', -1, 32)
		default:
			v := math.Float64frombits(binary.LittleEndian.Uint64(raw[off:]))
			line = strconv.AppendFloat(line, v, 'g', -1, 64)
		}
		line = append(line, '\n')
		if _, err := w.Write(line); err != nil {
			return err
		}
	}
	return nil
}
