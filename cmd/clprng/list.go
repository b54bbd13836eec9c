package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/clprng/internal/device"
	"github.com/samcharles93/clprng/internal/logger"
	"github.com/samcharles93/clprng/internal/prng"
)

func listCmd() *cli.Command {
	var devices bool

	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List generator algorithms, or devices with --devices",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "devices",
				Usage:       "list compute devices instead of algorithms",
				Destination: &devices,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if devices {
				infos, err := device.List()
				if err != nil {
					logger.FromContext(ctx).Warn("device enumeration incomplete", "error", err)
				}
				fmt.Printf("Backends in this build: %s\n\n", device.Available())
				fmt.Printf("%-8s %5s  %s\n", "BACKEND", "INDEX", "NAME")
				for _, d := range infos {
					fmt.Printf("%-8s %5d  %s\n", d.Backend, d.Index, d.Name)
				}
				return nil
			}

			fmt.Printf("%-18s %10s %5s  %s\n", "ALGORITHM", "STATE", "BITS", "PRECISIONS")
			for _, a := range prng.All() {
				ps := make([]string, len(a.Precisions))
				for i, p := range a.Precisions {
					ps[i] = p.String()
				}
				fmt.Printf("%-18s %10d %5d  %s\n", a.Name, a.StateSize, a.NativeBits, strings.Join(ps, ","))
			}
			return nil
		},
	}
}
