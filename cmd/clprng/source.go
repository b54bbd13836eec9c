package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/clprng/internal/kernelsrc"
	"github.com/samcharles93/clprng/internal/prng"
)

func sourceCmd() *cli.Command {
	return &cli.Command{
		Name:  "source",
		Usage: "Print the assembled kernel source for an algorithm and precision",
		Flags: generatorFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := applyGeneratorFlags(cmd); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			alg, err := prng.Lookup(settings.Algorithm)
			if err != nil {
				return exitErr("lookup", err)
			}
			p, err := prng.ParsePrecision(settings.Precision)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			unit, err := kernelsrc.Assemble(alg, p)
			if err != nil {
				return exitErr("assemble", err)
			}
			fmt.Print(unit.Source)
			return nil
		},
	}
}
