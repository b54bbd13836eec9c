package main

import "github.com/urfave/cli/v3"

var (
	configFile string
	envFile    string
	logLevel   string
	logFormat  string
	debug      bool

	deviceName    string
	deviceIndex   int64
	memoryLimitMB int64

	algorithm      string
	precision      string
	seedText       string
	workgroupSize  int64
	workgroupCount int64
	bufferEntries  int64
)

func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "config file (.yaml, .toml or .json); defaults to the user config dir",
			Destination: &configFile,
		},
		&cli.StringFlag{
			Name:        "env-file",
			Usage:       "dotenv file with CLPRNG_* overrides",
			Value:       ".env",
			Destination: &envFile,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

func deviceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "device",
			Aliases:     []string{"d"},
			Usage:       "compute backend (auto, cpu, opencl)",
			Value:       "auto",
			Destination: &deviceName,
		},
		&cli.Int64Flag{
			Name:        "device-index",
			Usage:       "OpenCL device index across all platforms",
			Destination: &deviceIndex,
		},
		&cli.Int64Flag{
			Name:        "memory-limit-mb",
			Usage:       "software device memory limit (0 = a quarter of system memory)",
			Destination: &memoryLimitMB,
		},
	}
}

func generatorFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "algorithm",
			Aliases:     []string{"a"},
			Usage:       "generator algorithm (see clprng list)",
			Value:       "mt19937",
			Destination: &algorithm,
		},
		&cli.StringFlag{
			Name:        "precision",
			Aliases:     []string{"p"},
			Usage:       "output precision (uint32, uint64, float32, float64)",
			Value:       "uint32",
			Destination: &precision,
		},
		&cli.StringFlag{
			Name:        "seed",
			Aliases:     []string{"s"},
			Usage:       "seed value, decimal or 0x-prefixed hex",
			Destination: &seedText,
		},
		&cli.Int64Flag{
			Name:        "workgroup-size",
			Usage:       "work items per workgroup",
			Destination: &workgroupSize,
		},
		&cli.Int64Flag{
			Name:        "workgroup-count",
			Usage:       "workgroups per launch",
			Destination: &workgroupCount,
		},
		&cli.Int64Flag{
			Name:        "buffer-entries",
			Usage:       "elements produced per refill",
			Destination: &bufferEntries,
		},
	}
}
