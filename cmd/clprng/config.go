package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/clprng/internal/backend"
	"github.com/samcharles93/clprng/internal/config"
	"github.com/samcharles93/clprng/internal/device"
	"github.com/samcharles93/clprng/internal/logger"
	"github.com/samcharles93/clprng/internal/metrics"
	"github.com/samcharles93/clprng/internal/stream"
)

// settings holds the config file merged with the environment. Explicit
// flags are applied on top by each command.
var settings config.Config

func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error
	if configFile != "" {
		settings, err = config.Load(configFile)
	} else {
		settings, err = config.LoadDefault()
	}
	if err != nil {
		return ctx, fmt.Errorf("load config: %w", err)
	}
	lookup, err := config.Environment(envFile)
	if err != nil {
		return ctx, err
	}
	if err := config.ApplyEnv(&settings, lookup); err != nil {
		return ctx, fmt.Errorf("environment: %w", err)
	}

	if cmd.IsSet("log-level") || settings.LogLevel == "" {
		settings.LogLevel = logLevel
	}
	if cmd.IsSet("log-format") || settings.LogFormat == "" {
		settings.LogFormat = logFormat
	}
	if debug {
		settings.LogLevel = "debug"
	}
	log := logger.ForFormat(settings.LogFormat, os.Stderr, logger.ParseLevel(settings.LogLevel))
	return logger.WithContext(ctx, log), nil
}

// applyDeviceFlags overrides settings with device flags the user set.
func applyDeviceFlags(cmd *cli.Command) {
	if cmd.IsSet("device") || settings.Device == "" {
		settings.Device = deviceName
	}
	if cmd.IsSet("device-index") {
		settings.DeviceIndex = int(deviceIndex)
	}
	if cmd.IsSet("memory-limit-mb") {
		settings.MemoryLimitMB = memoryLimitMB
	}
}

func applyGeneratorFlags(cmd *cli.Command) error {
	if cmd.IsSet("algorithm") || settings.Algorithm == "" {
		settings.Algorithm = algorithm
	}
	if cmd.IsSet("precision") || settings.Precision == "" {
		settings.Precision = precision
	}
	if s := strings.TrimSpace(seedText); s != "" {
		v, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return fmt.Errorf("invalid --seed %q: %w", seedText, err)
		}
		settings.Seed = &v
	}
	if cmd.IsSet("workgroup-size") {
		settings.WorkgroupSize = int(workgroupSize)
	}
	if cmd.IsSet("workgroup-count") {
		settings.WorkgroupCount = int(workgroupCount)
	}
	if cmd.IsSet("buffer-entries") {
		settings.BufferEntries = int(bufferEntries)
	}
	return nil
}

func resolveDevice() (backend.Device, error) {
	return device.Resolve(settings.Device, device.Options{
		MemoryLimit: settings.MemoryLimit(),
		Index:       settings.DeviceIndex,
	})
}

// openStream builds a ready stream for the configured algorithm.
func openStream(ctx context.Context, dev backend.Device, m *metrics.Metrics) (*stream.Stream, error) {
	cfg, err := settings.Stream()
	if err != nil {
		return nil, err
	}
	cfg.Logger = logger.FromContext(ctx)
	cfg.Metrics = m
	s := stream.New(cfg)
	err = s.Init(dev, settings.Algorithm)
	if err == nil {
		err = s.SetPrecisionValue(cfg.Precision)
	}
	if err == nil {
		err = s.ReadyGenerator()
	}
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func exitErr(what string, err error) error {
	return cli.Exit(fmt.Sprintf("error: %s: %v (status %s)", what, err, stream.StatusText(stream.Status(err))), 1)
}
