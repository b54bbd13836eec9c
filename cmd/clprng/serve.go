package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"

	"github.com/samcharles93/clprng/internal/api"
	"github.com/samcharles93/clprng/internal/logger"
	"github.com/samcharles93/clprng/internal/metrics"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
		maxStreams  int64
		maxCount    int64
		rateLimit   float64
		rateBurst   int64
	)

	flags := append([]cli.Flag{}, deviceFlags()...)
	flags = append(flags, generatorFlags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "listen address",
			Value:       "127.0.0.1:8080",
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "read-timeout",
			Usage:       "read timeout",
			Value:       30 * time.Second,
			Destination: &readTimeout,
		},
		&cli.Int64Flag{
			Name:        "max-streams",
			Usage:       "maximum open streams (0 = unlimited)",
			Value:       64,
			Destination: &maxStreams,
		},
		&cli.Int64Flag{
			Name:        "max-count",
			Usage:       "maximum elements per generate request",
			Value:       api.DefaultMaxCount,
			Destination: &maxCount,
		},
		&cli.Float64Flag{
			Name:        "rate-limit",
			Usage:       "generate requests per second across all streams (0 = unlimited)",
			Destination: &rateLimit,
		},
		&cli.Int64Flag{
			Name:        "rate-burst",
			Usage:       "generate request burst",
			Value:       16,
			Destination: &rateBurst,
		},
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve streams over a REST API",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)

			applyDeviceFlags(cmd)
			if err := applyGeneratorFlags(cmd); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if settings.ServerAddress != "" && !cmd.IsSet("addr") {
				addr = settings.ServerAddress
			}
			if settings.MaxStreams > 0 && !cmd.IsSet("max-streams") {
				maxStreams = int64(settings.MaxStreams)
			}
			if settings.RateLimit > 0 && !cmd.IsSet("rate-limit") {
				rateLimit = settings.RateLimit
			}
			if settings.RateBurst > 0 && !cmd.IsSet("rate-burst") {
				rateBurst = int64(settings.RateBurst)
			}
			defaults, err := settings.Stream()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			dev, err := resolveDevice()
			if err != nil {
				return exitErr("resolve device", err)
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			server := api.NewServer(api.Options{
				Device:     dev,
				Algorithm:  settings.Algorithm,
				Defaults:   defaults,
				MaxStreams: int(maxStreams),
				MaxCount:   int(maxCount),
				RateLimit:  rate.Limit(rateLimit),
				RateBurst:  int(rateBurst),
				Gatherer:   reg,
				Metrics:    metrics.New(reg),
				Logger:     log,
			})
			defer func() {
				if err := server.Close(); err != nil {
					log.Warn("close streams", "error", err)
				}
			}()

			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)
			log.Info("starting server", "address", addr, "device", dev.Name())
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
