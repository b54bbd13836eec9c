package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
)

const envPrefix = "CLPRNG_"

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Environment returns a lookup over the process environment, falling back to
// values read from the given dotenv files. Missing files are skipped and the
// process environment is never modified.
func Environment(files ...string) (LookupFunc, error) {
	vars := map[string]string{}
	for _, f := range files {
		m, err := godotenv.Read(f)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		for k, v := range m {
			if _, ok := vars[k]; !ok {
				vars[k] = v
			}
		}
	}
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := vars[key]
		return v, ok
	}, nil
}

// ApplyEnv overrides cfg with CLPRNG_* variables.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	num := func(name string, set func(string) error) error {
		v, ok := lookup(envPrefix + name)
		if !ok || v == "" {
			return nil
		}
		if err := set(v); err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		return nil
	}
	atoi := func(dst *int) func(string) error {
		return func(v string) error {
			n, err := strconv.Atoi(v)
			if err == nil {
				*dst = n
			}
			return err
		}
	}

	str("DEVICE", &cfg.Device)
	str("ALGORITHM", &cfg.Algorithm)
	str("PRECISION", &cfg.Precision)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)
	str("ADDR", &cfg.ServerAddress)

	return multierror.Append(nil,
		num("SEED", func(v string) error {
			n, err := strconv.ParseUint(v, 0, 64)
			if err == nil {
				cfg.Seed = &n
			}
			return err
		}),
		num("DEVICE_INDEX", atoi(&cfg.DeviceIndex)),
		num("WORKGROUP_SIZE", atoi(&cfg.WorkgroupSize)),
		num("WORKGROUP_COUNT", atoi(&cfg.WorkgroupCount)),
		num("BUFFER_ENTRIES", atoi(&cfg.BufferEntries)),
		num("MEMORY_LIMIT_MB", func(v string) error {
			n, err := strconv.ParseInt(v, 10, 64)
			if err == nil {
				cfg.MemoryLimitMB = n
			}
			return err
		}),
		num("RATE_LIMIT", func(v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err == nil {
				cfg.RateLimit = f
			}
			return err
		}),
	).ErrorOrNil()
}
