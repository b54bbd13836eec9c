package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samcharles93/clprng/internal/prng"
	"github.com/samcharles93/clprng/internal/stream"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadByExtension(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"config.yaml": "algorithm: tinymt64\nprecision: double\nseed: 7\nworkgroup_size: 32\nserver_address: 127.0.0.1:9000\n",
		"config.yml":  "algorithm: tinymt64\nprecision: double\nseed: 7\nworkgroup_size: 32\nserver_address: 127.0.0.1:9000\n",
		"config.json": `{"algorithm":"tinymt64","precision":"double","seed":7,"workgroup_size":32,"server_address":"127.0.0.1:9000"}`,
		"config.toml": "algorithm = \"tinymt64\"\nprecision = \"double\"\nseed = 7\nworkgroup_size = 32\nserver_address = \"127.0.0.1:9000\"\n",
	}
	for name, body := range files {
		cfg, err := Load(writeFile(t, name, body))
		require.NoError(t, err, name)
		assert.Equal(t, "tinymt64", cfg.Algorithm, name)
		assert.Equal(t, "double", cfg.Precision, name)
		require.NotNil(t, cfg.Seed, name)
		assert.Equal(t, uint64(7), *cfg.Seed, name)
		assert.Equal(t, 32, cfg.WorkgroupSize, name)
		assert.Equal(t, "127.0.0.1:9000", cfg.ServerAddress, name)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	_, err := Load("")
	require.Error(t, err)

	_, err = Load(writeFile(t, "config.ini", "x=1"))
	require.ErrorContains(t, err, "unsupported config extension")

	_, err = Load(writeFile(t, "config.json", "{not json"))
	require.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestStreamConversion(t *testing.T) {
	t.Parallel()

	sc, err := Config{}.Stream()
	require.NoError(t, err)
	assert.Equal(t, stream.DefaultConfig(), sc)

	seed := uint64(11)
	sc, err = Config{Precision: "f32", Seed: &seed, WorkgroupCount: 3, BufferEntries: 500}.Stream()
	require.NoError(t, err)
	assert.Equal(t, prng.Float32, sc.Precision)
	assert.Equal(t, uint64(11), sc.Seed)
	assert.Equal(t, 3, sc.Launch.WorkgroupCount)
	assert.Equal(t, stream.DefaultWorkgroupSize, sc.Launch.WorkgroupSize)
	assert.Equal(t, 500, sc.BufferEntries)

	_, err = Config{Precision: "half"}.Stream()
	require.Error(t, err)
}

func TestMemoryLimit(t *testing.T) {
	t.Parallel()

	assert.Zero(t, Config{}.MemoryLimit())
	assert.Equal(t, int64(3<<20), Config{MemoryLimitMB: 3}.MemoryLimit())
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"CLPRNG_ALGORITHM":      "philox2x32_10",
		"CLPRNG_SEED":           "0x10",
		"CLPRNG_BUFFER_ENTRIES": "4096",
		"CLPRNG_LOG_LEVEL":      "debug",
		"CLPRNG_DEVICE":         "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	cfg := Config{Device: "cpu", Algorithm: "mt19937"}
	require.NoError(t, ApplyEnv(&cfg, lookup))
	assert.Equal(t, "philox2x32_10", cfg.Algorithm)
	assert.Equal(t, "cpu", cfg.Device, "empty values are ignored")
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, uint64(16), *cfg.Seed)
	assert.Equal(t, 4096, cfg.BufferEntries)
	assert.Equal(t, "debug", cfg.LogLevel)

	env["CLPRNG_WORKGROUP_SIZE"] = "many"
	env["CLPRNG_RATE_LIMIT"] = "fast"
	err := ApplyEnv(&cfg, lookup)
	require.ErrorContains(t, err, "CLPRNG_WORKGROUP_SIZE")
	require.ErrorContains(t, err, "CLPRNG_RATE_LIMIT")
}

func TestEnvironmentReadsDotenv(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(first, []byte("CLPRNG_TEST_ONLY_PRECISION=uint64\n"), 0o644))
	second := filepath.Join(dir, ".env.local")
	require.NoError(t, os.WriteFile(second, []byte("CLPRNG_TEST_ONLY_PRECISION=float32\nCLPRNG_TEST_ONLY_ADDR=:1\n"), 0o644))

	lookup, err := Environment(first, filepath.Join(dir, "missing"), second)
	require.NoError(t, err)

	v, ok := lookup("CLPRNG_TEST_ONLY_PRECISION")
	require.True(t, ok)
	assert.Equal(t, "uint64", v, "earlier files take precedence")
	v, ok = lookup("CLPRNG_TEST_ONLY_ADDR")
	require.True(t, ok)
	assert.Equal(t, ":1", v)
	_, ok = lookup("CLPRNG_TEST_ONLY_UNSET")
	assert.False(t, ok)
	_, set := os.LookupEnv("CLPRNG_TEST_ONLY_PRECISION")
	assert.False(t, set, "the process environment is left alone")
}
