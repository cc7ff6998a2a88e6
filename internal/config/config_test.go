package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"PUPPY_THREADS", "PUPPY_PRIMER3_BIN", "PUPPY_DB", "PUPPY_S3_ENDPOINT"} {
		t.Setenv(k, "")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "puppy.yaml")
	yaml := `
primers_type: group
genes_number: 3
primer:
  product_min: 100
  product_max: 200
  num_return: 2
primer3:
  bin: /opt/primer3/primer3_core
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "group", cfg.Mode)
	assert.Equal(t, 3, cfg.GenesPerSpecies)
	assert.Equal(t, 200, cfg.Primer.ProductMax)
	assert.Equal(t, 2, cfg.Primer.NumReturn)
	assert.Equal(t, 20, cfg.Primer.OptSize, "unset keys keep their defaults")
	assert.Equal(t, "/opt/primer3/primer3_core", cfg.Primer3.Bin)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("primer: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PUPPY_PRIMER3_BIN", "/usr/local/bin/primer3_core")
	t.Setenv("PUPPY_THREADS", "3")
	t.Setenv("PUPPY_DB", "runs.db")

	cfg := &Config{}
	cfg.applyEnvOverrides()
	assert.Equal(t, "/usr/local/bin/primer3_core", cfg.Primer3.Bin)
	assert.Equal(t, 3, cfg.Threads)
	assert.Equal(t, "runs.db", cfg.Output.DB)

	t.Setenv("PUPPY_THREADS", "many")
	cfg = &Config{Threads: 8}
	cfg.applyEnvOverrides()
	assert.Equal(t, 8, cfg.Threads, "unparsable values are ignored")
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	cfg := Default()
	cfg.Mode = "group"
	cfg.Output.Upload = "s3://bucket/runs"
	path := filepath.Join(t.TempDir(), "sub", "puppy.yaml")
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"mode":    func(c *Config) { c.Mode = "shared" },
		"genes":   func(c *Config) { c.GenesPerSpecies = 0 },
		"threads": func(c *Config) { c.Threads = 0 },
		"outdir":  func(c *Config) { c.OutDir = " " },
		"primer":  func(c *Config) { c.Primer.ProductMin = 500 },
		"emit":    func(c *Config) { c.Output.Emit = "xml" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
