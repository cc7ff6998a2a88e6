// Package config holds the run configuration and its YAML file form.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"puppy/internal/oracle"
)

// Config is everything a run needs. Command-line flags override the file.
type Config struct {
	Mode            string `yaml:"primers_type"`   // unique | group
	CDSDir          string `yaml:"target_species"` // directory of *.fna files
	Input           string `yaml:"input"`          // alignment table or final_genes.tsv
	OutDir          string `yaml:"outdir"`
	GenesPerSpecies int    `yaml:"genes_number"`
	Threads         int    `yaml:"threads"`

	Primer  oracle.Settings `yaml:"primer"`
	Primer3 Primer3Config   `yaml:"primer3"`
	Output  OutputConfig    `yaml:"output"`
	Log     LogConfig       `yaml:"log"`
	S3      S3Config        `yaml:"s3"`
}

type Primer3Config struct {
	Bin        string `yaml:"bin"`
	ThermoPath string `yaml:"thermo_path,omitempty"`
}

type OutputConfig struct {
	Emit        string `yaml:"emit,omitempty"` // tsv | json | jsonl on stdout
	DB          string `yaml:"db,omitempty"`   // SQLite run database
	MetricsFile string `yaml:"metrics_file,omitempty"`
	Upload      string `yaml:"upload,omitempty"` // s3://bucket/prefix or a directory
}

type LogConfig struct {
	Format  string `yaml:"format"`
	Verbose bool   `yaml:"verbose"`
	Quiet   bool   `yaml:"quiet"`
}

type S3Config struct {
	Region       string `yaml:"region,omitempty"`
	Endpoint     string `yaml:"endpoint,omitempty"`
	UsePathStyle bool   `yaml:"use_path_style,omitempty"`
	AccessKey    string `yaml:"access_key,omitempty"`
	SecretKey    string `yaml:"secret_key,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Mode:            "unique",
		OutDir:          "Primer3_output",
		GenesPerSpecies: 5,
		Threads:         runtime.NumCPU(),
		Primer:          oracle.DefaultSettings(),
		Primer3:         Primer3Config{Bin: oracle.DefaultPrimer3Bin},
		Log:             LogConfig{Format: "console"},
	}
}

// Load reads a YAML file over the defaults. A missing file yields the
// defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if bin := os.Getenv("PUPPY_PRIMER3_BIN"); bin != "" {
		c.Primer3.Bin = bin
	}
	if v := os.Getenv("PUPPY_THREADS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Threads = n
		}
	}
	if db := os.Getenv("PUPPY_DB"); db != "" {
		c.Output.DB = db
	}
	if ep := os.Getenv("PUPPY_S3_ENDPOINT"); ep != "" {
		c.S3.Endpoint = ep
	}
}

// Validate checks the settings every command shares.
func (c *Config) Validate() error {
	if c.Mode != "unique" && c.Mode != "group" {
		return fmt.Errorf("invalid primers type %q (valid: unique, group)", c.Mode)
	}
	if c.GenesPerSpecies < 1 {
		return errors.New("genes number must be >= 1")
	}
	if c.Threads < 1 {
		return errors.New("threads must be >= 1")
	}
	if strings.TrimSpace(c.OutDir) == "" {
		return errors.New("outdir must not be empty")
	}
	if err := c.Primer.Validate(); err != nil {
		return err
	}
	switch c.Output.Emit {
	case "", "tsv", "json", "jsonl":
	default:
		return fmt.Errorf("invalid emit format %q (valid: tsv, json, jsonl)", c.Output.Emit)
	}
	return nil
}
