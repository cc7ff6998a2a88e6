// internal/cli/options_test.go
package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"

	"puppy/internal/config"
)

func mustResolve(t *testing.T, args ...string) *config.Config {
	t.Helper()
	cfg, err := resolve(args...)
	if err != nil {
		t.Fatalf("resolve err: %v", err)
	}
	return cfg
}

func resolve(args ...string) (*config.Config, error) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	var o Options
	Register(fs, &o)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return o.Resolve(fs)
}

func TestDefaults(t *testing.T) {
	cfg := mustResolve(t)
	if cfg.Mode != "unique" || cfg.OutDir != "Primer3_output" || cfg.GenesPerSpecies != 5 {
		t.Errorf("bad defaults %+v", cfg)
	}
	if cfg.Primer.ProductMin != 75 || cfg.Primer.ProductMax != 150 || cfg.Primer.NumReturn != 4 {
		t.Errorf("bad primer defaults %+v", cfg.Primer)
	}
}

func TestFlagsParsed(t *testing.T) {
	cfg := mustResolve(t,
		"-p", "group", "-t", "cds", "-i", "aln.tsv", "-o", "out",
		"--genes-number", "2", "--primers-number", "3",
		"--product-size-range", "100,250", "--max-primer-tm", "64.5",
	)
	if cfg.Mode != "group" || cfg.CDSDir != "cds" || cfg.Input != "aln.tsv" || cfg.OutDir != "out" {
		t.Errorf("bad paths %+v", cfg)
	}
	if cfg.GenesPerSpecies != 2 || cfg.Primer.NumReturn != 3 {
		t.Errorf("bad counts %+v", cfg)
	}
	if cfg.Primer.ProductMin != 100 || cfg.Primer.ProductMax != 250 || cfg.Primer.MaxTm != 64.5 {
		t.Errorf("bad primer settings %+v", cfg.Primer)
	}
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "puppy.yaml")
	body := "primers_type: group\ngenes_number: 9\nprimer:\n  num_return: 7\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := mustResolve(t, "--config", path, "--genes-number", "2")
	if cfg.Mode != "group" {
		t.Errorf("config file value lost: %q", cfg.Mode)
	}
	if cfg.GenesPerSpecies != 2 {
		t.Errorf("explicit flag must win, got %d", cfg.GenesPerSpecies)
	}
	if cfg.Primer.NumReturn != 7 {
		t.Errorf("unset flag must not clobber the file, got %d", cfg.Primer.NumReturn)
	}
}

func TestMissingConfigFile(t *testing.T) {
	_, err := resolve("--config", filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("want ErrConfiguration, got %v", err)
	}
}

func TestBadProductRange(t *testing.T) {
	_, err := resolve("--product-size-range", "75")
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("want ErrConfiguration, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		command string
		args    []string
		ok      bool
	}{
		{"design ok", "design", []string{"-i", "a.tsv", "-t", "cds"}, true},
		{"design needs input", "design", []string{"-t", "cds"}, false},
		{"classify needs cds", "classify", []string{"-i", "a.tsv"}, false},
		{"report needs cds", "report", nil, false},
		{"report ok", "report", []string{"-t", "cds"}, true},
		{"bad mode", "design", []string{"-i", "a", "-t", "c", "-p", "shared"}, false},
		{"verbose and quiet", "design", []string{"-i", "a", "-t", "c", "-v", "-q"}, false},
		{"inverted range", "design", []string{"-i", "a", "-t", "c", "-s", "200,100"}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := mustResolve(t, c.args...)
			err := Validate(c.command, cfg)
			if c.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !c.ok && !errors.Is(err, ErrConfiguration) {
				t.Fatalf("want ErrConfiguration, got %v", err)
			}
		})
	}
}
