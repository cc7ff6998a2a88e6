// ./internal/arch/arch_test.go
package arch

import (
	"bytes"
	"encoding/json"
	"io"
	"os/exec"
	"strings"
	"testing"
)

type pkg struct {
	ImportPath string
	Imports    []string
	Standard   bool
}

func TestImportBoundaries(t *testing.T) {
	cmd := exec.Command("go", "list", "-json", "./...")
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		t.Fatalf("go list: %v", err)
	}
	dec := json.NewDecoder(&out)

	bans := map[string][]string{
		"puppy/internal/alignment": {
			"puppy/internal/app", "puppy/internal/cli", "puppy/internal/pipeline",
			"puppy/internal/writers", "puppy/internal/store", "puppy/internal/blob",
			"puppy/cmd/",
		},
		"puppy/internal/classify": {
			"puppy/internal/app", "puppy/internal/cli", "puppy/internal/pipeline",
			"puppy/internal/writers", "puppy/internal/store", "puppy/internal/blob",
			"puppy/cmd/",
		},
		"puppy/internal/rank": {
			"puppy/internal/app", "puppy/internal/cli", "puppy/internal/pipeline",
			"puppy/internal/writers", "puppy/internal/store", "puppy/internal/blob",
			"puppy/cmd/",
		},
		"puppy/internal/pairs": {
			"puppy/internal/app", "puppy/internal/cli", "puppy/internal/pipeline",
			"puppy/internal/writers", "puppy/internal/store", "puppy/internal/blob",
			"puppy/cmd/",
		},
		"puppy/internal/report": {
			"puppy/internal/app", "puppy/internal/cli", "puppy/internal/pipeline",
			"puppy/internal/writers", "puppy/internal/store", "puppy/internal/blob",
			"puppy/cmd/",
		},
		"puppy/internal/pipeline": {
			"puppy/internal/app", "puppy/internal/cli", "puppy/internal/writers",
			"puppy/internal/store", "puppy/internal/blob", "puppy/cmd/",
		},
		"puppy/internal/writers": {
			"puppy/internal/app", "puppy/internal/cli", "puppy/internal/pipeline",
			"puppy/cmd/",
		},
		"puppy/internal/store": {
			"puppy/internal/app", "puppy/internal/cli", "puppy/cmd/",
		},
		"puppy/internal/blob": {
			"puppy/internal/app", "puppy/internal/cli", "puppy/cmd/",
		},
	}

	var violations []string
	for {
		var p pkg
		if err := dec.Decode(&p); err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !strings.HasPrefix(p.ImportPath, "puppy/") {
			continue
		}
		imp := p.ImportPath
		for prefix, forbidden := range bans {
			if !strings.HasPrefix(imp, prefix) {
				continue
			}
			for _, dep := range p.Imports {
				if !strings.HasPrefix(dep, "puppy/") {
					continue
				}
				for _, ban := range forbidden {
					if strings.HasPrefix(dep, ban) {
						violations = append(violations, imp+" → "+dep)
					}
				}
			}
		}
	}

	if len(violations) > 0 {
		t.Fatalf("import boundary violations:\n  %s", strings.Join(violations, "\n  "))
	}
}
