package classify

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"puppy/internal/fasta"
)

// CatalogHeader is the header row of the unique-gene catalog (final_genes.tsv).
var CatalogHeader = []string{"species_name", "gene_name", "gene_length"}

// LoadCatalogFile reads a previously written unique-gene catalog.
func LoadCatalogFile(path string) ([]Gene, error) {
	rc, err := fasta.Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	genes, err := LoadCatalog(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return genes, nil
}

// LoadCatalog parses a catalog table. The header row is required. Cells
// may be quoted the way encoding/csv writes them.
func LoadCatalog(r io.Reader) ([]Gene, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	var out []Gene
	for first := true; ; first = false {
		f, err := cr.Read()
		if err == io.EOF {
			if first {
				return nil, fmt.Errorf("line 1: missing catalog header %q", strings.Join(CatalogHeader, "\t"))
			}
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		ln, _ := cr.FieldPos(0)
		if first {
			if len(f) < 3 || f[0] != CatalogHeader[0] {
				return nil, fmt.Errorf("line %d: missing catalog header %q", ln, strings.Join(CatalogHeader, "\t"))
			}
			continue
		}
		if len(f) == 1 && strings.TrimSpace(f[0]) == "" {
			continue
		}
		if len(f) != 3 {
			return nil, fmt.Errorf("line %d: bad field count %d", ln, len(f))
		}
		n, err := strconv.Atoi(strings.TrimSpace(f[2]))
		if err != nil {
			return nil, fmt.Errorf("line %d: gene_length %q: %v", ln, f[2], err)
		}
		out = append(out, Gene{Species: f[0], Gene: f[1], Length: n})
	}
}
