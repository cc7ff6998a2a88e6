// Package seqstore resolves (species, gene) to a CDS nucleotide sequence.
package seqstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"puppy/internal/fasta"
)

// ErrUnresolvedSequence is returned when no sequence matches a gene.
var ErrUnresolvedSequence = errors.New("unresolved sequence")

// Store looks up a gene's nucleotide sequence.
type Store interface {
	Lookup(species, gene string) (string, error)
}

// File is one indexed CDS FASTA.
type File struct {
	Species string
	Path    string
}

type entry struct {
	once sync.Once
	recs []fasta.Record
	err  error
}

// Dir serves sequences from a directory of per-species CDS FASTA files
// (*.fna, *.fna.gz). Files are parsed on first use and kept in memory.
// Safe for concurrent use.
type Dir struct {
	files []File

	mu     sync.Mutex
	loaded map[string]*entry
}

// Open indexes the CDS files under dir.
func Open(dir string) (*Dir, error) {
	st, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", dir)
	}
	var paths []string
	for _, pat := range []string{"*.fna", "*.fna.gz"} {
		m, err := filepath.Glob(filepath.Join(dir, pat))
		if err != nil {
			return nil, err
		}
		paths = append(paths, m...)
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, fmt.Errorf("%s: no .fna files found", dir)
	}
	d := &Dir{loaded: map[string]*entry{}}
	for _, p := range paths {
		d.files = append(d.files, File{Species: SpeciesFromPath(p), Path: p})
	}
	return d, nil
}

// SpeciesFromPath derives the species name from a CDS file name: the base
// name up to "_cds", or without its extension when there is none.
func SpeciesFromPath(path string) string {
	base := filepath.Base(path)
	if i := strings.Index(base, "_cds"); i > 0 {
		return base[:i]
	}
	base = strings.TrimSuffix(base, ".gz")
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Files returns the indexed files in name order.
func (d *Dir) Files() []File { return append([]File(nil), d.files...) }

// Species returns the species names in file order.
func (d *Dir) Species() []string {
	out := make([]string, len(d.files))
	for i, f := range d.files {
		out[i] = f.Species
	}
	return out
}

// file picks the CDS file for species. In order: an exact species-name
// match, a file whose name contains species, the file whose species is the
// longest one contained in species (a strain-suffixed label such as
// "Akk-muc" against Akk_cds.fna), then a file whose name starts with the
// text before the first "-".
func (d *Dir) file(species string) (File, bool) {
	for _, f := range d.files {
		if f.Species == species {
			return f, true
		}
	}
	for _, f := range d.files {
		if strings.Contains(filepath.Base(f.Path), species) {
			return f, true
		}
	}
	best := -1
	for i, f := range d.files {
		if f.Species != "" && strings.Contains(species, f.Species) &&
			(best < 0 || len(f.Species) > len(d.files[best].Species)) {
			best = i
		}
	}
	if best >= 0 {
		return d.files[best], true
	}
	if prefix, _, ok := strings.Cut(species, "-"); ok && prefix != "" {
		for _, f := range d.files {
			if strings.HasPrefix(filepath.Base(f.Path), prefix) {
				return f, true
			}
		}
	}
	return File{}, false
}

func (d *Dir) records(f File) ([]fasta.Record, error) {
	d.mu.Lock()
	e, ok := d.loaded[f.Path]
	if !ok {
		e = &entry{}
		d.loaded[f.Path] = e
	}
	d.mu.Unlock()

	e.once.Do(func() { e.recs, e.err = fasta.ReadAll(f.Path) })
	return e.recs, e.err
}

// Lookup returns the sequence of the record for gene. A record named
// exactly <species>_<gene> or <species>.<gene> wins, then the first whose
// ID ends in _<gene> or .<gene>, then the first whose ID contains gene.
func (d *Dir) Lookup(species, gene string) (string, error) {
	f, ok := d.file(species)
	if !ok {
		return "", fmt.Errorf("%s/%s: %w: no CDS file for species", species, gene, ErrUnresolvedSequence)
	}
	recs, err := d.records(f)
	if err != nil {
		return "", err
	}
	var suffix, first *fasta.Record
	for i := range recs {
		id := recs[i].ID
		if id == species+"_"+gene || id == species+"."+gene {
			return string(recs[i].Seq), nil
		}
		if suffix == nil && (strings.HasSuffix(id, "_"+gene) || strings.HasSuffix(id, "."+gene)) {
			suffix = &recs[i]
		}
		if first == nil && strings.Contains(id, gene) {
			first = &recs[i]
		}
	}
	if suffix != nil {
		first = suffix
	}
	if first == nil {
		return "", fmt.Errorf("%s/%s: %w: no record in %s", species, gene, ErrUnresolvedSequence, filepath.Base(f.Path))
	}
	return string(first.Seq), nil
}

// Count is the number of CDS records in one species file.
type Count struct {
	Species string
	Genes   int
}

// Counts tallies FASTA records per species without loading sequences.
func (d *Dir) Counts() ([]Count, error) {
	out := make([]Count, 0, len(d.files))
	for _, f := range d.files {
		n, err := fasta.Count(f.Path)
		if err != nil {
			return nil, err
		}
		out = append(out, Count{Species: f.Species, Genes: n})
	}
	return out, nil
}

// Map is an in-memory Store keyed by species then gene.
type Map map[string]map[string]string

func (m Map) Lookup(species, gene string) (string, error) {
	if s, ok := m[species][gene]; ok {
		return s, nil
	}
	return "", fmt.Errorf("%s/%s: %w", species, gene, ErrUnresolvedSequence)
}
