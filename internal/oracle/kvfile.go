package oracle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"puppy/internal/fasta"
)

// WriteKV writes one "KEY\tVALUE" line per pair.
func WriteKV(w io.Writer, kvs []KV) error {
	bw := bufio.NewWriter(w)
	for _, kv := range kvs {
		if _, err := fmt.Fprintf(bw, "%s\t%s\n", kv.Key, kv.Value); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteKVFile persists raw oracle output for one locus.
func WriteKVFile(path string, kvs []KV) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteKV(f, kvs); err != nil {
		_ = f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// ReadKV parses "KEY\tVALUE" lines. Values are trimmed, so files written
// with a space after the tab read back the same.
func ReadKV(r io.Reader) ([]KV, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 64<<20)
	var out []KV
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		k, v, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, fmt.Errorf("line %d: expected KEY<TAB>VALUE", ln)
		}
		out = append(out, KV{Key: strings.TrimSpace(k), Value: strings.TrimSpace(v)})
	}
	return out, sc.Err()
}

// ReadKVFile reads one persisted locus file (gzip aware).
func ReadKVFile(path string) ([]KV, error) {
	rc, err := fasta.Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	kvs, err := ReadKV(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return kvs, nil
}

// KVFileName is the per-locus file name under the primer3_files directory.
func KVFileName(species, gene string) string {
	return species + "_" + gene + ".tsv"
}

// SplitKVFileName recovers species and gene from a per-locus file name.
// The species ends where "_cds" or "_peg" begins.
func SplitKVFileName(path string) (species, gene string, ok bool) {
	base := strings.TrimSuffix(filepath.Base(path), ".tsv")
	i := strings.Index(base, "_cds")
	if i < 0 {
		i = strings.Index(base, "_peg")
	}
	if i <= 0 {
		return "", "", false
	}
	return base[:i], base[i+1:], true
}
