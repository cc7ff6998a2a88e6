package integration

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// Two target species. cds_1 and cds_7 only hit themselves (unique genes);
// cds_2 and cds_8 are a perfect ortholog pair (an ideal group gene).
var alignmentRows = [][]string{
	row("Akk-muc_cds_1", "Akk-muc_cds_1"),
	row("Akk-muc_cds_2", "Akk-muc_cds_2"),
	row("Akk-muc_cds_2", "Bac-fra_cds_8"),
	row("Bac-fra_cds_7", "Bac-fra_cds_7"),
	row("Bac-fra_cds_8", "Bac-fra_cds_8"),
	row("Bac-fra_cds_8", "Akk-muc_cds_2"),
}

func row(q, t string) []string {
	return []string{q, t, "300", "300", "300", "1", "300", "1", "300", "100", "1", "1", "1e-150"}
}

const stubPairs = `PRIMER_PAIR_NUM_RETURNED=2
PRIMER_PAIR_0_PENALTY=0.21
PRIMER_LEFT_0_SEQUENCE=ACGTTGCAACGTTGCAACGT
PRIMER_RIGHT_0_SEQUENCE=TTGCAACGTTGCAACGTTGC
PRIMER_LEFT_0_TM=60.1
PRIMER_RIGHT_0_TM=59.9
PRIMER_LEFT_0_GC_PERCENT=50
PRIMER_RIGHT_0_GC_PERCENT=50
PRIMER_PAIR_0_PRODUCT_SIZE=120
PRIMER_PAIR_1_PENALTY=0.48
PRIMER_LEFT_1_SEQUENCE=GGTTGCAACGTTGCAACG
PRIMER_RIGHT_1_SEQUENCE=CAACGTTGCAACGTTGCA
PRIMER_LEFT_1_TM=59.2
PRIMER_RIGHT_1_TM=60.4
PRIMER_LEFT_1_GC_PERCENT=55.6
PRIMER_RIGHT_1_GC_PERCENT=50
PRIMER_PAIR_1_PRODUCT_SIZE=98
=
`

type fixture struct {
	dir        string
	cds        string
	alignments string
	primer3    string
}

func (f fixture) path(parts ...string) string {
	return filepath.Join(append([]string{f.dir}, parts...)...)
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub primer3_core needs a POSIX shell")
	}
	f := fixture{dir: t.TempDir()}
	f.cds = f.path("cds")
	if err := os.MkdirAll(f.cds, 0o755); err != nil {
		t.Fatal(err)
	}
	writeCDS(t, filepath.Join(f.cds, "Akk-muc_cds.fna"), "Akk-muc_cds_1", "Akk-muc_cds_2")
	writeCDS(t, filepath.Join(f.cds, "Bac-fra_cds.fna"), "Bac-fra_cds_7", "Bac-fra_cds_8")

	var b strings.Builder
	for _, r := range alignmentRows {
		b.WriteString(strings.Join(r, "\t"))
		b.WriteByte('\n')
	}
	f.alignments = write(t, f.path("ResultDB.tsv"), b.String())
	f.primer3 = stub(t, f.path("primer3_core"), "cat <<'EOF'\n"+stubPairs+"EOF\n")
	return f
}

// strainCDS replaces the CDS directory with files named by genus only
// (Akk_cds.fna, Bac_cds.fna) while records keep the strain-suffixed labels
// used in the alignment table.
func (f *fixture) strainCDS(t *testing.T) {
	t.Helper()
	f.cds = f.path("cds_genus")
	if err := os.MkdirAll(f.cds, 0o755); err != nil {
		t.Fatal(err)
	}
	writeCDS(t, filepath.Join(f.cds, "Akk_cds.fna"), "Akk-muc_cds_1", "Akk-muc_cds_2")
	writeCDS(t, filepath.Join(f.cds, "Bac_cds.fna"), "Bac-fra_cds_7", "Bac-fra_cds_8")
}

func writeCDS(t *testing.T, path string, ids ...string) {
	t.Helper()
	var b strings.Builder
	for i, id := range ids {
		seq := strings.Repeat("ACGTTGCA", 40)[i : i+300]
		fmt.Fprintf(&b, ">%s [gene=x%d]\n%s\n%s\n", id, i, strings.ToLower(seq[:150]), seq[150:])
	}
	write(t, path, b.String())
}

func write(t *testing.T, fn, data string) string {
	t.Helper()
	if err := os.WriteFile(fn, []byte(data), 0o644); err != nil {
		t.Fatalf("write %s: %v", fn, err)
	}
	return fn
}

// stub writes an executable primer3_core stand-in that swallows stdin.
func stub(t *testing.T, path, body string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte("#!/bin/sh\ncat >/dev/null\n"+body), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

// records reads a tab-separated table whose cells may be quoted.
func records(t *testing.T, path string) [][]string {
	t.Helper()
	fh, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer fh.Close()
	r := csv.NewReader(fh)
	r.Comma = '\t'
	recs, err := r.ReadAll()
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return recs
}

func lines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}
