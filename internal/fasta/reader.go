// internal/fasta/reader.go
package fasta

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// Record is one FASTA entry. ID is the first whitespace-delimited token of
// the header line.
type Record struct {
	ID  string
	Seq []byte
}

// Each scans path and calls fn for every record in file order.
// Returning a non-nil error from fn stops the scan.
func Each(path string, fn func(Record) error) error {
	rc, err := openReader(path)
	if err != nil {
		return err
	}
	defer rc.Close()
	return scan(rc, fn)
}

// ReadAll returns every record of path in file order.
func ReadAll(path string) ([]Record, error) {
	var list []Record
	err := Each(path, func(r Record) error {
		list = append(list, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// Count returns the number of header lines in path without keeping sequences.
func Count(path string) (int, error) {
	rc, err := openReader(path)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	n := 0
	r := bufio.NewReader(rc)
	for {
		line, err := r.ReadBytes('\n')
		if len(line) > 0 && line[0] == '>' {
			n++
		}
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, err
		}
	}
}

func scan(rd io.Reader, fn func(Record) error) error {
	sc := bufio.NewScanner(rd)
	const maxLine = 64 * 1024 * 1024 // single-line genomes
	sc.Buffer(make([]byte, 64*1024), maxLine)

	var (
		id  string
		seq []byte
	)
	flush := func() error {
		if id == "" {
			return nil
		}
		return fn(Record{ID: id, Seq: bytes.Clone(seq)})
	}

	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			if err := flush(); err != nil {
				return err
			}
			id = headerID(line[1:])
			seq = seq[:0]
			continue
		}
		seq = append(seq, bytes.ToUpper(line)...)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("fasta scan: %w", err)
	}
	return flush()
}

func headerID(h []byte) string {
	f := strings.Fields(string(h))
	if len(f) == 0 {
		return ""
	}
	return f[0]
}

/* ---------------- small helpers ---------------- */

func openReader(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(fh)
		if err != nil {
			fh.Close()
			return nil, err
		}
		return struct {
			io.Reader
			io.Closer
		}{Reader: gr, Closer: fh}, nil
	}
	return fh, nil
}

// Open exposes the gzip/stdin aware opener for other tabular inputs.
func Open(path string) (io.ReadCloser, error) { return openReader(path) }
