// Package store records runs, their candidate genes and designed pairs in
// a SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"puppy/internal/pairs"
)

// ErrRunNotFound is returned for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	mode        TEXT NOT NULL,
	input       TEXT NOT NULL,
	cds_dir     TEXT NOT NULL,
	outdir      TEXT NOT NULL,
	status      TEXT NOT NULL,
	started_at  INTEGER NOT NULL,
	finished_at INTEGER,
	loci        INTEGER NOT NULL DEFAULT 0,
	pairs       INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS genes (
	run_id  TEXT NOT NULL REFERENCES runs(id),
	species TEXT NOT NULL,
	gene    TEXT NOT NULL,
	length  INTEGER NOT NULL,
	bucket  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS pairs (
	run_id        TEXT NOT NULL REFERENCES runs(id),
	species       TEXT NOT NULL,
	gene          TEXT NOT NULL,
	pair_index    INTEGER NOT NULL,
	penalty       REAL NOT NULL,
	amplicon_size INTEGER NOT NULL,
	f_primer      TEXT NOT NULL,
	r_primer      TEXT NOT NULL,
	f_tm          REAL NOT NULL,
	r_tm          REAL NOT NULL,
	f_gc          REAL NOT NULL,
	r_gc          REAL NOT NULL
);`

// Run statuses.
const (
	StatusRunning  = "running"
	StatusDone     = "done"
	StatusNoResult = "no_result"
	StatusFailed   = "failed"
)

// Run is one row of the runs table.
type Run struct {
	ID       uuid.UUID
	Mode     string
	Input    string
	CDSDir   string
	OutDir   string
	Status   string
	Started  time.Time
	Finished time.Time
	Loci     int
	Pairs    int
}

// GeneRow is one candidate gene with the bucket it was chosen from
// ("unique", "ideal", "secondary", "undesired").
type GeneRow struct {
	Species string
	Gene    string
	Length  int
	Bucket  string
}

type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// BeginRun inserts a running run and returns its ID. A zero r.ID gets a
// fresh one.
func (s *Store) BeginRun(ctx context.Context, r Run) (uuid.UUID, error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Started.IsZero() {
		r.Started = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, mode, input, cds_dir, outdir, status, started_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), r.Mode, r.Input, r.CDSDir, r.OutDir, StatusRunning, r.Started.UnixMilli())
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert run: %w", err)
	}
	return r.ID, nil
}

// RecordGenes stores the candidate genes of a run.
func (s *Store) RecordGenes(ctx context.Context, id uuid.UUID, genes []GeneRow) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO genes (run_id, species, gene, length, bucket) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()
		for _, g := range genes {
			if _, err := stmt.ExecContext(ctx, id.String(), g.Species, g.Gene, g.Length, g.Bucket); err != nil {
				return fmt.Errorf("insert gene %s/%s: %w", g.Species, g.Gene, err)
			}
		}
		return nil
	})
}

// RecordPairs stores the designed pairs of a run.
func (s *Store) RecordPairs(ctx context.Context, id uuid.UUID, rows []pairs.Result) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO pairs
			(run_id, species, gene, pair_index, penalty, amplicon_size, f_primer, r_primer, f_tm, r_tm, f_gc, r_gc)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()
		for _, p := range rows {
			if _, err := stmt.ExecContext(ctx, id.String(), p.Species, p.Gene, p.PairIndex, p.PairPenalty, p.AmpliconSize,
				p.Forward, p.Reverse, p.ForwardTm, p.ReverseTm, p.ForwardGC, p.ReverseGC); err != nil {
				return fmt.Errorf("insert pair %s/%s#%d: %w", p.Species, p.Gene, p.PairIndex, err)
			}
		}
		return nil
	})
}

// FinishRun closes a run with its final status and totals.
func (s *Store) FinishRun(ctx context.Context, id uuid.UUID, status string, loci, pairCount int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, finished_at = ?, loci = ?, pairs = ? WHERE id = ?`,
		status, time.Now().UnixMilli(), loci, pairCount, id.String())
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}
	return nil
}

// Run loads one run.
func (s *Store) Run(ctx context.Context, id uuid.UUID) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, mode, input, cds_dir, outdir, status, started_at, finished_at, loci, pairs FROM runs WHERE id = ?`, id.String())
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}
	return r, err
}

// Runs lists every run, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, mode, input, cds_dir, outdir, status, started_at, finished_at, loci, pairs FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Pairs returns the stored pairs of a run in insertion order.
func (s *Store) Pairs(ctx context.Context, id uuid.UUID) ([]pairs.Result, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT species, gene, pair_index, penalty, amplicon_size, f_primer, r_primer, f_tm, r_tm, f_gc, r_gc
		FROM pairs WHERE run_id = ? ORDER BY rowid`, id.String())
	if err != nil {
		return nil, fmt.Errorf("select pairs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []pairs.Result
	for rows.Next() {
		var p pairs.Result
		if err := rows.Scan(&p.Species, &p.Gene, &p.PairIndex, &p.PairPenalty, &p.AmpliconSize,
			&p.Forward, &p.Reverse, &p.ForwardTm, &p.ReverseTm, &p.ForwardGC, &p.ReverseGC); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		p.ForwardLen, p.ReverseLen = len(p.Forward), len(p.Reverse)
		out = append(out, p)
	}
	return out, rows.Err()
}

// Genes returns the stored candidate genes of a run.
func (s *Store) Genes(ctx context.Context, id uuid.UUID) ([]GeneRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT species, gene, length, bucket FROM genes WHERE run_id = ? ORDER BY rowid`, id.String())
	if err != nil {
		return nil, fmt.Errorf("select genes: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []GeneRow
	for rows.Next() {
		var g GeneRow
		if err := rows.Scan(&g.Species, &g.Gene, &g.Length, &g.Bucket); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r        Run
		id       string
		started  int64
		finished sql.NullInt64
	)
	if err := sc.Scan(&id, &r.Mode, &r.Input, &r.CDSDir, &r.OutDir, &r.Status, &started, &finished, &r.Loci, &r.Pairs); err != nil {
		return Run{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Run{}, fmt.Errorf("run id %q: %w", id, err)
	}
	r.ID = parsed
	r.Started = time.UnixMilli(started)
	if finished.Valid {
		r.Finished = time.UnixMilli(finished.Int64)
	}
	return r, nil
}

func (s *Store) tx(ctx context.Context, fn func(*sql.Tx) error) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
