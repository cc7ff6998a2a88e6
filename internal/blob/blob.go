// Package blob copies finished run outputs to a directory or an S3 bucket.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// ErrInvalidKey is returned for keys that are empty, absolute or escape the root.
var ErrInvalidKey = errors.New("invalid blob key")

// Store receives objects by key.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader) error
	// Location describes where keys end up, for log lines.
	Location() string
}

// Target is a parsed --upload destination.
type Target struct {
	Scheme string // "s3" or "file"
	Bucket string // s3 only
	Prefix string // key prefix (s3) or root directory (file)
}

// ParseTarget accepts s3://bucket[/prefix], file:///dir or a plain directory.
func ParseTarget(uri string) (Target, error) {
	uri = strings.TrimSpace(uri)
	switch {
	case uri == "":
		return Target{}, errors.New("empty upload target")
	case strings.HasPrefix(uri, "s3://"):
		rest := strings.TrimPrefix(uri, "s3://")
		bucket, prefix, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return Target{}, fmt.Errorf("upload target %q: missing bucket", uri)
		}
		return Target{Scheme: "s3", Bucket: bucket, Prefix: strings.Trim(prefix, "/")}, nil
	case strings.HasPrefix(uri, "file://"):
		return Target{Scheme: "file", Prefix: strings.TrimPrefix(uri, "file://")}, nil
	case strings.Contains(uri, "://"):
		return Target{}, fmt.Errorf("upload target %q: unsupported scheme", uri)
	}
	return Target{Scheme: "file", Prefix: uri}, nil
}

// KeyPrefix is the prefix UploadDir should put in front of relative paths.
func (t Target) KeyPrefix() string {
	if t.Scheme == "s3" {
		return t.Prefix
	}
	return ""
}

func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("%w: absolute %q", ErrInvalidKey, key)
	}
	clean := path.Clean(filepath.ToSlash(key))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q leaves the root", ErrInvalidKey, key)
	}
	return clean, nil
}

// UploadDir puts every regular file under dir into st, keyed by prefix plus
// the slash-separated relative path. Keys are sent in lexical order.
func UploadDir(ctx context.Context, st Store, dir, prefix string) (int, error) {
	var rels []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		rels = append(rels, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(rels)

	n := 0
	for _, rel := range rels {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		key := rel
		if prefix != "" {
			key = strings.TrimSuffix(prefix, "/") + "/" + rel
		}
		if err := putFile(ctx, st, key, filepath.Join(dir, filepath.FromSlash(rel))); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func putFile(ctx context.Context, st Store, key, p string) error {
	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := st.Put(ctx, key, f); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}
