package oracle

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// WriteBoulder writes one Boulder-IO record: TAG=VALUE lines closed by "=".
func WriteBoulder(w io.Writer, tags ...[]KV) error {
	bw := bufio.NewWriter(w)
	for _, group := range tags {
		for _, kv := range group {
			if strings.ContainsAny(kv.Key, "=\n") || strings.Contains(kv.Value, "\n") {
				return fmt.Errorf("boulder: tag %q cannot be encoded", kv.Key)
			}
			if _, err := fmt.Fprintf(bw, "%s=%s\n", kv.Key, kv.Value); err != nil {
				return err
			}
		}
	}
	if _, err := bw.WriteString("=\n"); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadBoulder reads the first Boulder-IO record from r. Lines without "="
// are ignored; reading stops at the "=" terminator or end of input.
func ReadBoulder(r io.Reader) ([]KV, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 64<<20)
	var out []KV
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "=" {
			break
		}
		i := strings.IndexByte(line, '=')
		if i <= 0 {
			continue
		}
		out = append(out, KV{Key: line[:i], Value: line[i+1:]})
	}
	return out, sc.Err()
}
