package oracle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultPrimer3Bin is looked up on PATH when no binary is configured.
const DefaultPrimer3Bin = "primer3_core"

// Primer3 runs primer3_core once per request.
type Primer3 struct {
	Bin string
	// ThermoPath sets PRIMER_THERMODYNAMIC_PARAMETERS_PATH when non-empty.
	ThermoPath string
}

// Design feeds one Boulder-IO record on stdin and returns the output tags
// that were not part of the input, in emission order.
func (p Primer3) Design(ctx context.Context, req Request, s Settings) ([]KV, error) {
	bin := p.Bin
	if bin == "" {
		bin = DefaultPrimer3Bin
	}
	in := append(req.Tags(), s.Tags()...)
	if p.ThermoPath != "" {
		in = append(in, KV{"PRIMER_THERMODYNAMIC_PARAMETERS_PATH", p.ThermoPath})
	}

	var stdin, stdout, stderr bytes.Buffer
	if err := WriteBoulder(&stdin, in); err != nil {
		return nil, err
	}
	cmd := exec.CommandContext(ctx, bin)
	cmd.Stdin = &stdin
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = 2 * time.Second
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			// not started: missing or non-executable binary
			return nil, fmt.Errorf("run %s: %w", bin, err)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, &DesignError{ID: req.ID, Msg: bin + ": " + msg}
	}

	kvs, err := ReadBoulder(&stdout)
	if err != nil {
		return nil, fmt.Errorf("%s: reading %s output: %w", req.ID, bin, err)
	}
	sent := make(map[string]struct{}, len(in))
	for _, kv := range in {
		sent[kv.Key] = struct{}{}
	}
	out := kvs[:0]
	for _, kv := range kvs {
		if kv.Key == "PRIMER_ERROR" {
			return nil, &DesignError{ID: req.ID, Msg: kv.Value}
		}
		if _, echoed := sent[kv.Key]; echoed {
			continue
		}
		out = append(out, kv)
	}
	return out, nil
}
