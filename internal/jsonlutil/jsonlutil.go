// Package jsonlutil streams values as JSON lines.
package jsonlutil

import (
	"bufio"
	"encoding/json"
	"io"
	"sync"
)

var bwPool = sync.Pool{
	New: func() any {
		return bufio.NewWriterSize(io.Discard, 64<<10)
	},
}

// Start spins up a JSONL encoder goroutine for values of type T. Each value
// is converted with wire before encoding. Errors recognized by ignore (a
// closed downstream pipe) are not reported.
func Start[T, W any](out io.Writer, bufSize int, wire func(T) W, ignore func(error) bool) (chan<- T, <-chan error) {
	if bufSize <= 0 {
		bufSize = 64
	}
	in := make(chan T, bufSize)
	done := make(chan error, 1)

	go func() {
		bw := bwPool.Get().(*bufio.Writer)
		bw.Reset(out)
		defer func() {
			bw.Reset(io.Discard)
			bwPool.Put(bw)
		}()

		enc := json.NewEncoder(bw)
		var err error
		for v := range in {
			if err != nil {
				continue // drain so senders never block
			}
			err = enc.Encode(wire(v))
		}
		if err == nil {
			err = bw.Flush()
		}
		if err != nil && ignore != nil && ignore(err) {
			err = nil
		}
		done <- err
	}()

	return in, done
}

// Write encodes every item synchronously through Start.
func Write[T, W any](out io.Writer, items []T, wire func(T) W, ignore func(error) bool) error {
	in, done := Start(out, len(items), wire, ignore)
	for _, v := range items {
		in <- v
	}
	close(in)
	return <-done
}
