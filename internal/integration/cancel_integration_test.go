package integration

import (
	"context"
	"io"
	"testing"
	"time"

	"puppy/internal/app"
)

func TestCtrlC_MidDesign_Exit130(t *testing.T) {
	f := newFixture(t)
	f.primer3 = stub(t, f.path("slow_primer3"), "exec sleep 30\n")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	code := app.RunContext(ctx, []string{
		"design", "-i", f.alignments, "-t", f.cds, "-o", f.path("out"),
		"--primer3-bin", f.primer3,
	}, io.Discard, io.Discard)
	if code != 130 {
		t.Fatalf("expected exit 130 on cancel, got %d", code)
	}
	if d := time.Since(start); d > 10*time.Second {
		t.Fatalf("cancel took %s", d)
	}
}
