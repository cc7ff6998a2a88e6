package writers

import (
	"fmt"
	"io"
	"sort"

	"puppy/internal/jsonlutil"
	"puppy/internal/jsonutil"
	"puppy/internal/report"
)

// ReportEmitters maps an --emit format to the writer that prints the final
// report on stdout. Registered in init; last registration wins.
var ReportEmitters = map[string]func(io.Writer, report.Report) error{}

func RegisterReport(format string, fn func(io.Writer, report.Report) error) {
	ReportEmitters[format] = fn
}

// EmitReport dispatches to the registered emitter.
func EmitReport(format string, w io.Writer, rep report.Report) error {
	fn, ok := ReportEmitters[format]
	if !ok {
		return fmt.Errorf("unknown report format %q (no writer registered)", format)
	}
	return fn(w, rep)
}

// Formats lists the registered emit formats.
func Formats() []string {
	out := make([]string, 0, len(ReportEmitters))
	for k := range ReportEmitters {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func init() {
	RegisterReport("tsv", WriteReport)
	RegisterReport("json", func(w io.Writer, rep report.Report) error {
		return jsonutil.EncodeArray(w, rep.Rows, ToAPIPair)
	})
	RegisterReport("jsonl", func(w io.Writer, rep report.Report) error {
		return jsonlutil.Write(w, rep.Rows, ToAPIPair, IsBrokenPipe)
	})
}
