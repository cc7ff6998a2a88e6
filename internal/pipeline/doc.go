// Package pipeline maps ranked loci to primer oracle calls in parallel and
// collects the parsed pairs in locus order.
//
// The oracle and the sequence store are injected, which keeps the pipeline
// testable without primer3_core or CDS files.
package pipeline
