// Package writers serializes catalogs, tier tables and primer reports.
//
// Tables are tab separated with a header row; fields holding tabs, quotes or
// newlines (the multi-line tier comments) are quoted. JSON and JSONL go
// through pkg/api (v1) for a stable wire format.
package writers
