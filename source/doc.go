// Package source provides the record source abstraction and the CSV
// implementation of it.
//
// A source yields groups of records rather than single rows so the pipeline
// can hand the write path naturally sized batches. Structural parse errors
// are surfaced, never skipped: a truncated or corrupt file must abort the
// run rather than silently produce a partial index.
package source
