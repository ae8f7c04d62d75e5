// Package ingestion provides the bulk load pipeline: formatting raw records
// into write actions, chunked dispatch of bulk requests under an admission
// cap, and per-item failure handling.
//
// The Pipeline type drives a record source through the Formatter and
// Dispatcher and, on release runs, asks the rollover manager to promote the
// freshly loaded generation. Data-level problems never abort a run: they are
// logged (and journaled when a journal is configured) and the load continues.
// Only a structural failure of the record source is fatal.
package ingestion
