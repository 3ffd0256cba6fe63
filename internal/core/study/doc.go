// Package study implements the Study aggregate: one research project's
// documents, excerpts, codes, themes and memos, and the only code allowed to
// change them.
//
// Every mutation that touches excerpt/code associations ends in reindex,
// which rewrites the derived Code and Document fields from the analysis
// package's counters. A Study is not safe for concurrent use; the
// services.Workbench serializes access and persists each change.
package study
