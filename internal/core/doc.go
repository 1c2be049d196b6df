// Package core turns payroll spreadsheets into canonical payroll batches.
//
// This package contains the import pipeline independent of any store,
// transport, or UI. It can be used by web handlers, the CLI, or tests
// without modification.
//
// # Pipeline
//
//  1. [Parse] turns CSV/TSV text or an XLS/XLSX workbook into a [Grid].
//  2. [ResolveColumns] (or [AliasTable.Resolve]) maps the header row onto
//     canonical [Field] values.
//  3. [Normalize] builds one [Record] per data row, coercing amounts and
//     filling defaults.
//  4. [Aggregate] folds the records into a [Batch] with totals and an
//     index by record id.
//
// Persisting a batch is the job of the store package.
//
// # Header Matching
//
// Headers are compared after [NormalizeHeader]. Primary fields match when
// an alias and the header contain one another; extended pay-scale fields
// need every token of a rule. The leftmost matching column wins. A header
// like "Pay Date" contains the DA alias "da", so column order matters; the
// sample file from [SampleRows] resolves cleanly.
//
// # Leniency
//
// Imports tolerate partial files. Missing recommended columns produce a
// [Warning], rows with fewer than [MinRowCells] cells are skipped, and any
// amount that does not parse becomes 0. Only an unreadable container fails,
// with [*ParseError].
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each category has a code for support reference:
//
//   - FILE001-FILE006: File errors (size, type, unreadable workbook)
//   - VAL007-VAL008: Validation errors (no rows, incomplete period)
//   - STORE001-STORE003: Store errors (unavailable, write failed, not found)
//   - UPL002-UPL005: Import errors (busy, cancelled, timeout)
package core
