// Package core provides the business logic for spreadsheet import operations.
//
// This package holds the smart import flow of the school portal independent
// of any transport layer. It can be used by web handlers, CLI tools, or tests
// without modification.
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - Pattern tables: static alias lists per entity (student, guardian,
//     teacher) describing which spreadsheet headers mean which field.
//   - Import kinds: registered flavours ("siswa", "guru") that pick the
//     pattern tables and the bulk-create endpoint.
//   - Sessions: one operator's walk through the flow, guarded by a state
//     machine.
//   - Service: the entry point that owns sessions, limits outbound batches
//     and records audit entries.
//
// # Import Flow
//
//  1. [ParseFile] reads a workbook (first sheet) or delimited text file into
//     headers and [RawRow] values.
//  2. [DetectColumns] binds headers to canonical fields, producing a
//     [ColumnMapping] keyed "<entity>_<field>".
//  3. [BuildPreview] returns the first rows unchanged for review.
//  4. [Normalize] turns every row into a [NormalizedRecord].
//  5. [Service.Submit] sends the whole batch to the portal in one request.
//  6. [ExportCredentials] writes newly generated accounts to a workbook.
//
// # Session States
//
//	Idle -> FileLoaded -> Previewing -> Submitting -> Completed
//	                          ^              |
//	                          +--- failure --+
//
// Reset returns any session that is not submitting to Idle.
//
// # Error Handling
//
// Operator-facing failures are sentinel errors ([ErrUnsupportedFormat],
// [ErrEmptyFile], [ErrImportRequestFailed], [ErrNothingToExport] and the
// session errors). [MapError] converts them to coded messages for display.
package core
