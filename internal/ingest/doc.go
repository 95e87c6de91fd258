// Package ingest loads a single tabular file into a table.Table.
//
// Loader is the entry point. Delimited files go through Resolver, which
// tries utf-8, latin1, iso-8859-1 and cp1252 in that order and stops at the
// first encoding that decodes the file or at the first error that is not a
// decoding error. Workbooks go through SpreadsheetLoader, which installs a
// missing engine with an Installer and retries once.
//
// Every outcome is a Result: a table, or a Failure with one of the kinds
// InvalidFormat, NotFound, EncodingUndetermined, ParseError or
// MissingDependency. Load never panics on bad input.
package ingest
