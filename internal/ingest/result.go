package ingest

import (
	"fmt"

	"github.com/JonMunkholm/tabinspect/internal/table"
)

// FailureKind classifies why a load did not produce a table.
type FailureKind int

const (
	// InvalidFormat: the extension is not accepted for the requested kind.
	InvalidFormat FailureKind = iota + 1
	// NotFound: the delimited file does not exist.
	NotFound
	// EncodingUndetermined: every candidate encoding failed to decode.
	EncodingUndetermined
	// ParseError: a structural or I/O failure that retrying cannot fix.
	ParseError
	// MissingDependency: an optional engine is absent and could not be installed.
	MissingDependency
)

func (k FailureKind) String() string {
	switch k {
	case InvalidFormat:
		return "InvalidFormat"
	case NotFound:
		return "NotFound"
	case EncodingUndetermined:
		return "EncodingUndetermined"
	case ParseError:
		return "ParseError"
	case MissingDependency:
		return "MissingDependency"
	default:
		return fmt.Sprintf("FailureKind(%d)", int(k))
	}
}

// Failure is the error half of a Result.
type Failure struct {
	Kind    FailureKind
	Message string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// Result is either a loaded table or a failure, never both.
type Result struct {
	// Table is set when the load succeeded. The caller owns it.
	Table *table.Table
	// Encoding is the candidate that decoded a delimited file; empty for
	// spreadsheets.
	Encoding string
	// Failure is set when the load failed.
	Failure *Failure
}

func loaded(t *table.Table, encoding string) Result {
	return Result{Table: t, Encoding: encoding}
}

func failed(kind FailureKind, format string, args ...any) Result {
	return Result{Failure: &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}}
}

// Loaded reports whether the result carries a table.
func (r Result) Loaded() bool { return r.Failure == nil && r.Table != nil }

// Err returns the failure as an error, or nil for a loaded result.
func (r Result) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}

// Kind returns the failure kind, or 0 for a loaded result.
func (r Result) Kind() FailureKind {
	if r.Failure == nil {
		return 0
	}
	return r.Failure.Kind
}
