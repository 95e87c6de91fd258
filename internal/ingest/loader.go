package ingest

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/JonMunkholm/tabinspect/internal/logging"
)

// Loader is the single entry point for loading a tabular file. It validates
// the path for the requested kind and delegates to the Resolver or the
// SpreadsheetLoader.
type Loader struct {
	resolver *Resolver
	sheets   *SpreadsheetLoader
	observer Observer
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithObserver reports every Load outcome to o.
func WithObserver(o Observer) LoaderOption {
	return func(l *Loader) {
		if o != nil {
			l.observer = o
		}
	}
}

// NewLoader creates a Loader. Nil collaborators get defaults: a comma
// Resolver and a SpreadsheetLoader without an installer.
func NewLoader(resolver *Resolver, sheets *SpreadsheetLoader, opts ...LoaderOption) *Loader {
	if resolver == nil {
		resolver = NewResolver()
	}
	if sheets == nil {
		sheets = NewSpreadsheetLoader(nil)
	}
	l := &Loader{resolver: resolver, sheets: sheets, observer: nopObserver{}}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads path as kind.
//
// An extension outside kind's accepted set fails with InvalidFormat before
// the filesystem is touched. A delimited path that does not exist fails
// with NotFound; spreadsheet paths are checked by the engine instead.
func (l *Loader) Load(ctx context.Context, path string, kind Kind) Result {
	ctx, _ = logging.WithRunID(ctx)
	logger := logging.WithFields(ctx, "path", path, "kind", kind.String())
	start := time.Now()

	res := l.load(ctx, path, kind)
	elapsed := time.Since(start)
	l.observer.Loaded(kind, res, elapsed)

	if res.Failure != nil {
		logger.Warn("load failed", "failure", res.Failure.Kind.String(), "detail", res.Failure.Message, "duration_ms", elapsed.Milliseconds())
	} else {
		logger.Info("load complete", "encoding", res.Encoding, "rows", res.Table.NumRows(), "columns", res.Table.NumCols(), "duration_ms", elapsed.Milliseconds())
	}
	return res
}

func (l *Loader) load(ctx context.Context, path string, kind Kind) Result {
	src := ParseSourcePath(path)

	msg, known := expectation[kind]
	if !known {
		return failed(InvalidFormat, "unknown kind %s", kind)
	}
	if !src.Accepts(kind) {
		return failed(InvalidFormat, "%s", msg)
	}

	switch kind {
	case Delimited:
		if _, err := os.Stat(src.Raw); errors.Is(err, fs.ErrNotExist) {
			return failed(NotFound, "%s", src.Raw)
		}
		return l.resolver.resolve(ctx, src.Raw, l.observer.Attempt)
	default:
		return l.sheets.Load(ctx, src.Raw)
	}
}
