package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/JonMunkholm/tabinspect/internal/logging"
	"github.com/JonMunkholm/tabinspect/internal/table"
)

// errNoColumns is returned for a delimited file without a header row.
var errNoColumns = errors.New("no columns to parse from file")

// Resolver loads delimited files, trying each candidate encoding in order.
//
// A decode error moves on to the next candidate. Any other error ends the
// loop with a ParseError, since a different encoding cannot fix it. The
// number of attempts is therefore bounded by the candidate list.
type Resolver struct {
	delimiter rune
	onAttempt func(encoding string, err error)
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithDelimiter sets the field separator (default ',').
func WithDelimiter(r rune) ResolverOption {
	return func(res *Resolver) {
		if r != 0 {
			res.delimiter = r
		}
	}
}

// WithAttemptHook registers fn to be called after every encoding attempt
// with the candidate name and the attempt's error (nil on success).
func WithAttemptHook(fn func(encoding string, err error)) ResolverOption {
	return func(res *Resolver) { res.onAttempt = fn }
}

// NewResolver creates a Resolver.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{delimiter: ','}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve parses path as delimited text.
func (r *Resolver) Resolve(ctx context.Context, path string) Result {
	return r.resolve(ctx, path, nil)
}

// resolve is Resolve with an extra per-attempt callback.
func (r *Resolver) resolve(ctx context.Context, path string, observe func(string, error)) Result {
	logger := logging.WithFields(ctx, "path", path)

	for _, c := range candidates {
		t, err := r.attempt(path, c)
		if r.onAttempt != nil {
			r.onAttempt(c.Name, err)
		}
		if observe != nil {
			observe(c.Name, err)
		}

		switch {
		case err == nil:
			logger.Debug("decoded delimited file", "encoding", c.Name, "rows", t.NumRows())
			return loaded(t, c.Name)
		case IsDecodeError(err):
			logger.Debug("encoding rejected", "encoding", c.Name, "error", err)
			continue
		default:
			logger.Debug("parse failed", "encoding", c.Name, "error", err)
			return failed(ParseError, "%v", err)
		}
	}

	return failed(EncodingUndetermined, "%s", path)
}

// attempt opens path, decodes it with c and parses the result.
// The file is closed before attempt returns.
func (r *Resolver) attempt(path string, c Candidate) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return r.parse(c.Reader(f))
}

// parse reads a header row and data rows. Short rows are padded by
// table.Build; a row wider than the header is a structural error.
func (r *Resolver) parse(src io.Reader) (*table.Table, error) {
	cr := csv.NewReader(src)
	cr.Comma = r.delimiter
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errNoColumns
	}
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) > len(header) {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: expected %d fields, saw %d", line, len(header), len(rec))
		}
		rows = append(rows, rec)
	}

	return table.Build(header, rows), nil
}
