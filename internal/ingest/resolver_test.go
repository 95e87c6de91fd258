package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/tabinspect/internal/table"
)

type attempt struct {
	encoding string
	err      error
}

func recordAttempts(got *[]attempt) ResolverOption {
	return WithAttemptHook(func(enc string, err error) {
		*got = append(*got, attempt{enc, err})
	})
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// ============================================================================
// Encoding fallback
// ============================================================================

func TestResolve_UTF8(t *testing.T) {
	path := writeFile(t, "people.csv", []byte("name,age\nZoë,31\nBo,\n"))

	var attempts []attempt
	res := NewResolver(recordAttempts(&attempts)).Resolve(context.Background(), path)

	require.True(t, res.Loaded(), "failure: %v", res.Err())
	assert.Equal(t, "utf-8", res.Encoding)
	assert.Len(t, attempts, 1)
	assert.Equal(t, []string{"name", "age"}, res.Table.Names())
	assert.Equal(t, "Zoë", res.Table.Columns[0].Values[0].String())
	assert.True(t, res.Table.Columns[1].Values[1].IsMissing())
	assert.True(t, res.Table.Columns[1].Numeric())
}

func TestResolve_SkipsUTF8BOM(t *testing.T) {
	path := writeFile(t, "bom.csv", []byte("\xef\xbb\xbfid,v\n1,2\n"))

	res := NewResolver().Resolve(context.Background(), path)

	require.True(t, res.Loaded())
	assert.Equal(t, "id", res.Table.Names()[0])
}

func TestResolve_FallsBackToCP1252(t *testing.T) {
	// 0xE9 is é and 0x93/0x94 are curly quotes in cp1252. 0xE9 followed by
	// ',' is invalid UTF-8 and 0x93 lies in the C1 range.
	path := writeFile(t, "notes.csv", []byte("name,note\nJos\xe9,\x93quoted\x94\n"))

	var attempts []attempt
	res := NewResolver(recordAttempts(&attempts)).Resolve(context.Background(), path)

	require.True(t, res.Loaded(), "failure: %v", res.Err())
	assert.Equal(t, "cp1252", res.Encoding)
	assert.Equal(t, "José", res.Table.Columns[0].Values[0].String())
	assert.Equal(t, "“quoted”", res.Table.Columns[1].Values[0].String())

	require.Len(t, attempts, 4)
	for i, want := range []string{"utf-8", "latin1", "iso-8859-1"} {
		assert.Equal(t, want, attempts[i].encoding)
		assert.True(t, IsDecodeError(attempts[i].err), "attempt %s: %v", want, attempts[i].err)
	}
	assert.Equal(t, "cp1252", attempts[3].encoding)
	assert.NoError(t, attempts[3].err)
}

func TestResolve_Latin1WithoutC1(t *testing.T) {
	// 0xE9 alone is invalid UTF-8 but plain latin1.
	path := writeFile(t, "latin.csv", []byte("city\nMontr\xe9al\n"))

	res := NewResolver().Resolve(context.Background(), path)

	require.True(t, res.Loaded())
	assert.Equal(t, "latin1", res.Encoding)
	assert.Equal(t, "Montréal", res.Table.Columns[0].Values[0].String())
}

func TestResolve_EncodingUndetermined(t *testing.T) {
	// 0x81 is invalid UTF-8, C1 and undefined in cp1252.
	path := writeFile(t, "junk.csv", []byte("a\n\x81\n"))

	var attempts []attempt
	res := NewResolver(recordAttempts(&attempts)).Resolve(context.Background(), path)

	require.False(t, res.Loaded())
	assert.Equal(t, EncodingUndetermined, res.Kind())
	assert.Equal(t, path, res.Failure.Message)
	assert.Len(t, attempts, len(CandidateNames()))
}

// ============================================================================
// Fatal errors stop the loop
// ============================================================================

func TestResolve_FatalErrorsStopAfterOneAttempt(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "row wider than header", data: "a,b\n1,2,3\n"},
		{name: "bare quote", data: "a,b\nx\"y,1\n"},
		{name: "empty file", data: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "bad.csv", []byte(tt.data))

			var attempts []attempt
			res := NewResolver(recordAttempts(&attempts)).Resolve(context.Background(), path)

			assert.Equal(t, ParseError, res.Kind())
			assert.Nil(t, res.Table)
			assert.Len(t, attempts, 1)
			assert.Equal(t, "utf-8", attempts[0].encoding)
		})
	}
}

func TestResolve_EmptyFileMessage(t *testing.T) {
	path := writeFile(t, "empty.csv", nil)

	res := NewResolver().Resolve(context.Background(), path)

	require.Equal(t, ParseError, res.Kind())
	assert.Contains(t, res.Failure.Message, "no columns to parse from file")
}

func TestResolve_DirectoryIsFatal(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "folder.csv")
	require.NoError(t, os.Mkdir(dir, 0o755))

	var attempts []attempt
	res := NewResolver(recordAttempts(&attempts)).Resolve(context.Background(), dir)

	assert.Equal(t, ParseError, res.Kind())
	assert.Len(t, attempts, 1)
}

func TestResolve_ShortRowsArePadded(t *testing.T) {
	path := writeFile(t, "short.csv", []byte("a,b,c\n1\n2,x\n"))

	res := NewResolver().Resolve(context.Background(), path)

	require.True(t, res.Loaded())
	assert.Equal(t, 2, res.Table.NumRows())
	assert.Equal(t, []int{0, 1, 2}, res.Table.MissingCounts())
}

func TestResolve_Delimiter(t *testing.T) {
	path := writeFile(t, "semi.csv", []byte("a;b\n1;2\n"))

	res := NewResolver(WithDelimiter(';')).Resolve(context.Background(), path)

	require.True(t, res.Loaded())
	assert.Equal(t, []string{"a", "b"}, res.Table.Names())
}

func TestResolve_Idempotent(t *testing.T) {
	path := writeFile(t, "same.csv", []byte("k,v\nx,1\ny,\xe9\n"))
	r := NewResolver()

	first := r.Resolve(context.Background(), path)
	second := r.Resolve(context.Background(), path)

	require.True(t, first.Loaded())
	require.True(t, second.Loaded())
	assert.Equal(t, first.Encoding, second.Encoding)
	assert.True(t, table.Equal(first.Table, second.Table))
}

// ============================================================================
// Candidate list
// ============================================================================

func TestCandidates_FixedOrder(t *testing.T) {
	assert.Equal(t, []string{"utf-8", "latin1", "iso-8859-1", "cp1252"}, CandidateNames())

	c := Candidates()
	c[0].Name = "changed"
	assert.Equal(t, "utf-8", CandidateNames()[0])
}

func TestByteGuard_ReportsOffset(t *testing.T) {
	path := writeFile(t, "offset.csv", []byte("abc\x85"))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = NewResolver().parse(candidates[1].Reader(f))

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "latin1", de.Encoding)
	assert.EqualValues(t, 3, de.Offset)
	assert.Equal(t, byte(0x85), de.Byte)
}
