package ingest

// encoding.go defines the fixed list of text encodings tried for delimited
// files and the strict decoders behind them.
//
// Each candidate must be able to reject input, otherwise the list collapses
// to its first single-byte entry:
//
//   - utf-8 rejects invalid sequences (x/text UTF8Validator) and skips a BOM
//   - latin1 and iso-8859-1 reject the C1 range 0x80-0x9F, which ISO/IEC 8859-1
//     leaves undefined
//   - cp1252 rejects its five undefined bytes 0x81, 0x8D, 0x8F, 0x90, 0x9D

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Candidate is one entry of the ordered encoding list.
type Candidate struct {
	Name string

	cmap    *charmap.Charmap // nil means UTF-8
	invalid func(b byte) bool
}

// candidates is tried strictly in this order. Not configurable.
var candidates = [...]Candidate{
	{Name: "utf-8"},
	{Name: "latin1", cmap: charmap.ISO8859_1, invalid: isC1},
	{Name: "iso-8859-1", cmap: charmap.ISO8859_1, invalid: isC1},
	{Name: "cp1252", cmap: charmap.Windows1252, invalid: isCP1252Undefined},
}

// Candidates returns a copy of the ordered encoding list.
func Candidates() []Candidate {
	out := make([]Candidate, len(candidates))
	copy(out, candidates[:])
	return out
}

// CandidateNames returns the encoding names in trial order.
func CandidateNames() []string {
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Name
	}
	return names
}

func isC1(b byte) bool { return b >= 0x80 && b <= 0x9F }

func isCP1252Undefined(b byte) bool {
	switch b {
	case 0x81, 0x8D, 0x8F, 0x90, 0x9D:
		return true
	}
	return false
}

// DecodeError reports a byte the attempted encoding cannot represent.
type DecodeError struct {
	Encoding string
	Offset   int64
	Byte     byte
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: invalid byte 0x%02X at offset %d", e.Encoding, e.Byte, e.Offset)
}

// IsDecodeError reports whether err comes from decoding rather than parsing.
// Only these errors move the resolver on to the next candidate.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de) || errors.Is(err, encoding.ErrInvalidUTF8)
}

// Reader wraps r so that reading yields UTF-8 text decoded with c, or a
// decode error at the first byte c cannot represent.
func (c Candidate) Reader(r io.Reader) io.Reader {
	if c.cmap == nil {
		return skipBOM(transform.NewReader(r, encoding.UTF8Validator))
	}
	guarded := transform.NewReader(r, &byteGuard{encoding: c.Name, invalid: c.invalid})
	return c.cmap.NewDecoder().Reader(guarded)
}

// byteGuard passes bytes through unchanged and fails on the first byte
// rejected by invalid.
type byteGuard struct {
	encoding string
	invalid  func(byte) bool
	offset   int64
}

func (g *byteGuard) Reset() { g.offset = 0 }

func (g *byteGuard) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	n := len(src)
	if n > len(dst) {
		n = len(dst)
		err = transform.ErrShortDst
	}
	for i := 0; i < n; i++ {
		if g.invalid(src[i]) {
			copy(dst, src[:i])
			bad := &DecodeError{Encoding: g.encoding, Offset: g.offset + int64(i), Byte: src[i]}
			g.offset += int64(i)
			return i, i, bad
		}
	}
	copy(dst, src[:n])
	g.offset += int64(n)
	return n, n, err
}
