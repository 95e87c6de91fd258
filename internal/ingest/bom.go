package ingest

import (
	"bufio"
	"bytes"
	"io"
)

// utf8BOM is commonly added by Windows programs in front of UTF-8 files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// skipBOM returns a reader over r with a leading UTF-8 BOM removed.
// A read error hit while peeking is replayed by the returned reader.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}
