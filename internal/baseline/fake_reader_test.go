package baseline

import "bytes"

// newFakeByteReader wraps a plain byte slice as an io.Reader for
// huffman/bitReader unit tests that don't need a real jpegio.Source.
func newFakeByteReader(b []byte) *bytes.Reader {
	return bytes.NewReader(b)
}
