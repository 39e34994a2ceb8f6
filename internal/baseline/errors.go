package baseline

import "errors"

// Rejection errors for format properties this decoder deliberately does
// not support (spec.md §1 Non-goals, §6 "JPEG subset accepted").
var (
	ErrNotBaseline       = errors.New("baseline: not a baseline sequential JPEG (progressive or extended DCT unsupported)")
	ErrNoRestartMarkers  = errors.New("baseline: restart_interval is zero — random access requires restart markers")
	ErrUnsupportedMarker = errors.New("baseline: unsupported or malformed marker segment")
	ErrHuffmanDecode     = errors.New("baseline: huffman decode failed to match any code")
	ErrInvalidScanData   = errors.New("baseline: invalid entropy-coded data (stray 0xFF not a stuffed byte)")
	ErrMissingTable      = errors.New("baseline: scan references a quantization or Huffman table that was never defined")
)
