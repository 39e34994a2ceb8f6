package baseline

import (
	"fmt"
	"strings"

	"github.com/mpetrov/slidejpeg/internal/jpegio"
)

// Component describes one SOF0 frame component: its sampling factors and
// the quantization table it draws from.
type Component struct {
	ID byte
	H  int
	V  int
	Tq int
}

type scanComponent struct {
	compIndex int // index into Header.Components
	td, ta    int // DC/AC Huffman table selectors
}

// Header holds everything parsed from the JPEG marker segments that
// precede the entropy-coded scan data: frame geometry, quantization and
// Huffman tables, restart interval, and the optional comment. It is
// immutable once ParseHeader returns.
type Header struct {
	Width, Height int

	Components []Component
	HmaxH      int
	HmaxV      int

	RestartInterval int

	quant [4]*[64]uint16
	huffDC [4]*huffTable
	huffAC [4]*huffTable

	scanComponents []scanComponent
	Comment        string
}

// MCUsPerRow and MCURowsInScan follow directly from frame geometry and
// the maximum sampling factors (spec.md §4.1).
func (h *Header) MCUsPerRow() int     { return ceilDiv(h.Width, 8*h.HmaxH) }
func (h *Header) MCURowsInScan() int  { return ceilDiv(h.Height, 8*h.HmaxV) }

func ceilDiv(a, b int) int { return (a + b - 1) / b }

// ParseHeader reads marker segments from src until (and including) SOS,
// returning the decoded header. On return src.Position() is the file
// offset of the first entropy-coded byte, i.e. what spec.md §4.1 records
// as mcu_starts[0].
func ParseHeader(src *jpegio.Source) (*Header, error) {
	h := &Header{}

	marker, err := nextMarker(src)
	if err != nil {
		return nil, err
	}
	if marker != markerSOI {
		return nil, fmt.Errorf("%w: expected SOI, got FF %02X", ErrUnsupportedMarker, marker)
	}

	var comment []byte
	for {
		marker, err := nextMarker(src)
		if err != nil {
			return nil, err
		}

		switch {
		case marker == markerSOF0 || marker == markerSOF1:
			if err := parseSOF(src, h); err != nil {
				return nil, err
			}
		case isSOFn(marker) && marker != markerSOF0 && marker != markerSOF1:
			return nil, fmt.Errorf("%w: SOF marker FF %02X (progressive/arithmetic/hierarchical)", ErrNotBaseline, marker)
		case marker == markerDQT:
			if err := parseDQT(src, h); err != nil {
				return nil, err
			}
		case marker == markerDHT:
			if err := parseDHT(src, h); err != nil {
				return nil, err
			}
		case marker == markerDRI:
			if err := parseDRI(src, h); err != nil {
				return nil, err
			}
		case marker == markerCOM:
			data, err := readSegment(src)
			if err != nil {
				return nil, err
			}
			comment = data
		case marker == markerSOS:
			if err := parseSOS(src, h); err != nil {
				return nil, err
			}
			if idx := indexByte(comment, 0); idx >= 0 {
				comment = comment[:idx]
			}
			h.Comment = strings.TrimRight(string(comment), "\x00")
			if h.RestartInterval <= 0 {
				return nil, ErrNoRestartMarkers
			}
			return h, nil
		case isAPPn(marker) || marker == markerDNL:
			if _, err := readSegment(src); err != nil {
				return nil, err
			}
		default:
			// Unknown but well-formed marker segment: skip its payload.
			if _, err := readSegment(src); err != nil {
				return nil, err
			}
		}
	}
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

// nextMarker scans past any fill bytes (0xFF padding) and returns the
// marker code following the next 0xFF.
func nextMarker(src *jpegio.Source) (byte, error) {
	for {
		b, err := src.NextByte()
		if err != nil {
			return 0, err
		}
		if b != 0xFF {
			continue
		}
		for {
			m, err := src.NextByte()
			if err != nil {
				return 0, err
			}
			if m == 0xFF {
				continue // padding between FF and the real marker byte
			}
			if m == 0x00 {
				// Stuffed byte outside scan data: malformed, but skip it
				// and keep scanning rather than fail the whole open.
				break
			}
			return m, nil
		}
	}
}

func readUint16(src *jpegio.Source) (int, error) {
	hi, err := src.NextByte()
	if err != nil {
		return 0, err
	}
	lo, err := src.NextByte()
	if err != nil {
		return 0, err
	}
	return int(hi)<<8 | int(lo), nil
}

// readSegment reads a standard length-prefixed marker segment (length
// includes the two length bytes themselves) and returns its payload.
func readSegment(src *jpegio.Source) ([]byte, error) {
	length, err := readUint16(src)
	if err != nil {
		return nil, err
	}
	if length < 2 {
		return nil, fmt.Errorf("%w: segment length %d", ErrUnsupportedMarker, length)
	}
	payload := make([]byte, length-2)
	for i := range payload {
		b, err := src.NextByte()
		if err != nil {
			return nil, err
		}
		payload[i] = b
	}
	return payload, nil
}

func parseSOF(src *jpegio.Source, h *Header) error {
	payload, err := readSegment(src)
	if err != nil {
		return err
	}
	if len(payload) < 6 {
		return fmt.Errorf("%w: SOF segment too short", ErrUnsupportedMarker)
	}
	precision := payload[0]
	if precision != 8 {
		return fmt.Errorf("%w: sample precision %d unsupported", ErrNotBaseline, precision)
	}
	h.Height = int(payload[1])<<8 | int(payload[2])
	h.Width = int(payload[3])<<8 | int(payload[4])
	nComp := int(payload[5])
	if len(payload) < 6+nComp*3 {
		return fmt.Errorf("%w: SOF component list truncated", ErrUnsupportedMarker)
	}
	h.Components = make([]Component, nComp)
	for i := 0; i < nComp; i++ {
		b := payload[6+i*3:]
		c := Component{
			ID: b[0],
			H:  int(b[1] >> 4),
			V:  int(b[1] & 0x0F),
			Tq: int(b[2]),
		}
		if c.H == 0 || c.V == 0 || c.H > 4 || c.V > 4 {
			return fmt.Errorf("%w: component %d sampling factors %dx%d", ErrUnsupportedMarker, c.ID, c.H, c.V)
		}
		h.Components[i] = c
		if c.H > h.HmaxH {
			h.HmaxH = c.H
		}
		if c.V > h.HmaxV {
			h.HmaxV = c.V
		}
	}
	return nil
}

func parseDQT(src *jpegio.Source, h *Header) error {
	payload, err := readSegment(src)
	if err != nil {
		return err
	}
	for len(payload) > 0 {
		pq := payload[0] >> 4
		tq := payload[0] & 0x0F
		payload = payload[1:]
		var table [64]uint16
		if pq == 0 {
			if len(payload) < 64 {
				return fmt.Errorf("%w: DQT table truncated", ErrUnsupportedMarker)
			}
			for i := 0; i < 64; i++ {
				table[i] = uint16(payload[i])
			}
			payload = payload[64:]
		} else {
			if len(payload) < 128 {
				return fmt.Errorf("%w: DQT 16-bit table truncated", ErrUnsupportedMarker)
			}
			for i := 0; i < 64; i++ {
				table[i] = uint16(payload[i*2])<<8 | uint16(payload[i*2+1])
			}
			payload = payload[128:]
		}
		if tq > 3 {
			return fmt.Errorf("%w: quant table index %d", ErrUnsupportedMarker, tq)
		}
		h.quant[tq] = &table
	}
	return nil
}

func parseDHT(src *jpegio.Source, h *Header) error {
	payload, err := readSegment(src)
	if err != nil {
		return err
	}
	for len(payload) > 0 {
		class := payload[0] >> 4 // 0 = DC, 1 = AC
		id := payload[0] & 0x0F
		payload = payload[1:]
		if len(payload) < 16 {
			return fmt.Errorf("%w: DHT counts truncated", ErrUnsupportedMarker)
		}
		t := &huffTable{}
		total := 0
		for i := 0; i < 16; i++ {
			t.bits[i] = int(payload[i])
			total += t.bits[i]
		}
		payload = payload[16:]
		if len(payload) < total {
			return fmt.Errorf("%w: DHT values truncated", ErrUnsupportedMarker)
		}
		t.values = append([]byte(nil), payload[:total]...)
		payload = payload[total:]
		t.build()
		if id > 3 {
			return fmt.Errorf("%w: huffman table index %d", ErrUnsupportedMarker, id)
		}
		if class == 0 {
			h.huffDC[id] = t
		} else {
			h.huffAC[id] = t
		}
	}
	return nil
}

func parseDRI(src *jpegio.Source, h *Header) error {
	payload, err := readSegment(src)
	if err != nil {
		return err
	}
	if len(payload) < 2 {
		return fmt.Errorf("%w: DRI segment too short", ErrUnsupportedMarker)
	}
	h.RestartInterval = int(payload[0])<<8 | int(payload[1])
	return nil
}

func parseSOS(src *jpegio.Source, h *Header) error {
	payload, err := readSegment(src)
	if err != nil {
		return err
	}
	if len(payload) < 1 {
		return fmt.Errorf("%w: SOS segment empty", ErrUnsupportedMarker)
	}
	nComp := int(payload[0])
	if len(payload) < 1+nComp*2+3 {
		return fmt.Errorf("%w: SOS component list truncated", ErrUnsupportedMarker)
	}
	if nComp != len(h.Components) {
		return fmt.Errorf("%w: SOS scans %d components, frame has %d (interleaved subsets unsupported)", ErrNotBaseline, nComp, len(h.Components))
	}
	// Indexed by Components (frame) index, not SOS list order: decodeMCU
	// looks up scanComponents[ci] alongside Components[ci], so a scan
	// that lists the same components in a different order than SOF must
	// still resolve each to the right Huffman table selectors.
	h.scanComponents = make([]scanComponent, len(h.Components))
	for i := 0; i < nComp; i++ {
		b := payload[1+i*2:]
		id := b[0]
		idx := -1
		for ci, c := range h.Components {
			if c.ID == id {
				idx = ci
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("%w: SOS references unknown component id %d", ErrUnsupportedMarker, id)
		}
		h.scanComponents[idx] = scanComponent{
			compIndex: idx,
			td:        int(b[1] >> 4),
			ta:        int(b[1] & 0x0F),
		}
	}
	// Spectral selection / successive approximation bytes (Ss, Se, AhAl)
	// must be 0, 63, 0 for baseline; anything else is a progressive scan.
	tail := payload[1+nComp*2:]
	if tail[0] != 0 || tail[1] != 63 || tail[2] != 0 {
		return fmt.Errorf("%w: non-baseline spectral selection in SOS", ErrNotBaseline)
	}
	return nil
}
