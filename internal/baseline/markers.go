package baseline

// JPEG marker codes relevant to a baseline sequential, single-scan,
// restart-marker-bearing stream. Anything else (progressive SOF2,
// arithmetic coding SOF9, hierarchical, multi-scan) is rejected.
const (
	markerSOI  = 0xD8
	markerEOI  = 0xD9
	markerSOF0 = 0xC0 // baseline DCT
	markerSOF1 = 0xC1 // extended sequential, still Huffman-coded: accepted
	markerDHT  = 0xC4
	markerDAC  = 0xCC // arithmetic coding conditioning: rejected
	markerSOS  = 0xDA
	markerDQT  = 0xDB
	markerDNL  = 0xDC
	markerDRI  = 0xDD
	markerCOM  = 0xFE
)

func isRST(marker byte) bool { return marker >= 0xD0 && marker <= 0xD7 }
func isAPPn(marker byte) bool { return marker >= 0xE0 && marker <= 0xEF }
func isSOFn(marker byte) bool {
	// SOF0-SOF3 and SOF5-SOF7 are Huffman-coded (sequential/progressive/
	// lossless); SOF0/SOF1 are the only ones this decoder implements.
	return marker >= 0xC0 && marker <= 0xCF && marker != markerDHT && marker != markerDAC
}
