package slide

import (
	"os"
	"testing"
)

// buildGrayFragment writes a minimal, fully decodable baseline JPEG: one
// grayscale component, 16x16 pixels, 1x1 sampling, restart_interval=1 MCU
// (2x2 MCU grid), where every MCU decodes to DC diff=0 and immediate EOB
// — so every pixel is exactly the level-shift midpoint, 128. Mirrors
// internal/baseline's fixture builder; duplicated here since unexported
// test helpers aren't shared across packages.
func buildGrayFragment(t *testing.T) *os.File {
	t.Helper()
	var b []byte
	put16 := func(v int) { b = append(b, byte(v>>8), byte(v)) }

	b = append(b, 0xFF, 0xD8) // SOI

	b = append(b, 0xFF, 0xDB) // DQT: one 8-bit table, all ones
	put16(2 + 1 + 64)
	b = append(b, 0x00)
	for i := 0; i < 64; i++ {
		b = append(b, 1)
	}

	b = append(b, 0xFF, 0xC0) // SOF0: 16x16, 1 component, 1x1
	put16(2 + 1 + 2 + 2 + 1 + 3)
	b = append(b, 8)
	put16(16)
	put16(16)
	b = append(b, 1)
	b = append(b, 0x01, 0x11, 0x00)

	b = append(b, 0xFF, 0xC4) // DHT: trivial 2-bit DC/AC tables
	dcCounts := make([]byte, 16)
	dcCounts[1] = 1
	acCounts := make([]byte, 16)
	acCounts[1] = 1
	put16(2 + 1 + 16 + 1 + 1 + 16 + 1)
	b = append(b, 0x00)
	b = append(b, dcCounts...)
	b = append(b, 0x00)
	b = append(b, 0x10)
	b = append(b, acCounts...)
	b = append(b, 0x00)

	b = append(b, 0xFF, 0xDD) // DRI: restart_interval = 1 MCU
	put16(4)
	put16(1)

	b = append(b, 0xFF, 0xDA) // SOS
	put16(2 + 1 + 2 + 3)
	b = append(b, 1)
	b = append(b, 0x01, 0x00)
	b = append(b, 0, 63, 0)

	mcu := byte(0x00)
	b = append(b, mcu, 0xFF, 0xD0) // MCU(0,0)
	b = append(b, mcu, 0xFF, 0xD1) // MCU(1,0)
	b = append(b, mcu, 0xFF, 0xD2) // MCU(0,1)
	b = append(b, mcu, 0xFF, 0xD9) // MCU(1,1), EOI

	f, err := os.CreateTemp(t.TempDir(), "frag")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	if _, err := f.Write(b); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}
