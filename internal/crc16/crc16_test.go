package crc16

import "testing"

func TestKnownVectors(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want uint16
	}{
		{"ascii digits", []byte("123456789"), 0x6F91},
		{"three bytes", []byte{0x01, 0x02, 0x03}, 0x62C4},
		{"empty", nil, 0xFFFF},
		{"single zero", []byte{0x00}, 0x0F87},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Checksum(c.data); got != c.want {
				t.Errorf("Checksum(%v) = 0x%04X, want 0x%04X", c.data, got, c.want)
			}
		})
	}
}

func TestVerifyIdempotent(t *testing.T) {
	buffers := [][]byte{nil, {0x01}, {0x01, 0x02, 0x03, 0x04, 0x05}}
	for _, b := range buffers {
		framed := AppendCRC(append([]byte(nil), b...))
		if !Verify(framed) {
			t.Errorf("Verify(AppendCRC(%v)) = false, want true", b)
		}
	}
}

func TestVerifyRejectsCorruption(t *testing.T) {
	framed := AppendCRC([]byte{0x01, 0x02, 0x03})
	framed[len(framed)-1] ^= 0xFF
	if Verify(framed) {
		t.Errorf("Verify should reject corrupted trailer")
	}
}
