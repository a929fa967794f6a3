package slip

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		{0x01, 0x02, 0x03},
		{Sentinel},
		{Escape},
		{Sentinel, Escape, Sentinel},
		bytes.Repeat([]byte{0xAA}, 64),
	}
	for _, payload := range cases {
		encoded := Encode(payload)
		d := NewDecoder()
		frames := d.DecodeBytes(encoded)
		if len(frames) != 1 {
			t.Fatalf("Encode(%v): got %d frames, want 1", payload, len(frames))
		}
		if !bytes.Equal(frames[0], payload) {
			t.Errorf("round trip mismatch: got %v, want %v", frames[0], payload)
		}
	}
}

func TestEncodeBoundedSize(t *testing.T) {
	payload := bytes.Repeat([]byte{Sentinel}, 10)
	encoded := Encode(payload)
	if len(encoded) > 2*len(payload)+2 {
		t.Errorf("encoded length %d exceeds bound %d", len(encoded), 2*len(payload)+2)
	}
}

func TestEmptyFrame(t *testing.T) {
	d := NewDecoder()
	frames := d.DecodeBytes([]byte{Sentinel, Sentinel})
	if len(frames) != 1 || len(frames[0]) != 0 {
		t.Fatalf("expected one zero-length frame, got %v", frames)
	}
}

func TestBadEscapeDropsFrame(t *testing.T) {
	d := NewDecoder()
	frames := d.DecodeBytes([]byte{Sentinel, Escape, 0x42, Sentinel})
	if len(frames) != 0 {
		t.Fatalf("expected no frames from a bad escape sequence, got %v", frames)
	}
	if d.FramingErrors != 1 {
		t.Errorf("FramingErrors = %d, want 1", d.FramingErrors)
	}
}

func TestScenarioS6EscapedEscape(t *testing.T) {
	d := NewDecoder()
	frames := d.DecodeBytes([]byte{Sentinel, Escape, EscEscape, Sentinel})
	if len(frames) != 1 || !bytes.Equal(frames[0], []byte{Escape}) {
		t.Fatalf("expected single-byte frame {0xDB}, got %v", frames)
	}
}
