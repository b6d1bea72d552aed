package codec

import (
	"errors"
	"testing"
)

func TestIsWellFormedBase64(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"QQ==", true},
		{"QUI=", true},
		{"QUJD", true},
		{"JVBERi0xLjQK", true},
		{"ab+/", true},
		{"QQ", false},       // short group
		{"QQ=", false},      // wrong padding
		{"Q===", false},     // three pad characters
		{"QQ==QUJD", false}, // padding before the end
		{"QUJD\n", false},   // trailing newline
		{"QU JD", false},
		{"QUJ-", false}, // url alphabet
		{"data:application/pdf;base64,QUJD", false},
	}

	for _, tt := range tests {
		if got := IsWellFormedBase64(tt.in); got != tt.want {
			t.Errorf("IsWellFormedBase64(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDecode(t *testing.T) {
	got, err := Decode("JVBERi0xLjQK")
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if string(got) != "%PDF-1.4\n" {
		t.Errorf("Decode() = %q", got)
	}
}

func TestDecode_Errors(t *testing.T) {
	for _, in := range []string{"", "QQ=", "!!!!"} {
		_, err := Decode(in)
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Errorf("Decode(%q) error = %v, want *DecodeError", in, err)
			continue
		}
		if de.Length != len(in) {
			t.Errorf("Length = %d, want %d", de.Length, len(in))
		}
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := [][]byte{
		{0},
		{0xff, 0xfe},
		[]byte("%PDF-1.7 binary \x00\x01\x02"),
		make([]byte, 1000),
	}
	for _, b := range inputs {
		s := Encode(b)
		if !IsWellFormedBase64(s) {
			t.Errorf("Encode(%d bytes) is not well-formed: %q", len(b), s)
		}
		decoded, err := Decode(s)
		if err != nil {
			t.Fatalf("Decode() error: %v", err)
		}
		if Encode(decoded) != s {
			t.Errorf("round trip mismatch for %d bytes", len(b))
		}
	}
}
