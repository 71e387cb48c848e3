package helper

import (
	"encoding/binary"
	"testing"
)

func TestStrToBytes(t *testing.T) {
	tests := []struct {
		in   string
		want uint64
	}{
		{"0", 0},
		{"1024", 1024},
		{"10k", 10 * 1024},
		{"10MiB", 10 * 1024 * 1024},
		{"10m", 10 * 1024 * 1024},
		{"256MB", 256 * 1024 * 1024},
		{"1g", 1 << 30},
		{"unlimited", Unlimited},
		{" Infinity ", Unlimited},
	}
	for _, tt := range tests {
		got, err := StrToBytes(tt.in)
		if err != nil {
			t.Fatalf("StrToBytes(%q) failed: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("StrToBytes(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestStrToBytesInvalid(t *testing.T) {
	for _, in := range []string{"", "ten", "10 parsecs", "-5"} {
		if _, err := StrToBytes(in); err == nil {
			t.Errorf("StrToBytes(%q) succeeded, want error", in)
		}
	}
}

func TestStrToCount(t *testing.T) {
	got, err := StrToCount("25")
	if err != nil || got != 25 {
		t.Fatalf("StrToCount(25) = %d, %v", got, err)
	}
	if got, _ := StrToCount("unlimited"); got != Unlimited {
		t.Errorf("StrToCount(unlimited) = %d", got)
	}
	if _, err := StrToCount("10MiB"); err == nil {
		t.Error("StrToCount accepted a size suffix")
	}
}

func TestBytesToStr(t *testing.T) {
	if got := BytesToStr(Unlimited); got != "unlimited" {
		t.Errorf("BytesToStr(Unlimited) = %q", got)
	}
	if got := BytesToStr(10 * 1024 * 1024); got != "10MiB" {
		t.Errorf("BytesToStr(10MiB) = %q", got)
	}
	if got := BytesToStr(12); got != "12" {
		t.Errorf("BytesToStr(12) = %q", got)
	}
}

func TestNativeEndian(t *testing.T) {
	var buf [2]byte
	NativeEndian().PutUint16(buf[:], 0xAAFF)
	if IsLittleEndian() && buf[0] != 0xFF {
		t.Errorf("little endian host encoded %x", buf)
	}
	if !IsLittleEndian() && buf != [2]byte{0xAA, 0xFF} {
		t.Errorf("big endian host encoded %x", buf)
	}
	if IsLittleEndian() && NativeEndian() != binary.LittleEndian {
		t.Error("NativeEndian disagrees with IsLittleEndian")
	}
}
