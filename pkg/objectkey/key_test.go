package objectkey

import (
	"bytes"
	"testing"
)

func TestParseRoundTrip(t *testing.T) {
	hexKey := "da39a3ee5e6b4b0d3255bfef95601890afd80709"
	k, err := Parse(hexKey)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := k.String(); got != hexKey {
		t.Errorf("round trip mismatch: got %s, want %s", got, hexKey)
	}
	if got := k.Short(); got != hexKey[:8] {
		t.Errorf("Short() = %s, want %s", got, hexKey[:8])
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	cases := []string{"", "nothex", "da39a3ee5e6b4b0d3255bfef95601890afd807", "zz39a3ee5e6b4b0d3255bfef95601890afd80709"}
	for _, c := range cases {
		if _, err := Parse(c); err == nil {
			t.Errorf("expected Parse(%q) to fail", c)
		}
	}
}

func TestIsShortHex(t *testing.T) {
	cases := map[string]bool{
		"da39a3ee":                                  true,
		"da39a3e":                                   false, // too short
		"da39a3ee5e6b4b0d3255bfef95601890afd80709":  false, // full length, not short
		"zzzzzzzz":                                  false, // not hex
	}
	for s, want := range cases {
		if got := IsShortHex(s); got != want {
			t.Errorf("IsShortHex(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestHashWriterMatchesDirectSum(t *testing.T) {
	content := []byte("blob\x00\x00\x00\x00\x00\x00\x00\x0cHello world!")
	var buf bytes.Buffer
	hw := NewHashWriter(&buf)
	if _, err := hw.Write(content); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), content) {
		t.Errorf("HashWriter did not pass bytes through unchanged")
	}
	if got, want := hw.Sum(), Sum(content); got != want {
		t.Errorf("HashWriter.Sum() = %s, want %s", got, want)
	}
}

func TestKnownObjectKeyParsesAndRoundTrips(t *testing.T) {
	// A conventional-looking hex string, used here only to exercise
	// Parse/String round-tripping, not as a hash of any particular object.
	want := "da39a3ee5e6b4b0d3255bfef95601890afd80709"
	k, err := Parse(want)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := k.String(); got != want {
		t.Errorf("round trip = %s, want %s", got, want)
	}
}
