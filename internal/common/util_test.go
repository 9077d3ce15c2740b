package common

import (
	"regexp"
	"testing"
)

func TestMakeRandHexString_LengthAndCharset(t *testing.T) {
	t.Parallel()

	s, err := MakeRandHexString(16)
	if err != nil {
		t.Fatalf("MakeRandHexString error: %v", err)
	}
	if len(s) != 32 {
		t.Fatalf("expected 32 hex chars, got %d", len(s))
	}
	if !regexp.MustCompile(`^[0-9a-f]+$`).MatchString(s) {
		t.Fatalf("unexpected characters in %q", s)
	}
}

func TestMakeRandHexString_EntropyHint(t *testing.T) {
	t.Parallel()

	a, err := MakeRandHexString(32)
	if err != nil {
		t.Fatalf("MakeRandHexString error: %v", err)
	}
	b, err := MakeRandHexString(32)
	if err != nil {
		t.Fatalf("MakeRandHexString error: %v", err)
	}
	if a == b {
		t.Logf("warning: two MakeRandHexString(32) results are identical; extremely unlikely")
	}
}

func TestMakeRandDigits_Format(t *testing.T) {
	t.Parallel()

	for i := 0; i < 20; i++ {
		s, err := MakeRandDigits(6)
		if err != nil {
			t.Fatalf("MakeRandDigits error: %v", err)
		}
		if !regexp.MustCompile(`^\d{6}$`).MatchString(s) {
			t.Fatalf("expected 6 digits, got %q", s)
		}
	}
}
