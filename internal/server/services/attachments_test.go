package services

import (
	"regexp"
	"testing"
)

func TestGetRandomStorageKey(t *testing.T) {
	t.Parallel()

	re := regexp.MustCompile(`^attachments/\d{4}/\d{1,2}/\d{1,2}/[0-9a-f-]{36}$`)

	k1 := GetRandomStorageKey()
	k2 := GetRandomStorageKey()

	if !re.MatchString(k1) {
		t.Fatalf("unexpected key format: %q", k1)
	}
	if k1 == k2 {
		t.Fatalf("keys must be unique, got %q twice", k1)
	}
}
