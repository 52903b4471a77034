package chain

import (
	"strings"
	"testing"
)

func TestHashBatchIDKnownVector(t *testing.T) {
	// keccak256 of the empty string is a fixed, well-known digest.
	got := HashBatchID("").Hex()
	want := "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestHashBatchIDShape(t *testing.T) {
	got := HashBatchID("LOT-2026-001").Hex()
	if !strings.HasPrefix(got, "0x") || len(got) != 66 {
		t.Fatalf("malformed hash %q", got)
	}
	if got != strings.ToLower(got) {
		t.Fatalf("hash not lowercase: %q", got)
	}
}

func TestHashAttestationSensitivity(t *testing.T) {
	base := HashAttestation(`{"a":1}`)
	if HashAttestation(`{"a":1}`) != base {
		t.Fatal("same input produced different digests")
	}
	if HashAttestation(`{"a":2}`) == base {
		t.Fatal("different input produced same digest")
	}
}
