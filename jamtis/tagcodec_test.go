package jamtis

import (
	"testing"

	"seraphis-core/cryptocore"
)

func TestCipherAddressIndexRoundTrip(t *testing.T) {
	sct := [32]byte{1, 2, 3}
	j := AddressIndex{9, 9, 9}
	hint := AddressTagHint{0, 0}

	tag, err := CipherAddressIndex(sct, j, hint)
	if err != nil {
		t.Fatalf("CipherAddressIndex: %v", err)
	}
	gotJ, gotHint, err := TryDecipherAddressIndex(sct, tag, true)
	if err != nil {
		t.Fatalf("TryDecipherAddressIndex: %v", err)
	}
	if gotJ != j || gotHint != hint {
		t.Fatalf("round trip mismatch: got j=%v hint=%v, want j=%v hint=%v", gotJ, gotHint, j, hint)
	}
}

func TestTryDecipherAddressIndexRejectsNonZeroHintOnPlainPath(t *testing.T) {
	sct := [32]byte{4, 5, 6}
	j := AddressIndex{1}
	hint := AddressTagHint{0, 7}

	tag, err := CipherAddressIndex(sct, j, hint)
	if err != nil {
		t.Fatalf("CipherAddressIndex: %v", err)
	}
	if _, _, err := TryDecipherAddressIndex(sct, tag, true); err != ErrHintRejected {
		t.Fatalf("expected ErrHintRejected, got %v", err)
	}
	if _, _, err := TryDecipherAddressIndex(sct, tag, false); err != nil {
		t.Fatalf("non-strict path should accept a non-zero hint, got %v", err)
	}
}

func TestEncryptDecryptAddressTagRoundTrip(t *testing.T) {
	q := [32]byte{7}
	ko := cryptocore.GenG().ScalarMul(cryptocore.RandomScalar())
	tag := CipherTag{1, 2, 3, 4}

	enc := EncryptAddressTag(q, ko, tag)
	dec := DecryptAddressTag(q, ko, enc)
	if dec != tag {
		t.Fatalf("address tag encrypt/decrypt round trip mismatch: got %v want %v", dec, tag)
	}
}

func TestViewTagIsDeterministic(t *testing.T) {
	xKd := [32]byte{1, 1, 1}
	ko := cryptocore.GenX().ScalarMul(cryptocore.RandomScalar())
	if ViewTag(xKd, ko) != ViewTag(xKd, ko) {
		t.Fatal("ViewTag must be a pure function of its inputs")
	}
}
