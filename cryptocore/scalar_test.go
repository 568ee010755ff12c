package cryptocore

import (
	"bytes"
	"testing"
)

func TestScalarArithmeticRoundTrip(t *testing.T) {
	a := ScalarFromUint64(7)
	b := ScalarFromUint64(11)

	sum := a.Add(b)
	back := sum.Sub(b)
	if !bytes.Equal(back.Bytes(), a.Bytes()) {
		t.Fatalf("(a+b)-b != a")
	}

	inv := b.Invert()
	one := b.Mul(inv)
	want := ScalarFromUint64(1)
	if !bytes.Equal(one.Bytes(), want.Bytes()) {
		t.Fatalf("b * b^-1 != 1")
	}
}

func TestScalarFromBytesRejectsNonCanonical(t *testing.T) {
	bad := make([]byte, 32)
	for i := range bad {
		bad[i] = 0xff
	}
	if _, err := ScalarFromBytes(bad); err == nil {
		t.Fatalf("expected non-canonical rejection")
	}
}

func TestScalarZeroAllowed(t *testing.T) {
	zero := ScalarFromUint64(0)
	if !zero.IsZero() {
		t.Fatalf("expected zero scalar")
	}
}

func TestScalarWipe(t *testing.T) {
	s := ScalarFromUint64(42)
	s.Wipe()
	if !s.IsZero() {
		t.Fatalf("expected wiped scalar to read as zero")
	}
}

func TestDeterministicNonceIsDeterministic(t *testing.T) {
	secret := ScalarFromUint64(99)
	n1 := DeterministicNonce("salt", secret, "label")
	n2 := DeterministicNonce("salt", secret, "label")
	if !bytes.Equal(n1.Bytes(), n2.Bytes()) {
		t.Fatalf("expected deterministic nonce for identical inputs")
	}
	n3 := DeterministicNonce("salt", secret, "other-label")
	if bytes.Equal(n1.Bytes(), n3.Bytes()) {
		t.Fatalf("expected distinct nonce for distinct label")
	}
}
