package composition

import (
	"testing"

	"seraphis-core/cryptocore"
)

func composeK(x, y, z cryptocore.Scalar) cryptocore.Point {
	return cryptocore.GenG().ScalarMul(x).
		Add(cryptocore.GenX().ScalarMul(y)).
		Add(cryptocore.GenU().ScalarMul(z))
}

func TestProveVerifyRoundTrip(t *testing.T) {
	x := cryptocore.RandomScalar()
	y := cryptocore.RandomScalar()
	z := cryptocore.RandomScalar()
	k := composeK(x, y, z)
	message := []byte("spend-this-enote")

	proof, ki, err := Prove(message, k, x, y, z)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	if ki.IsIdentity() {
		t.Fatal("key image must not be identity")
	}

	ok, err := Verify(proof, message, k, ki)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("valid proof rejected")
	}
}

func TestProveVerifyZeroXEdgeCase(t *testing.T) {
	x := cryptocore.Scalar{}
	y := cryptocore.RandomScalar()
	z := cryptocore.RandomScalar()
	k := composeK(x, y, z)
	message := []byte("x-is-zero")

	proof, ki, err := Prove(message, k, x, y, z)
	if err != nil {
		t.Fatalf("Prove with x=0: %v", err)
	}
	ok, err := Verify(proof, message, k, ki)
	if err != nil || !ok {
		t.Fatalf("Verify with x=0: ok=%v err=%v", ok, err)
	}
}

func TestProveRejectsIdentityK(t *testing.T) {
	x := cryptocore.RandomScalar()
	y := cryptocore.RandomScalar()
	z := cryptocore.RandomScalar()
	if _, _, err := Prove([]byte("m"), cryptocore.Identity(), x, y, z); err != ErrIdentityKey {
		t.Fatalf("expected ErrIdentityKey, got %v", err)
	}
}

func TestVerifyRejectsTamperedResponse(t *testing.T) {
	x := cryptocore.RandomScalar()
	y := cryptocore.RandomScalar()
	z := cryptocore.RandomScalar()
	k := composeK(x, y, z)
	message := []byte("tamper-me")

	proof, ki, err := Prove(message, k, x, y, z)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	proof.RT1 = proof.RT1.Add(cryptocore.ScalarFromUint64(1))

	ok, err := Verify(proof, message, k, ki)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("tampered proof accepted")
	}
}

func TestVerifyRejectsIdentityKeyImage(t *testing.T) {
	proof := &Proof{KT1: cryptocore.Identity()}
	ok, err := Verify(proof, []byte("m"), cryptocore.Identity(), cryptocore.Identity())
	if err != ErrInvalidKeyImage || ok {
		t.Fatalf("expected rejection of identity key image, got ok=%v err=%v", ok, err)
	}
}

func TestVerifyRejectsWrongMessage(t *testing.T) {
	x := cryptocore.RandomScalar()
	y := cryptocore.RandomScalar()
	z := cryptocore.RandomScalar()
	k := composeK(x, y, z)

	proof, ki, err := Prove([]byte("original"), k, x, y, z)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	ok, err := Verify(proof, []byte("different"), k, ki)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("proof verified against the wrong message")
	}
}
