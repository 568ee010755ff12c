package jamtis

import "testing"

func TestEncodeDecodePlainAmountRoundTrip(t *testing.T) {
	q := [32]byte{1, 2, 3}
	xKe := [32]byte{4, 5, 6}
	const amount = uint64(123456789)

	y, encoded := EncodePlainAmount(amount, q, xKe)
	gotAmount, gotY := DecodePlainAmount(encoded, q, xKe)
	if gotAmount != amount {
		t.Fatalf("amount mismatch: got %d want %d", gotAmount, amount)
	}
	if !gotY.Equal(y) {
		t.Fatal("blinding factor mismatch on decode")
	}
}

func TestEncodeDecodeSelfSendAmountRoundTrip(t *testing.T) {
	q := [32]byte{9, 8, 7}
	const amount = uint64(42)

	y, encoded := EncodeSelfSendAmount(amount, q)
	gotAmount, gotY := DecodeSelfSendAmount(encoded, q)
	if gotAmount != amount {
		t.Fatalf("amount mismatch: got %d want %d", gotAmount, amount)
	}
	if !gotY.Equal(y) {
		t.Fatal("blinding factor mismatch on decode")
	}
}

func TestCommitmentMatchesEncodedAmount(t *testing.T) {
	q := [32]byte{1}
	xKe := [32]byte{2}
	const amount = uint64(777)

	y, encoded := EncodePlainAmount(amount, q, xKe)
	c := Commitment(amount, y)

	gotAmount, gotY := DecodePlainAmount(encoded, q, xKe)
	if !Commitment(gotAmount, gotY).Equal(c) {
		t.Fatal("commitment recomputed from decoded amount/blinding factor does not match original")
	}
}
