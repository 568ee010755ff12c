package jamtis

import "testing"

// FuzzAddressTagRoundTrip exercises CipherAddressIndex/TryDecipherAddressIndex
// against arbitrary (s_ct, j, hint) inputs, grounded on
// internal/testutil/sandbox_fuzz_test.go's seed-then-f.Fuzz round-trip shape.
func FuzzAddressTagRoundTrip(f *testing.F) {
	f.Add(make([]byte, 32), make([]byte, AddressIndexSize), make([]byte, AddressTagHintSize))
	f.Add([]byte{1, 2, 3, 4}, []byte{0xff, 0xff}, []byte{0, 1})

	f.Fuzz(func(t *testing.T, sctSeed, jSeed, hintSeed []byte) {
		var sct [32]byte
		copy(sct[:], sctSeed)
		var j AddressIndex
		copy(j[:], jSeed)
		var hint AddressTagHint
		copy(hint[:], hintSeed)

		tag, err := CipherAddressIndex(sct, j, hint)
		if err != nil {
			t.Fatalf("CipherAddressIndex failed: %v", err)
		}

		gotJ, gotHint, err := TryDecipherAddressIndex(sct, tag, false)
		if err != nil {
			t.Fatalf("TryDecipherAddressIndex failed: %v", err)
		}
		if gotJ != j {
			t.Fatalf("address index mismatch: got %x want %x", gotJ, j)
		}
		if gotHint != hint {
			t.Fatalf("hint mismatch: got %x want %x", gotHint, hint)
		}

		if hint.IsZero() {
			if _, _, err := TryDecipherAddressIndex(sct, tag, true); err != nil {
				t.Fatalf("plain-only decipher rejected a zero hint: %v", err)
			}
		} else {
			if _, _, err := TryDecipherAddressIndex(sct, tag, true); err != ErrHintRejected {
				t.Fatalf("expected ErrHintRejected for non-zero hint on plain-only path, got %v", err)
			}
		}
	})
}

// FuzzAmountCodecRoundTrip exercises EncodePlainAmount/DecodePlainAmount and
// EncodeSelfSendAmount/DecodeSelfSendAmount against arbitrary amounts and
// transcript keys.
func FuzzAmountCodecRoundTrip(f *testing.F) {
	f.Add(uint64(0), make([]byte, 32), make([]byte, 32))
	f.Add(uint64(123456789), []byte{1, 2, 3}, []byte{4, 5, 6})
	f.Add(^uint64(0), []byte{0xff}, []byte{0xaa})

	f.Fuzz(func(t *testing.T, amount uint64, qSeed, xkeSeed []byte) {
		var q, xKe [32]byte
		copy(q[:], qSeed)
		copy(xKe[:], xkeSeed)

		y, encoded := EncodePlainAmount(amount, q, xKe)
		gotAmount, gotY := DecodePlainAmount(encoded, q, xKe)
		if gotAmount != amount {
			t.Fatalf("plain amount mismatch: got %d want %d", gotAmount, amount)
		}
		if !gotY.Equal(y) {
			t.Fatal("plain blinding factor mismatch on decode")
		}

		ssY, ssEncoded := EncodeSelfSendAmount(amount, q)
		gotSSAmount, gotSSY := DecodeSelfSendAmount(ssEncoded, q)
		if gotSSAmount != amount {
			t.Fatalf("self-send amount mismatch: got %d want %d", gotSSAmount, amount)
		}
		if !gotSSY.Equal(ssY) {
			t.Fatal("self-send blinding factor mismatch on decode")
		}
	})
}
