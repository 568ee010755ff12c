package jamtis

import "seraphis-core/cryptocore"

// amountBakedKeyPlain returns the amount-baked key used on the plain path
// (spec §4.5: "blinding factor y = H_n('bf', q, xr·G)"). We bind the baked
// key to the published ephemeral DH point xK_e rather than a second,
// unpublished xr·G value: xK_e is the only DH point both sender and
// recipient hold independently at amount-recovery time (see DESIGN.md for
// the full resolution of this Open Question).
func amountBakedKeyPlain(xKe [32]byte) []byte {
	return xKe[:]
}

// EncodePlainAmount computes the plain-path blinding factor and encoded
// amount (spec §4.5).
func EncodePlainAmount(a uint64, q [32]byte, xKe [32]byte) (y cryptocore.Scalar, encoded [8]byte) {
	bk := amountBakedKeyPlain(xKe)
	y = cryptocore.HashToScalar("bf", q[:], bk)
	mask := cryptocore.HashToBytes8("amt", q[:], bk)
	var amtBytes [8]byte
	putUint64(&amtBytes, a)
	for i := range encoded {
		encoded[i] = amtBytes[i] ^ mask[i]
	}
	return
}

// DecodePlainAmount reverses EncodePlainAmount and also returns y so the
// caller can verify the commitment.
func DecodePlainAmount(encoded [8]byte, q [32]byte, xKe [32]byte) (a uint64, y cryptocore.Scalar) {
	bk := amountBakedKeyPlain(xKe)
	y = cryptocore.HashToScalar("bf", q[:], bk)
	mask := cryptocore.HashToBytes8("amt", q[:], bk)
	var amtBytes [8]byte
	for i := range amtBytes {
		amtBytes[i] = encoded[i] ^ mask[i]
	}
	return getUint64(&amtBytes), y
}

// EncodeSelfSendAmount computes the self-send blinding factor and encoded
// amount: y = H_n("bf", q), encoded = a ⊕ H_8("amt", q) (spec §4.5 — "no
// baked key needed because q already binds to k_vb").
func EncodeSelfSendAmount(a uint64, q [32]byte) (y cryptocore.Scalar, encoded [8]byte) {
	y = cryptocore.HashToScalar("bf", q[:])
	mask := cryptocore.HashToBytes8("amt", q[:])
	var amtBytes [8]byte
	putUint64(&amtBytes, a)
	for i := range encoded {
		encoded[i] = amtBytes[i] ^ mask[i]
	}
	return
}

// DecodeSelfSendAmount reverses EncodeSelfSendAmount.
func DecodeSelfSendAmount(encoded [8]byte, q [32]byte) (a uint64, y cryptocore.Scalar) {
	y = cryptocore.HashToScalar("bf", q[:])
	mask := cryptocore.HashToBytes8("amt", q[:])
	var amtBytes [8]byte
	for i := range amtBytes {
		amtBytes[i] = encoded[i] ^ mask[i]
	}
	return getUint64(&amtBytes), y
}

// Commitment computes C = y·G + a·H, the Pedersen commitment every standard
// enote carries (spec §3.5, §4.5).
func Commitment(a uint64, y cryptocore.Scalar) cryptocore.Point {
	return cryptocore.GenG().ScalarMul(y).Add(cryptocore.GenH().ScalarMul(cryptocore.ScalarFromUint64(a)))
}

func putUint64(b *[8]byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

func getUint64(b *[8]byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}
