package cryptocore

import (
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/curve25519"
)

// ErrX25519 wraps failures from the underlying Montgomery-curve scalar mult,
// which golang.org/x/crypto/curve25519 reports for identity-mapped inputs.
var ErrX25519 = errors.New("cryptocore: x25519 scalar multiplication failed")

// X25519Scalar is a 32-byte scalar for the find-received / unlock-amounts
// tier of the jamtis key hierarchy (spec §3.2: xk_ua, xk_fr). The bytes are
// stored unclamped; curve25519.X25519 clamps them at each multiplication.
type X25519Scalar [32]byte

// RandomX25519Scalar draws 32 fresh random bytes as an X25519 scalar.
func RandomX25519Scalar() X25519Scalar {
	var s X25519Scalar
	if _, err := rand.Read(s[:]); err != nil {
		panic("cryptocore: system RNG failed: " + err.Error())
	}
	return s
}

// X25519ScalarFromWide takes a 32-byte hash output unchanged as an X25519
// scalar, as the derivation of xk_ua / xk_fr does (spec §3.2: H("ua", k_vb)
// etc.); clamping happens only at multiplication.
func X25519ScalarFromWide(wide [32]byte) X25519Scalar {
	return X25519Scalar(wide)
}

// BasepointMul returns s * basepoint on Curve25519.
func (s X25519Scalar) BasepointMul() ([32]byte, error) {
	var out [32]byte
	pub, err := curve25519.X25519(s[:], curve25519.Basepoint)
	if err != nil {
		return out, ErrX25519
	}
	copy(out[:], pub)
	return out, nil
}

// ScalarMul returns s * point for an arbitrary Curve25519 point.
func (s X25519Scalar) ScalarMul(point [32]byte) ([32]byte, error) {
	var out [32]byte
	res, err := curve25519.X25519(s[:], point[:])
	if err != nil {
		return out, ErrX25519
	}
	copy(out[:], res)
	return out, nil
}

// Wipe zeroes the scalar in place.
func (s *X25519Scalar) Wipe() {
	for i := range s {
		s[i] = 0
	}
}
