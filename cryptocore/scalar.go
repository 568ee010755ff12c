// Package cryptocore wraps Ed25519/X25519 scalar and point arithmetic behind
// a small, domain-specific API: independent generators G, H, X, U, a
// Fiat-Shamir transcript, and the labelled hash functions the rest of the
// module builds on. Nothing above this package touches filippo.io/edwards25519
// or golang.org/x/crypto directly.
package cryptocore

import (
	"crypto/rand"
	"crypto/sha512"
	"errors"

	"filippo.io/edwards25519"
)

// ErrNonCanonicalScalar is returned when a byte encoding is not the canonical
// little-endian representation of a scalar reduced mod the group order.
var ErrNonCanonicalScalar = errors.New("cryptocore: non-canonical scalar encoding")

// Scalar is an element of the Ed25519 scalar field, reduced mod L.
type Scalar struct {
	s edwards25519.Scalar
}

// ScalarFromBytes decodes a 32-byte canonical little-endian scalar. It
// rejects non-canonical encodings, matching the composition-proof verifier's
// "reject if any response scalar is non-canonical" rule (spec §4.7).
func ScalarFromBytes(b []byte) (Scalar, error) {
	if len(b) != 32 {
		return Scalar{}, ErrNonCanonicalScalar
	}
	var s edwards25519.Scalar
	if _, err := s.SetCanonicalBytes(b); err != nil {
		return Scalar{}, ErrNonCanonicalScalar
	}
	return Scalar{s: s}, nil
}

// ScalarFromWideBytes reduces an arbitrary 64-byte value mod L. Used by the
// labelled hash-to-scalar functions, never for decoding wire-format scalars.
func ScalarFromWideBytes(b [64]byte) Scalar {
	var s edwards25519.Scalar
	if _, err := s.SetUniformBytes(b[:]); err != nil {
		panic("cryptocore: SetUniformBytes on 64 bytes cannot fail")
	}
	return Scalar{s: s}
}

// ScalarFromUint64 embeds a small integer as a scalar; used for amounts in
// commitments and legacy identifiers, multisig weights, and test fixtures.
func ScalarFromUint64(v uint64) Scalar {
	var wide [64]byte
	for i := 0; i < 8; i++ {
		wide[i] = byte(v >> (8 * i))
	}
	return ScalarFromWideBytes(wide)
}

// RandomScalar draws a uniformly random scalar from crypto/rand.
func RandomScalar() Scalar {
	var wide [64]byte
	if _, err := rand.Read(wide[:]); err != nil {
		panic("cryptocore: system RNG failed: " + err.Error())
	}
	return ScalarFromWideBytes(wide)
}

// DeterministicNonce derives a scalar nonce as H(salt ‖ secret ‖ nonce-label),
// the construction spec §4.1 requires so proof randomness stays deterministic
// even under adversarial RNG replacement.
func DeterministicNonce(salt string, secret Scalar, label string) Scalar {
	h := sha512.New()
	h.Write([]byte(salt))
	h.Write(secret.Bytes())
	h.Write([]byte(label))
	var wide [64]byte
	copy(wide[:], h.Sum(nil))
	return ScalarFromWideBytes(wide)
}

// Bytes returns the canonical 32-byte little-endian encoding.
func (s Scalar) Bytes() []byte {
	b := make([]byte, 32)
	copy(b, s.s.Bytes())
	return b
}

// IsZero reports whether the scalar is the additive identity.
func (s Scalar) IsZero() bool {
	var zero edwards25519.Scalar
	return s.s.Equal(&zero) == 1
}

// Equal reports whether two scalars represent the same field element. Used
// by the composition-proof verifier to compare a recomputed challenge
// against the one carried in the proof (spec §4.7).
func (s Scalar) Equal(other Scalar) bool {
	return s.s.Equal(&other.s) == 1
}

// Add returns s + other mod L.
func (s Scalar) Add(other Scalar) Scalar {
	var out edwards25519.Scalar
	out.Add(&s.s, &other.s)
	return Scalar{s: out}
}

// Sub returns s - other mod L.
func (s Scalar) Sub(other Scalar) Scalar {
	var out edwards25519.Scalar
	out.Subtract(&s.s, &other.s)
	return Scalar{s: out}
}

// Mul returns s * other mod L.
func (s Scalar) Mul(other Scalar) Scalar {
	var out edwards25519.Scalar
	out.Multiply(&s.s, &other.s)
	return Scalar{s: out}
}

// Negate returns -s mod L.
func (s Scalar) Negate() Scalar {
	var out edwards25519.Scalar
	out.Negate(&s.s)
	return Scalar{s: out}
}

// Invert returns s^-1 mod L. Panics if s is zero; callers must never invert a
// secret that the protocol permits to be zero (e.g. composition proof's y)
// without checking first.
func (s Scalar) Invert() Scalar {
	if s.IsZero() {
		panic("cryptocore: inverting zero scalar")
	}
	var out edwards25519.Scalar
	out.Invert(&s.s)
	return Scalar{s: out}
}

// Wipe zeroes the scalar's internal representation. Call via defer at the
// end of any function that handles a secret scalar (spec §5, §9 scoped wipe).
func (s *Scalar) Wipe() {
	var zero edwards25519.Scalar
	s.s.Set(&zero)
}

func (s Scalar) inner() *edwards25519.Scalar { return &s.s }
