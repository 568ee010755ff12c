// Package composition implements the composition proof: a Schnorr-style
// proof of knowledge of (x, y, z) opening K = xG + yX + zU, together with the
// key image KI = (z/y)U it doubles as a spend authorisation for (spec
// §4.7). Both the single-signer form (this file) and the MuSig2-style
// threshold variant (multisig.go) are grounded on
// original_source/src/seraphis/sp_composition_proof.cpp, simplified to
// operate on this module's typed Scalar/Point values directly rather than
// Monero's ×1/8 cofactor-clearing convention for rct::key wire bytes — that
// convention exists to make curve points safe to compare and hash once
// serialized to bytes on the wire, which this package's Point type (always a
// decoded, in-memory group element) doesn't need.
package composition

import (
	"errors"

	"seraphis-core/cryptocore"
)

// ErrIdentityKey is returned when K is the identity point (forbidden for
// both proving and verifying).
var ErrIdentityKey = errors.New("composition: proof key K must not be the identity")

// ErrZeroY is returned when the blinding exponent y is zero: 1/y is then
// undefined, so every proof element collapses.
var ErrZeroY = errors.New("composition: y must not be zero")

// ErrZeroZ is returned when the spend exponent z is zero: the resulting key
// image would be the identity, which every verifier rejects anyway.
var ErrZeroZ = errors.New("composition: z must not be zero")

// ErrInvalidKeyImage is returned when KI is the identity point, either
// because z was zero or because a caller supplied a malformed KI to Verify
// (spec §4.7 verifier rule: "Reject if ... KI is the identity").
var ErrInvalidKeyImage = errors.New("composition: key image must not be the identity")

// Proof is a composition proof (spec §4.7 step 6: "(c, r_t1, r_t2, r_ki,
// K_t1)"). Every Scalar field can only be constructed in canonical form (see
// cryptocore.Scalar), so the spec's "reject non-canonical response" verifier
// rule is enforced by the type system rather than re-checked here.
type Proof struct {
	C   cryptocore.Scalar
	RT1 cryptocore.Scalar
	RT2 cryptocore.Scalar
	RKi cryptocore.Scalar
	KT1 cryptocore.Point
}

// challengeMessage computes m* = H(domain, X, U, m, K, KI, K_t1) (spec §4.7
// step 3).
func challengeMessage(message []byte, k, ki, kt1 cryptocore.Point) cryptocore.Scalar {
	tr := cryptocore.NewTranscript("seraphis-composition-proof-message")
	tr.AppendPoint("X", cryptocore.GenX())
	tr.AppendPoint("U", cryptocore.GenU())
	tr.AppendBytes("m", message)
	tr.AppendPoint("K", k)
	tr.AppendPoint("KI", ki)
	tr.AppendPoint("Kt1", kt1)
	return tr.ChallengeScalar()
}

// challenge computes c = H(m*, K_t1 proof key, K_t2 proof key, KI proof key)
// (spec §4.7 step 4).
func challenge(mStar cryptocore.Scalar, kt1Pub, kt2Pub, kiPub cryptocore.Point) cryptocore.Scalar {
	tr := cryptocore.NewTranscript("seraphis-composition-proof-challenge")
	tr.AppendScalar("mstar", mStar)
	tr.AppendPoint("kt1pub", kt1Pub)
	tr.AppendPoint("kt2pub", kt2Pub)
	tr.AppendPoint("kipub", kiPub)
	return tr.ChallengeScalar()
}

// nonce derives a deterministic per-proof nonce from a secret scalar, a
// salt binding the full statement (message, K, KI), and a component label
// (spec §4.1: "H(salt ‖ secret ‖ nonce)" with an explicit label). Binding to
// KI as well as message and K stops nonce reuse across two proofs that
// happen to share a message and K but not a key image.
func nonce(message []byte, k, ki cryptocore.Point, secret cryptocore.Scalar, label string) cryptocore.Scalar {
	salt := string(message) + string(k.Bytes()) + string(ki.Bytes())
	return cryptocore.DeterministicNonce(salt, secret, label)
}

// Prove builds a composition proof that the caller knows (x, y, z) opening
// K, and returns the key image KI = (z/y)U alongside it (spec §4.7). x = 0
// is a permitted edge case — some callers set it explicitly — and needs no
// special handling here since the arithmetic is uniform in x.
func Prove(message []byte, k cryptocore.Point, x, y, z cryptocore.Scalar) (*Proof, cryptocore.Point, error) {
	if k.IsIdentity() {
		return nil, cryptocore.Point{}, ErrIdentityKey
	}
	if y.IsZero() {
		return nil, cryptocore.Point{}, ErrZeroY
	}
	if z.IsZero() {
		return nil, cryptocore.Point{}, ErrZeroZ
	}

	yInv := y.Invert()
	ki := cryptocore.GenU().ScalarMul(z.Mul(yInv))
	if ki.IsIdentity() {
		return nil, cryptocore.Point{}, ErrInvalidKeyImage
	}

	kt1 := k.ScalarMul(yInv)

	alphaT1 := nonce(message, k, ki, y, "t1")
	alphaT2 := nonce(message, k, ki, x, "t2")
	alphaKi := nonce(message, k, ki, z, "ki")

	mStar := challengeMessage(message, k, ki, kt1)
	c := challenge(mStar,
		k.ScalarMul(alphaT1),
		cryptocore.GenG().ScalarMul(alphaT2),
		cryptocore.GenU().ScalarMul(alphaKi))

	rt1 := alphaT1.Sub(c.Mul(yInv))
	rt2 := alphaT2.Sub(c.Mul(x.Mul(yInv)))
	rki := alphaKi.Sub(c.Mul(z.Mul(yInv)))

	return &Proof{C: c, RT1: rt1, RT2: rt2, RKi: rki, KT1: kt1}, ki, nil
}

// Verify checks a composition proof against message, K and KI (spec §4.7
// verifier). It rejects an identity KI or K up front, recomputes K_t2 =
// K_t1 - X - KI, rebuilds the three challenge-commitment pieces from the
// responses, and requires the rehashed challenge to match proof.C.
func Verify(proof *Proof, message []byte, k, ki cryptocore.Point) (bool, error) {
	if ki.IsIdentity() {
		return false, ErrInvalidKeyImage
	}
	if k.IsIdentity() {
		return false, ErrIdentityKey
	}

	mStar := challengeMessage(message, k, ki, proof.KT1)
	kt2 := proof.KT1.Sub(cryptocore.GenX()).Sub(ki)

	partT1 := k.ScalarMul(proof.RT1).Add(proof.KT1.ScalarMul(proof.C))
	partT2 := cryptocore.GenG().ScalarMul(proof.RT2).Add(kt2.ScalarMul(proof.C))
	partKi := cryptocore.GenU().ScalarMul(proof.RKi).Add(ki.ScalarMul(proof.C))

	cNom := challenge(mStar, partT1, partT2, partKi)
	return cNom.Equal(proof.C), nil
}
