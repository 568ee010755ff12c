package composition

import (
	"errors"
	"sort"

	"seraphis-core/cryptocore"
)

// ErrSignerNonceCountMismatch is returned when the two per-signer nonce
// slices a partial signer is handed don't line up.
var ErrSignerNonceCountMismatch = errors.New("composition: signer nonce slice length mismatch")

// ErrLocalNonceNotFound is returned when the local signer's own opening
// nonces are not present in the supplied set of participant nonces — the
// original implementation's "Local signer's opening nonces not in input
// set!" check.
var ErrLocalNonceNotFound = errors.New("composition: local signer's nonce pair not found among participant nonces")

// ErrNoPartialSigs is returned by AssembleFinal on an empty input.
var ErrNoPartialSigs = errors.New("composition: no partial signatures to assemble")

// ErrPartialSigMismatch is returned by AssembleFinal when the partial
// signatures being combined don't share the same message, K, KI, c, r_t1,
// r_t2 and K_t1 — they can't belong to the same signing session.
var ErrPartialSigMismatch = errors.New("composition: partial signatures disagree on shared fields")

// ErrAssemblyFailed is returned by AssembleFinal when the combined proof
// fails verification — fatal, per spec §4.7.1 step 7.
var ErrAssemblyFailed = errors.New("composition: assembled multisig proof failed to verify")

// MultisigProposal is the coordinator's invitation to sign: the statement
// (message, K, KI) plus the two deterministic nonces every partial signer
// must reuse verbatim for r_t1 and r_t2 (spec §4.7.1 step 6: "c, r_t1, r_t2,
// K_t1 are identical across partial sigs").
type MultisigProposal struct {
	Message []byte
	K       cryptocore.Point
	KI      cryptocore.Point
	NonceT1 cryptocore.Scalar
	NonceT2 cryptocore.Scalar
}

// MakeProposal builds a signing proposal for (message, K, KI). The K_t1/K_t2
// nonces only need to be unpredictable and fresh — unlike the per-signer
// KI nonces, no participant needs to reproduce them independently later, so
// plain randomness (matching original_source's generate_proof_nonce call
// sites) is sufficient.
func MakeProposal(message []byte, k, ki cryptocore.Point) (*MultisigProposal, error) {
	if k.IsIdentity() {
		return nil, ErrIdentityKey
	}
	if ki.IsIdentity() {
		return nil, ErrInvalidKeyImage
	}
	return &MultisigProposal{
		Message: message,
		K:       k,
		KI:      ki,
		NonceT1: cryptocore.RandomScalar(),
		NonceT2: cryptocore.RandomScalar(),
	}, nil
}

// MultisigPrep is one signer's pair of published KI-nonce commitments (spec
// §4.7.1 step 1: "publishes two nonce commitments"). A real deployment
// would store the ×1/8 wire encoding; this package keeps the decoded point,
// per the cofactor-convention note in proof.go's package comment.
type MultisigPrep struct {
	Nonce1Priv cryptocore.Scalar
	Nonce1Pub  cryptocore.Point
	Nonce2Priv cryptocore.Scalar
	Nonce2Pub  cryptocore.Point
}

// MultisigInit generates a fresh pair of KI-nonce commitments for one
// signer, to be published to the rest of the group before partial signing.
func MultisigInit() MultisigPrep {
	n1 := cryptocore.RandomScalar()
	n2 := cryptocore.RandomScalar()
	return MultisigPrep{
		Nonce1Priv: n1,
		Nonce1Pub:  cryptocore.GenU().ScalarMul(n1),
		Nonce2Priv: n2,
		Nonce2Pub:  cryptocore.GenU().ScalarMul(n2),
	}
}

// sortParticipantNonces reorders both nonce slices in lockstep, sorted by
// the first nonce's byte encoding, so the binonce merge factor is
// reproducible regardless of the order signers were polled in (spec §4.7.1
// step 2).
func sortParticipantNonces(pub1, pub2 []cryptocore.Point) ([]cryptocore.Point, []cryptocore.Point) {
	n := len(pub1)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		ba, bb := pub1[idx[a]].Bytes(), pub1[idx[b]].Bytes()
		for k := range ba {
			if ba[k] != bb[k] {
				return ba[k] < bb[k]
			}
		}
		return false
	})
	sorted1 := make([]cryptocore.Point, n)
	sorted2 := make([]cryptocore.Point, n)
	for i, j := range idx {
		sorted1[i] = pub1[j]
		sorted2[i] = pub2[j]
	}
	return sorted1, sorted2
}

// binonceMergeFactor computes rho = H("bn", m*, {alpha_1,e}, {alpha_2,e})
// (spec §4.7.1 step 3).
func binonceMergeFactor(mStar cryptocore.Scalar, sortedNonces1, sortedNonces2 []cryptocore.Point) cryptocore.Scalar {
	tr := cryptocore.NewTranscript("seraphis-composition-binonce-merge")
	tr.AppendScalar("mstar", mStar)
	for i, p := range sortedNonces1 {
		tr.AppendPoint(fieldLabel("n1", i), p)
	}
	for i, p := range sortedNonces2 {
		tr.AppendPoint(fieldLabel("n2", i), p)
	}
	return tr.ChallengeScalar()
}

func fieldLabel(prefix string, i int) string {
	digits := [...]byte{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9'}
	b := []byte(prefix)
	if i < 10 {
		return string(append(b, digits[i]))
	}
	return prefix + "n"
}

func sumPoints(pts []cryptocore.Point) cryptocore.Point {
	sum := cryptocore.Identity()
	for _, p := range pts {
		sum = sum.Add(p)
	}
	return sum
}

// PartialSig is one signer's contribution to a threshold composition proof
// (spec §4.7.1 step 5-6).
type PartialSig struct {
	Message    []byte
	K          cryptocore.Point
	KI         cryptocore.Point
	KT1        cryptocore.Point
	C          cryptocore.Scalar
	RT1        cryptocore.Scalar
	RT2        cryptocore.Scalar
	RKiPartial cryptocore.Scalar
}

// PartialSign produces this signer's contribution to proposal, given its
// share z_e of the aggregate spend exponent z = Σz_e, the full group's
// published KI-nonce commitments (in any order), and this signer's own
// nonce privates (which must appear among signerNonces{1,2}Pub).
func PartialSign(
	proposal *MultisigProposal,
	x, y, zShare cryptocore.Scalar,
	signerNonces1Pub, signerNonces2Pub []cryptocore.Point,
	localNonce1Priv, localNonce2Priv cryptocore.Scalar,
) (*PartialSig, error) {
	if proposal.K.IsIdentity() {
		return nil, ErrIdentityKey
	}
	if proposal.KI.IsIdentity() {
		return nil, ErrInvalidKeyImage
	}
	if y.IsZero() {
		return nil, ErrZeroY
	}
	if zShare.IsZero() {
		return nil, ErrZeroZ
	}
	if len(signerNonces1Pub) != len(signerNonces2Pub) {
		return nil, ErrSignerNonceCountMismatch
	}

	sorted1, sorted2 := sortParticipantNonces(signerNonces1Pub, signerNonces2Pub)

	localPub1 := cryptocore.GenU().ScalarMul(localNonce1Priv)
	localPub2 := cryptocore.GenU().ScalarMul(localNonce2Priv)
	found := false
	for i := range sorted1 {
		if sorted1[i].Equal(localPub1) && sorted2[i].Equal(localPub2) {
			found = true
			break
		}
	}
	if !found {
		return nil, ErrLocalNonceNotFound
	}

	yInv := y.Invert()
	kt1 := proposal.K.ScalarMul(yInv)

	mStar := challengeMessage(proposal.Message, proposal.K, proposal.KI, kt1)
	rho := binonceMergeFactor(mStar, sorted1, sorted2)

	alphaT1Pub := proposal.K.ScalarMul(proposal.NonceT1)
	alphaT2Pub := cryptocore.GenG().ScalarMul(proposal.NonceT2)
	alphaKiPub := sumPoints(sorted1).Add(sumPoints(sorted2).ScalarMul(rho))

	c := challenge(mStar, alphaT1Pub, alphaT2Pub, alphaKiPub)

	mergedLocal := localNonce1Priv.Add(localNonce2Priv.Mul(rho))

	rt1 := proposal.NonceT1.Sub(c.Mul(yInv))
	rt2 := proposal.NonceT2.Sub(c.Mul(x.Mul(yInv)))
	rkiPartial := mergedLocal.Sub(c.Mul(zShare.Mul(yInv)))

	return &PartialSig{
		Message:    proposal.Message,
		K:          proposal.K,
		KI:         proposal.KI,
		KT1:        kt1,
		C:          c,
		RT1:        rt1,
		RT2:        rt2,
		RKiPartial: rkiPartial,
	}, nil
}

// AssembleFinal sums every partial signature's r_ki_partial into the final
// r_ki and re-verifies the result with the ordinary single-signer verifier
// (spec §4.7.1 step 7: "assembly failure is fatal").
func AssembleFinal(partials []*PartialSig) (*Proof, error) {
	if len(partials) == 0 {
		return nil, ErrNoPartialSigs
	}
	first := partials[0]
	rki := cryptocore.Scalar{}
	for _, p := range partials {
		if !p.C.Equal(first.C) || !p.RT1.Equal(first.RT1) || !p.RT2.Equal(first.RT2) ||
			!p.KT1.Equal(first.KT1) || !p.K.Equal(first.K) || !p.KI.Equal(first.KI) {
			return nil, ErrPartialSigMismatch
		}
		rki = rki.Add(p.RKiPartial)
	}

	proof := &Proof{C: first.C, RT1: first.RT1, RT2: first.RT2, RKi: rki, KT1: first.KT1}
	ok, err := Verify(proof, first.Message, first.K, first.KI)
	if err != nil || !ok {
		return nil, ErrAssemblyFailed
	}
	return proof, nil
}

// SharedOffsetWeight returns 1/threshold: the weight a threshold-of-n group
// applies to any term of z that isn't already individually keyed per signer
// (e.g. a shared view-balance-derived offset), so that summing it across
// exactly `threshold` signers' shares reconstructs the whole term (spec
// §4.7.1 step 5: "added once by the group with (1/threshold)-weighting").
func SharedOffsetWeight(threshold int) (cryptocore.Scalar, error) {
	if threshold <= 0 {
		return cryptocore.Scalar{}, errors.New("composition: threshold must be positive")
	}
	return cryptocore.ScalarFromUint64(uint64(threshold)).Invert(), nil
}
