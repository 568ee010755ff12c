package jamtis

import (
	"seraphis-core/cryptocore"
)

// AddressIndexSize is the fixed byte width of a jamtis address index (spec
// §3.3: "j: 16-byte address index").
const AddressIndexSize = 16

// AddressTagHintSize is the width of the hint appended to the raw address
// tag before ciphering (spec §3.3: "raw_tag(j, hint) = j ‖ hint"). A
// non-selfsend raw tag always carries the all-zero hint (spec §4.3, §4.6
// step 5).
const AddressTagHintSize = 2

// RawAddressTagSize is the total width of a raw (un-enciphered) address tag,
// and therefore of the ciphered and encrypted tags too, since both the
// cipher and the XOR mask are length-preserving.
const RawAddressTagSize = AddressIndexSize + AddressTagHintSize

// AddressIndex identifies one logical address derived from a wallet's
// generate-address secret. Created once, mutated never (spec §3.11).
type AddressIndex [AddressIndexSize]byte

// AddressTagHint is the hint carried after the index in a raw tag. The scan
// ladder accepts only the all-zero hint, on the plain and the self-send path
// alike; a self-send type is recognised by its sender-receiver secret, not
// by the hint.
type AddressTagHint [AddressTagHintSize]byte

// IsZero reports whether the hint is the all-zero plain-path marker.
func (h AddressTagHint) IsZero() bool {
	return h == AddressTagHint{}
}

// CipherTag is a ciphered (j ‖ hint), opaque to anyone without s_ct.
type CipherTag [RawAddressTagSize]byte

// EncryptedAddressTag is a CipherTag masked with a per-enote XOR pad derived
// from the sender-receiver secret (spec §3.3).
type EncryptedAddressTag [RawAddressTagSize]byte

// Destination is the public tuple a sender uses to pay an address: the three
// address public keys plus its enciphered tag (spec §3.4).
type Destination struct {
	K1        cryptocore.Point // spend key extended for this index
	K2        [32]byte         // find-received DH base for this index
	K3        [32]byte         // unlock-amounts DH base for this index
	CipherTag CipherTag        // ciphered (j ‖ hint), opaque to anyone without s_ct
}

func addressExtensionScalars(sga [32]byte, j AddressIndex) (g, x, u cryptocore.Scalar) {
	g = cryptocore.HashToScalar("addr_g", sga[:], j[:])
	x = cryptocore.HashToScalar("addr_x", sga[:], j[:])
	u = cryptocore.HashToScalar("addr_u", sga[:], j[:])
	return
}

func addressExtensionX25519(sga [32]byte, j AddressIndex) cryptocore.X25519Scalar {
	return cryptocore.X25519ScalarFromWide(cryptocore.HashToBytes32("addr_gen", sga[:], j[:]))
}

// GenerateAddress derives a new Destination for address index j. It requires
// only the generate-address tier (h.Sga) plus the wallet's public XKua/XKfr
// — it never touches the private xk_ua or xk_fr, by design: K3^j and K2^j
// are built as ext_j·XKua and ext_j·XKfr, which (by associativity of scalar
// multiplication) equal xk_ua·G_addr^j and xk_fr·K_xr^j respectively without
// the caller ever holding xk_ua or xk_fr.
func (h *KeyHierarchy) GenerateAddress(j AddressIndex, hint AddressTagHint) (Destination, error) {
	if h.Sga == nil {
		return Destination{}, ErrWrongTier
	}
	extG, extX, extU := addressExtensionScalars(*h.Sga, j)
	k1j := h.K1.
		Add(cryptocore.GenG().ScalarMul(extG)).
		Add(cryptocore.GenX().ScalarMul(extX)).
		Add(cryptocore.GenU().ScalarMul(extU))

	extAddr := addressExtensionX25519(*h.Sga, j)
	k3j, err := extAddr.ScalarMul(h.XKua)
	if err != nil {
		return Destination{}, err
	}
	k2j, err := extAddr.ScalarMul(h.XKfr)
	if err != nil {
		return Destination{}, err
	}

	if h.Sct == nil {
		return Destination{}, ErrWrongTier
	}
	tag, err := CipherAddressIndex(*h.Sct, j, hint)
	if err != nil {
		return Destination{}, err
	}

	return Destination{K1: k1j, K2: k2j, K3: k3j, CipherTag: tag}, nil
}

// ReconstructK1 rebuilds K1^j from K1, s_ga and j, for the scanner's "compare
// with the component implied by Ko" step (spec §4.6 step 6).
func ReconstructK1(k1 cryptocore.Point, sga [32]byte, j AddressIndex) cryptocore.Point {
	extG, extX, extU := addressExtensionScalars(sga, j)
	return k1.
		Add(cryptocore.GenG().ScalarMul(extG)).
		Add(cryptocore.GenX().ScalarMul(extX)).
		Add(cryptocore.GenU().ScalarMul(extU))
}
