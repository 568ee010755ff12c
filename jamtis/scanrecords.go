package jamtis

import (
	"errors"

	"seraphis-core/cryptocore"
)

// ErrKeyImageDegenerate is returned by TryGetFullRecord when the enote-view
// secret's X-coefficient (k_x + k_vb) is zero, making the key image division
// undefined. This can only happen against a maliciously crafted enote; a
// genuine wallet never produces one.
var ErrKeyImageDegenerate = errors.New("jamtis: enote-view X-coefficient is zero, key image undefined")

// EnoteSource is satisfied by CoinbaseEnote and StandardEnote: the minimal
// set of fields and behaviour the scan ladder needs before an enote's tag and
// amount are recovered (spec §3.5, §4.6). Its method set is unexported, so it
// is a closed sum type: nothing outside this package can add a third variant.
type EnoteSource interface {
	onetimeAddress() cryptocore.Point
	viewTagByte() byte
	encryptedTag() EncryptedAddressTag
	ephemeralKey() [32]byte
	inputCtx() InputContext
	impliedCommitment() cryptocore.Point
	decodeAmount(q [32]byte, xKe [32]byte, selfSend bool) (amount uint64, y cryptocore.Scalar, verified bool)
}

func (e CoinbaseEnote) onetimeAddress() cryptocore.Point          { return e.Ko }
func (e CoinbaseEnote) viewTagByte() byte                        { return e.ViewTag }
func (e CoinbaseEnote) encryptedTag() EncryptedAddressTag        { return e.EncryptedTag }
func (e CoinbaseEnote) ephemeralKey() [32]byte                   { return e.EphemeralPubkey }
func (e CoinbaseEnote) inputCtx() InputContext                   { return e.InputContext }

// impliedCommitment gives a coinbase enote's amount a Pedersen-shaped
// commitment with zero blinding, since the amount is carried in the clear and
// needs no hiding: C = a·H (spec §3.5 "no commitment, the amount is public";
// the onetime-address hash at §4.4 still needs some C to bind to).
func (e CoinbaseEnote) impliedCommitment() cryptocore.Point {
	return cryptocore.GenH().ScalarMul(cryptocore.ScalarFromUint64(e.PublicAmount))
}

func (e CoinbaseEnote) decodeAmount(q, xKe [32]byte, selfSend bool) (uint64, cryptocore.Scalar, bool) {
	return e.PublicAmount, cryptocore.Scalar{}, true
}

func (e StandardEnote) onetimeAddress() cryptocore.Point   { return e.Ko }
func (e StandardEnote) viewTagByte() byte                  { return e.ViewTag }
func (e StandardEnote) encryptedTag() EncryptedAddressTag  { return e.EncryptedTag }
func (e StandardEnote) ephemeralKey() [32]byte             { return e.EphemeralPubkey }
func (e StandardEnote) inputCtx() InputContext             { return e.InputContext }
func (e StandardEnote) impliedCommitment() cryptocore.Point { return e.C }

func (e StandardEnote) decodeAmount(q, xKe [32]byte, selfSend bool) (uint64, cryptocore.Scalar, bool) {
	var a uint64
	var y cryptocore.Scalar
	if selfSend {
		a, y = DecodeSelfSendAmount(e.EncodedAmount, q)
	} else {
		a, y = DecodePlainAmount(e.EncodedAmount, q, xKe)
	}
	return a, y, Commitment(a, y).Equal(e.C)
}

// BasicRecord is the first rung of the scan ladder: an enote that passed the
// view-tag filter, carrying everything later stages need (spec §3.6).
type BasicRecord struct {
	Enote           EnoteSource
	EphemeralPubkey [32]byte
	InputContext    InputContext
	NominalTag      EncryptedAddressTag
	XKd             [32]byte
}

// TryGetBasicRecord runs spec §4.6 steps 1-2: derive xK_d if not already
// known, recompute the view tag, and discard on mismatch. Exactly one of
// xkfr or precomputedXKd must be supplied.
func TryGetBasicRecord(enote EnoteSource, xkfr *cryptocore.X25519Scalar, precomputedXKd *[32]byte) (*BasicRecord, bool, error) {
	xKe := enote.ephemeralKey()

	var xKd [32]byte
	switch {
	case precomputedXKd != nil:
		xKd = *precomputedXKd
	case xkfr != nil:
		var err error
		xKd, err = xkfr.ScalarMul(xKe)
		if err != nil {
			return nil, false, err
		}
	default:
		return nil, false, errors.New("jamtis: TryGetBasicRecord needs xk_fr or a precomputed xK_d")
	}

	if ViewTag(xKd, enote.onetimeAddress()) != enote.viewTagByte() {
		return nil, false, nil
	}

	return &BasicRecord{
		Enote:           enote,
		EphemeralPubkey: xKe,
		InputContext:    enote.inputCtx(),
		NominalTag:      enote.encryptedTag(),
		XKd:             xKd,
	}, true, nil
}

// IntermediateRecord is the second rung: the decrypted address tag checked
// out, the address index and amount recovered, and the commitment verified
// (spec §3.6, §4.6 steps 3-8).
type IntermediateRecord struct {
	Basic          BasicRecord
	J              AddressIndex
	Hint           AddressTagHint
	Amount         uint64
	BlindingFactor cryptocore.Scalar
	Q              [32]byte
	SelfSend       bool
	SelfSendType   SelfSendType
}

// TryGetIntermediateRecord runs spec §4.6 steps 3-8. Per the "Ordering
// guarantee" (self-send is cheaper and dominates in practice), every
// self-send type is tried before the plain path — the literal step numbering
// reads plain-first, but the prose guarantee overrides it, and
// original_source/src/seraphis/tx_enote_record_utils.cpp confirms the
// self-send branch is tried first with exactly this short-circuit shape.
// h must hold at least the address-generate tier (s_ga, s_ct); the self-send
// branch is skipped entirely if h does not also hold k_vb.
func TryGetIntermediateRecord(basic BasicRecord, h *KeyHierarchy) (*IntermediateRecord, bool, error) {
	if h.Sga == nil || h.Sct == nil {
		return nil, false, ErrWrongTier
	}

	if h.Kvb != nil {
		for _, sstype := range selfSendTypes {
			q := ComputeQSelfSend(*h.Kvb, basic.EphemeralPubkey, basic.InputContext, sstype)
			if rec, ok := tryCompleteIntermediate(basic, h, q, true, sstype); ok {
				return rec, true, nil
			}
		}
	}

	q := ComputeQPlain(basic.XKd, basic.EphemeralPubkey, basic.InputContext)
	if rec, ok := tryCompleteIntermediate(basic, h, q, false, SelfSendDummy); ok {
		return rec, true, nil
	}

	return nil, false, nil
}

// tryCompleteIntermediate runs steps 4-7 for one candidate q: decrypt tag,
// decipher (requiring a zero hint on either path, since a correctly
// constructed self-send's decrypted tag also carries a zero hint — spec
// §4.4's "implicit in the encrypted tag" note), reconstruct K1'^j' and
// compare with the component Ko and q' imply, then recover and verify the
// amount.
func tryCompleteIntermediate(basic BasicRecord, h *KeyHierarchy, q [32]byte, selfSend bool, sstype SelfSendType) (*IntermediateRecord, bool) {
	cipherTag := DecryptAddressTag(q, basic.Enote.onetimeAddress(), basic.NominalTag)
	j, hint, err := TryDecipherAddressIndex(*h.Sct, cipherTag, true)
	if err != nil {
		return nil, false
	}

	wantK1 := ReconstructK1(h.K1, *h.Sga, j)
	gotK1 := impliedK1(q, basic.Enote)
	if !wantK1.Equal(gotK1) {
		return nil, false
	}

	amount, y, verified := basic.Enote.decodeAmount(q, basic.EphemeralPubkey, selfSend)
	if !verified {
		return nil, false
	}

	return &IntermediateRecord{
		Basic:          basic,
		J:              j,
		Hint:           hint,
		Amount:         amount,
		BlindingFactor: y,
		Q:              q,
		SelfSend:       selfSend,
		SelfSendType:   sstype,
	}, true
}

// impliedK1 strips the onetime-address hash extensions from Ko, leaving the
// per-address K1^j the sender must have started from (spec §4.6 step 6).
func impliedK1(q [32]byte, enote EnoteSource) cryptocore.Point {
	g, x, u := onetimeAddressExtensions(q, enote.impliedCommitment())
	ext := cryptocore.GenG().ScalarMul(g).
		Add(cryptocore.GenX().ScalarMul(x)).
		Add(cryptocore.GenU().ScalarMul(u))
	return enote.onetimeAddress().Sub(ext)
}

// EnoteType records which construction path an enote took, the scan ladder's
// final addition (spec §3.6: FullRecord "adds ... enote type").
type EnoteType struct {
	SelfSend     bool
	SelfSendType SelfSendType // meaningful only when SelfSend is true
}

func (t EnoteType) String() string {
	if !t.SelfSend {
		return "plain"
	}
	return t.SelfSendType.String()
}

// FullRecord is the final rung: the enote-view private key components and
// the key image are known, so the enote can be tracked for spend (spec §3.6,
// §3.8, §4.6 step 9).
type FullRecord struct {
	Intermediate IntermediateRecord
	Kg, Kx, Ku   cryptocore.Scalar
	KeyImage     cryptocore.Point
	EnoteType    EnoteType
}

// TryGetFullRecord runs spec §4.6 step 9 and §3.8: derive the enote-view
// secret components and the key image KI = ((k_u+k_m)/(k_x+k_vb))·U. Requires
// the master tier, since only it holds k_m.
func TryGetFullRecord(ir IntermediateRecord, h *KeyHierarchy) (*FullRecord, bool, error) {
	if h.Km == nil || h.Kvb == nil || h.Sga == nil {
		return nil, false, ErrWrongTier
	}

	hg, hx, hu := onetimeAddressExtensions(ir.Q, ir.Basic.Enote.impliedCommitment())
	extG, extX, extU := addressExtensionScalars(*h.Sga, ir.J)

	kg := hg.Add(extG)
	kx := hx.Add(extX)
	ku := hu.Add(extU)

	xCoeff := kx.Add(*h.Kvb)
	if xCoeff.IsZero() {
		return nil, false, ErrKeyImageDegenerate
	}
	uCoeff := ku.Add(*h.Km)
	ki := cryptocore.GenU().ScalarMul(uCoeff.Mul(xCoeff.Invert()))

	return &FullRecord{
		Intermediate: ir,
		Kg:           kg,
		Kx:           kx,
		Ku:           ku,
		KeyImage:     ki,
		EnoteType:    EnoteType{SelfSend: ir.SelfSend, SelfSendType: ir.SelfSendType},
	}, true, nil
}
