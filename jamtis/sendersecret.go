package jamtis

import "seraphis-core/cryptocore"

// EphemeralDH holds the two Diffie-Hellman points a sender derives from its
// ephemeral scalar xr and the recipient's address keys (spec §4.4).
type EphemeralDH struct {
	XKe [32]byte // xr · K3^j, published as the enote's ephemeral pubkey
	XKd [32]byte // xr · K2^j, used to derive q on the plain path
}

// ComputeEphemeralDH computes xK_e and xK_d for a plain output to dest.
func ComputeEphemeralDH(xr cryptocore.X25519Scalar, dest Destination) (EphemeralDH, error) {
	xKe, err := xr.ScalarMul(dest.K3)
	if err != nil {
		return EphemeralDH{}, err
	}
	xKd, err := xr.ScalarMul(dest.K2)
	if err != nil {
		return EphemeralDH{}, err
	}
	return EphemeralDH{XKe: xKe, XKd: xKd}, nil
}

// ComputeQPlain derives the plain-path sender-receiver secret
// q = H_32("srp", xK_d, xK_e, input_context) (spec §4.4).
func ComputeQPlain(xKd, xKe [32]byte, inputContext InputContext) [32]byte {
	return cryptocore.HashToBytes32("srp", xKd[:], xKe[:], inputContext[:])
}

// ComputeQSelfSend derives the self-send sender-receiver secret
// q = H_32("srs", k_vb, xK_e, input_context, self_send_type) (spec §4.4). It
// binds explicitly to the balance viewer, so it needs no xK_d.
func ComputeQSelfSend(kvb cryptocore.Scalar, xKe [32]byte, inputContext InputContext, sstype SelfSendType) [32]byte {
	return cryptocore.HashToBytes32("srs", kvb.Bytes(), xKe[:], inputContext[:], []byte{byte(sstype)})
}

// onetimeAddressExtensions computes H_n("g",q,C), H_n("x",q,C), H_n("u",q,C)
// (spec §4.4, §4.6 step 9).
func onetimeAddressExtensions(q [32]byte, c cryptocore.Point) (g, x, u cryptocore.Scalar) {
	cb := c.Bytes()
	g = cryptocore.HashToScalar("g", q[:], cb)
	x = cryptocore.HashToScalar("x", q[:], cb)
	u = cryptocore.HashToScalar("u", q[:], cb)
	return
}

// BuildOnetimeAddress computes
// Ko = H_n("g",q,C)·G + H_n("x",q,C)·X + H_n("u",q,C)·U + K1^j (spec §4.4).
func BuildOnetimeAddress(q [32]byte, c cryptocore.Point, k1j cryptocore.Point) cryptocore.Point {
	g, x, u := onetimeAddressExtensions(q, c)
	return k1j.
		Add(cryptocore.GenG().ScalarMul(g)).
		Add(cryptocore.GenX().ScalarMul(x)).
		Add(cryptocore.GenU().ScalarMul(u))
}
