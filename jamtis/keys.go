// Package jamtis implements the jamtis address/enote cryptography layer:
// key hierarchy derivation (spec §3.2, §4.2), address indices and tag codec
// (§3.3, §4.3), one-time addresses and sender-receiver secrets (§4.4), amount
// encoding (§4.5), and the per-enote scan ladder (§4.6, §3.6).
package jamtis

import (
	"errors"

	"seraphis-core/cryptocore"
)

// Tier identifies how much of the key hierarchy a wallet instance holds.
// Tiers are ordered weakest-first; the wallet-tier invariant (spec §3.2) is
// that a strict prefix of the chain authorises strictly weaker operations.
type Tier int

const (
	// TierCipherTag holds only s_ct: can cipher/decipher address tags,
	// cannot compute view tags (they need xk_fr), generate new addresses or
	// scan amounts.
	TierCipherTag Tier = iota
	// TierAddressGenerate holds s_ga (and the s_ct it derives): can generate
	// new addresses, cannot find received enotes or recover amounts.
	TierAddressGenerate
	// TierFindReceived holds xk_fr: can find candidate enotes via the DH
	// derivation and view-tag filter, cannot recover amounts.
	TierFindReceived
	// TierUnlockAmounts holds xk_ua: can recompute the amount-baked key,
	// a sibling capability to find-received, neither derivable from the
	// other.
	TierUnlockAmounts
	// TierViewBalance holds k_vb: full viewing capability, derives every
	// lower tier's secret, cannot sign spends.
	TierViewBalance
	// TierMaster holds k_m: full spend authority.
	TierMaster
)

// ErrWrongTier is returned when an operation requires a secret the caller's
// KeyHierarchy does not hold at its tier.
var ErrWrongTier = errors.New("jamtis: key hierarchy does not hold a secret required for this tier")

// ErrKeyMismatch is returned by Validate when a re-derived field does not
// match a field already present in the struct, signalling a corrupted or
// inconsistent partial wallet.
var ErrKeyMismatch = errors.New("jamtis: re-derived key does not match supplied key")

// KeyHierarchy holds whichever secrets a wallet instance is authorised to
// know, plus the always-public K1, xK_ua, xK_fr (spec §3.2 table). Nil secret
// fields mark the boundary of what is known, per §4.2.
type KeyHierarchy struct {
	Tier Tier

	Km   *cryptocore.Scalar       // master spend secret, TierMaster only
	Kvb  *cryptocore.Scalar       // view-balance secret, TierMaster/TierViewBalance
	XkUa *cryptocore.X25519Scalar // unlock-amounts secret
	XkFr *cryptocore.X25519Scalar // find-received secret
	Sga  *[32]byte                // generate-address secret
	Sct  *[32]byte                // cipher-tag secret

	K1   cryptocore.Point // jamtis spend base, always public
	XKua [32]byte         // unlock-amounts public key, always public
	XKfr [32]byte         // find-received public key, always public
}

func deriveXkUa(kvb cryptocore.Scalar) cryptocore.X25519Scalar {
	return cryptocore.X25519ScalarFromWide(cryptocore.HashToBytes32("ua", kvb.Bytes()))
}

func deriveXkFr(kvb cryptocore.Scalar) cryptocore.X25519Scalar {
	return cryptocore.X25519ScalarFromWide(cryptocore.HashToBytes32("fr", kvb.Bytes()))
}

func deriveSga(kvb cryptocore.Scalar) [32]byte {
	return cryptocore.HashToBytes32("ga", kvb.Bytes())
}

func deriveSct(sga [32]byte) [32]byte {
	return cryptocore.HashToBytes32("ct", sga[:])
}

// NewMasterWallet derives the full six-secret chain from a master secret.
func NewMasterWallet(km cryptocore.Scalar) (*KeyHierarchy, error) {
	kvb := cryptocore.HashToScalar("vb", km.Bytes())
	xkUa := deriveXkUa(kvb)
	xkFr := deriveXkFr(kvb)
	sga := deriveSga(kvb)
	sct := deriveSct(sga)

	xKuaBytes, err := xkUa.BasepointMul()
	if err != nil {
		return nil, err
	}
	xKfrBytes, err := xkFr.ScalarMul(xKuaBytes)
	if err != nil {
		return nil, err
	}

	k1 := cryptocore.GenX().ScalarMul(kvb).Add(cryptocore.GenU().ScalarMul(km))

	return &KeyHierarchy{
		Tier: TierMaster,
		Km:   &km, Kvb: &kvb, XkUa: &xkUa, XkFr: &xkFr, Sga: &sga, Sct: &sct,
		K1: k1, XKua: xKuaBytes, XKfr: xKfrBytes,
	}, nil
}

// NewViewBalanceWallet builds a full-viewing wallet from k_vb and the public
// K1 handed down from the master tier (K1 cannot be recomputed without k_m).
func NewViewBalanceWallet(kvb cryptocore.Scalar, k1 cryptocore.Point) (*KeyHierarchy, error) {
	xkUa := deriveXkUa(kvb)
	xkFr := deriveXkFr(kvb)
	sga := deriveSga(kvb)
	sct := deriveSct(sga)

	xKuaBytes, err := xkUa.BasepointMul()
	if err != nil {
		return nil, err
	}
	xKfrBytes, err := xkFr.ScalarMul(xKuaBytes)
	if err != nil {
		return nil, err
	}

	return &KeyHierarchy{
		Tier: TierViewBalance,
		Kvb:  &kvb, XkUa: &xkUa, XkFr: &xkFr, Sga: &sga, Sct: &sct,
		K1: k1, XKua: xKuaBytes, XKfr: xKfrBytes,
	}, nil
}

// NewFindReceivedWallet builds a find-received-only wallet: it can run the
// view-tag filter and DH derivation but cannot decipher address tags or
// recover amounts.
func NewFindReceivedWallet(xkFr cryptocore.X25519Scalar, k1 cryptocore.Point, xKua, xKfr [32]byte) *KeyHierarchy {
	return &KeyHierarchy{Tier: TierFindReceived, XkFr: &xkFr, K1: k1, XKua: xKua, XKfr: xKfr}
}

// NewUnlockAmountsWallet builds an unlock-amounts-only wallet.
func NewUnlockAmountsWallet(xkUa cryptocore.X25519Scalar, k1 cryptocore.Point, xKuaPub, xKfr [32]byte) *KeyHierarchy {
	return &KeyHierarchy{Tier: TierUnlockAmounts, XkUa: &xkUa, K1: k1, XKua: xKuaPub, XKfr: xKfr}
}

// NewAddressGenerateWallet builds an address-generation-only wallet: it can
// mint new address indices and their cipher tags but cannot scan the ledger.
func NewAddressGenerateWallet(sga [32]byte, k1 cryptocore.Point, xKua, xKfr [32]byte) *KeyHierarchy {
	sct := deriveSct(sga)
	return &KeyHierarchy{Tier: TierAddressGenerate, Sga: &sga, Sct: &sct, K1: k1, XKua: xKua, XKfr: xKfr}
}

// NewCipherTagWallet builds the weakest tier: only the cipher-tag secret.
func NewCipherTagWallet(sct [32]byte, k1 cryptocore.Point, xKua, xKfr [32]byte) *KeyHierarchy {
	return &KeyHierarchy{Tier: TierCipherTag, Sct: &sct, K1: k1, XKua: xKua, XKfr: xKfr}
}

// Validate re-derives every field reachable from the highest secret present
// and checks equality against whatever else is present in h. It never
// reconstructs a higher-tier secret from a lower one (spec §4.2's "partial
// wallets re-derive only *derivable* fields").
func (h *KeyHierarchy) Validate() error {
	if h.Km != nil && h.Kvb != nil && (!cryptocore.HashToScalar("vb", h.Km.Bytes()).Equal(*h.Kvb) ||
		!cryptocore.GenX().ScalarMul(*h.Kvb).Add(cryptocore.GenU().ScalarMul(*h.Km)).Equal(h.K1)) {
		return ErrKeyMismatch
	}
	if h.XkUa != nil {
		if pub, err := h.XkUa.BasepointMul(); err != nil || pub != h.XKua {
			return ErrKeyMismatch
		}
	}
	if h.XkFr != nil {
		if pub, err := h.XkFr.ScalarMul(h.XKua); err != nil || pub != h.XKfr {
			return ErrKeyMismatch
		}
	}
	switch {
	case h.Kvb != nil:
		if wantXkUa := deriveXkUa(*h.Kvb); h.XkUa != nil && *h.XkUa != wantXkUa {
			return ErrKeyMismatch
		}
		if wantXkFr := deriveXkFr(*h.Kvb); h.XkFr != nil && *h.XkFr != wantXkFr {
			return ErrKeyMismatch
		}
		sga := deriveSga(*h.Kvb)
		if h.Sga != nil && *h.Sga != sga {
			return ErrKeyMismatch
		}
		sct := deriveSct(sga)
		if h.Sct != nil && *h.Sct != sct {
			return ErrKeyMismatch
		}
	case h.Sga != nil:
		sct := deriveSct(*h.Sga)
		if h.Sct != nil && *h.Sct != sct {
			return ErrKeyMismatch
		}
	}
	if h.K1.IsIdentity() {
		return errors.New("jamtis: K1 must not be the identity point")
	}
	return nil
}

// Wipe zeroes every secret field held by the hierarchy. Callers that built a
// KeyHierarchy for a single operation should defer h.Wipe().
func (h *KeyHierarchy) Wipe() {
	if h.Km != nil {
		h.Km.Wipe()
	}
	if h.Kvb != nil {
		h.Kvb.Wipe()
	}
	if h.XkUa != nil {
		h.XkUa.Wipe()
	}
	if h.XkFr != nil {
		h.XkFr.Wipe()
	}
	if h.Sga != nil {
		cryptocore.WipeBytes(h.Sga[:])
	}
	if h.Sct != nil {
		cryptocore.WipeBytes(h.Sct[:])
	}
}
