package jamtis

import "seraphis-core/cryptocore"

// InputContext binds a sender-receiver secret to the transaction consuming
// the inputs that fund an output (spec §4.4: "q = H_32(..., input_context)").
// It is opaque to this package; callers derive it from whatever the
// transaction-assembly layer uses to identify a transaction.
type InputContext [32]byte

// CoinbaseEnote is a block-reward output: no commitment, the amount is
// public (spec §3.5).
type CoinbaseEnote struct {
	Ko              cryptocore.Point
	PublicAmount    uint64
	ViewTag         byte
	EncryptedTag    EncryptedAddressTag
	EphemeralPubkey [32]byte
	InputContext    InputContext
}

// StandardEnote is an ordinary transaction output: a Pedersen-committed,
// encoded amount (spec §3.5).
type StandardEnote struct {
	Ko              cryptocore.Point
	C               cryptocore.Point
	EncodedAmount   [8]byte
	ViewTag         byte
	EncryptedTag    EncryptedAddressTag
	EphemeralPubkey [32]byte
	InputContext    InputContext
}
