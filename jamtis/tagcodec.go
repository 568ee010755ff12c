package jamtis

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"

	"seraphis-core/cryptocore"
)

// ErrHintRejected is returned by TryDecipherAddressIndex when the caller
// asked for the plain (non-selfsend) path and the deciphered hint is
// non-zero (spec §4.3: "fails only if the hint byte(s) are rejected as 'not
// zero' when the caller asked for a plain path").
var ErrHintRejected = errors.New("jamtis: deciphered address tag hint is not zero on plain path")

// addressTagKeystream derives a deterministic AES-CTR keystream of exactly
// RawAddressTagSize bytes from s_ct. This is the module's choice of
// "length-preserving deterministic cipher keyed by s_ct" (spec §3.3, §9 Open
// Questions: the reference construction is an external primitive and is not
// available here, so cross-compatibility with any other implementation is
// not claimed — see DESIGN.md). AES-CTR with a fixed zero counter is
// deterministic and length-preserving for any plaintext width, which is all
// the spec requires of it.
func addressTagKeystream(sct [32]byte) ([]byte, error) {
	block, err := aes.NewCipher(sct[:16])
	if err != nil {
		return nil, err
	}
	var iv [16]byte
	stream := cipher.NewCTR(block, iv[:])
	keystream := make([]byte, RawAddressTagSize)
	stream.XORKeyStream(keystream, make([]byte, RawAddressTagSize))
	return keystream, nil
}

// CipherAddressIndex computes cipher_tag = Cipher(s_ct, j ‖ hint) (spec §3.3,
// §4.3).
func CipherAddressIndex(sct [32]byte, j AddressIndex, hint AddressTagHint) (CipherTag, error) {
	keystream, err := addressTagKeystream(sct)
	if err != nil {
		return CipherTag{}, err
	}
	var raw [RawAddressTagSize]byte
	copy(raw[:AddressIndexSize], j[:])
	copy(raw[AddressIndexSize:], hint[:])

	var out CipherTag
	for i := range out {
		out[i] = raw[i] ^ keystream[i]
	}
	return out, nil
}

// TryDecipherAddressIndex reverses CipherAddressIndex, returning (j, hint).
// When plainOnly is true, it fails if the deciphered hint is non-zero (spec
// §4.3), matching the non-selfsend path's strict requirement.
func TryDecipherAddressIndex(sct [32]byte, tag CipherTag, plainOnly bool) (AddressIndex, AddressTagHint, error) {
	keystream, err := addressTagKeystream(sct)
	if err != nil {
		return AddressIndex{}, AddressTagHint{}, err
	}
	var raw [RawAddressTagSize]byte
	for i := range raw {
		raw[i] = tag[i] ^ keystream[i]
	}
	var j AddressIndex
	var hint AddressTagHint
	copy(j[:], raw[:AddressIndexSize])
	copy(hint[:], raw[AddressIndexSize:])

	if plainOnly && !hint.IsZero() {
		return AddressIndex{}, AddressTagHint{}, ErrHintRejected
	}
	return j, hint, nil
}

// EncryptAddressTag computes encrypted_address_tag = cipher_tag ⊕ H("enc",
// q, Ko) (spec §3.3). The XOR is its own inverse, so decryption reuses this
// function.
func EncryptAddressTag(q [32]byte, ko cryptocore.Point, tag CipherTag) EncryptedAddressTag {
	mask := cryptocore.HashToBytesN("enc", RawAddressTagSize, q[:], ko.Bytes())
	var out EncryptedAddressTag
	for i := range out {
		out[i] = tag[i] ^ mask[i]
	}
	return out
}

// DecryptAddressTag reverses EncryptAddressTag.
func DecryptAddressTag(q [32]byte, ko cryptocore.Point, enc EncryptedAddressTag) CipherTag {
	mask := cryptocore.HashToBytesN("enc", RawAddressTagSize, q[:], ko.Bytes())
	var out CipherTag
	for i := range out {
		out[i] = enc[i] ^ mask[i]
	}
	return out
}

// ViewTag computes view_tag(xK_d, Ko) = H_1("vt", xK_d, Ko): a 1-byte filter
// a receiver checks before doing any heavier crypto (spec §4.3).
func ViewTag(xKd [32]byte, ko cryptocore.Point) byte {
	return cryptocore.HashToByte1("vt", xKd[:], ko.Bytes())
}
