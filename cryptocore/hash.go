package cryptocore

// This file implements the labelled hash functions spec.md names generically
// as H, H_n, H_8, H_1, H_32: all are domain-separated transcript hashes, just
// truncated or reduced to the width the caller needs.

// HashToScalar computes H_n(label, fields...): a domain-separated hash
// reduced mod the scalar field L. Used for key derivations (§3.2), enote-view
// secret components (§4.6 step 9), and blinding factors (§4.5).
func HashToScalar(label string, fields ...[]byte) Scalar {
	tr := NewTranscript("jamtis-hash-to-scalar")
	tr.AppendBytes("label", []byte(label))
	for i, f := range fields {
		tr.AppendBytes(fieldName(i), f)
	}
	return tr.ChallengeScalar()
}

// HashToBytes32 computes H_32(label, fields...): a 32-byte domain-separated
// digest. Used for sender-receiver secrets q (§4.4) and the key-hierarchy
// and address-generation secrets derived in jamtis (§3.2).
func HashToBytes32(label string, fields ...[]byte) [32]byte {
	tr := NewTranscript("jamtis-hash-32")
	tr.AppendBytes("label", []byte(label))
	for i, f := range fields {
		tr.AppendBytes(fieldName(i), f)
	}
	d := tr.Digest()
	var out [32]byte
	copy(out[:], d[:32])
	return out
}

// HashToBytes8 computes H_8(label, fields...): an 8-byte digest used to mask
// encoded amounts (§4.5).
func HashToBytes8(label string, fields ...[]byte) [8]byte {
	tr := NewTranscript("jamtis-hash-8")
	tr.AppendBytes("label", []byte(label))
	for i, f := range fields {
		tr.AppendBytes(fieldName(i), f)
	}
	d := tr.Digest()
	var out [8]byte
	copy(out[:], d[:8])
	return out
}

// HashToByte1 computes H_1(label, fields...): a single byte, used for the
// view-tag filter (§4.3).
func HashToByte1(label string, fields ...[]byte) byte {
	tr := NewTranscript("jamtis-hash-1")
	tr.AppendBytes("label", []byte(label))
	for i, f := range fields {
		tr.AppendBytes(fieldName(i), f)
	}
	d := tr.Digest()
	return d[0]
}

// HashToBytesN computes a domain-separated digest of exactly n bytes, n<=64,
// used for address-tag encryption masks (§3.3) which need an 18-byte pad
// (jamtis.RawAddressTagSize).
func HashToBytesN(label string, n int, fields ...[]byte) []byte {
	if n < 0 || n > 64 {
		panic("cryptocore: HashToBytesN width out of range")
	}
	tr := NewTranscript("jamtis-hash-n")
	tr.AppendBytes("label", []byte(label))
	for i, f := range fields {
		tr.AppendBytes(fieldName(i), f)
	}
	d := tr.Digest()
	out := make([]byte, n)
	copy(out, d[:n])
	return out
}

func fieldName(i int) string {
	names := [...]string{"f0", "f1", "f2", "f3", "f4", "f5", "f6", "f7", "f8", "f9"}
	if i < len(names) {
		return names[i]
	}
	return "fN"
}
