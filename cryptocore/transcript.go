package cryptocore

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// Transcript is a byte-oriented, append-only Fiat-Shamir transcript. Every
// field is length-prefixed so a sentence or field written once can never be
// confused with a different field written later (spec §4.1).
type Transcript struct {
	h *blake2bBuffer
}

// blake2bBuffer exists only so Transcript has one place to swap the
// underlying hash primitive; it is not exported.
type blake2bBuffer struct {
	state []byte
}

// NewTranscript starts a transcript with an explicit domain separator. Every
// proof message in the module begins with one; changing a domain label is a
// breaking protocol change (spec §6).
func NewTranscript(domain string) *Transcript {
	t := &Transcript{h: &blake2bBuffer{}}
	t.AppendBytes("domain", []byte(domain))
	return t
}

func (t *Transcript) appendLengthPrefixed(label string, data []byte) {
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(label)))
	t.h.state = append(t.h.state, lenBuf[:]...)
	t.h.state = append(t.h.state, []byte(label)...)
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(data)))
	t.h.state = append(t.h.state, lenBuf[:]...)
	t.h.state = append(t.h.state, data...)
}

// AppendBytes appends a labelled byte field.
func (t *Transcript) AppendBytes(label string, data []byte) *Transcript {
	t.appendLengthPrefixed(label, data)
	return t
}

// AppendPoint appends a labelled curve point.
func (t *Transcript) AppendPoint(label string, p Point) *Transcript {
	return t.AppendBytes(label, p.Bytes())
}

// AppendScalar appends a labelled scalar. Never call this with a secret
// scalar — transcripts are later hashed into public challenges and must not
// leak private key material (spec §5: "never log or transcript-append a
// private scalar").
func (t *Transcript) AppendScalar(label string, s Scalar) *Transcript {
	return t.AppendBytes(label, s.Bytes())
}

// Digest returns the 64-byte BLAKE2b-512 digest of everything appended so
// far, without consuming the transcript.
func (t *Transcript) Digest() [64]byte {
	h, err := blake2b.New512(nil)
	if err != nil {
		panic("cryptocore: blake2b.New512 with nil key cannot fail: " + err.Error())
	}
	h.Write(t.h.state)
	var out [64]byte
	copy(out[:], h.Sum(nil))
	return out
}

// ChallengeScalar reduces the transcript digest to a scalar mod L. This is
// the `c = H(...)` step of the composition proof (spec §4.7 step 4).
func (t *Transcript) ChallengeScalar() Scalar {
	return ScalarFromWideBytes(t.Digest())
}

// Clone returns an independent copy of the transcript so a prover can branch
// (e.g. appending different per-filter data in the multisig path) without
// mutating the shared prefix.
func (t *Transcript) Clone() *Transcript {
	cp := make([]byte, len(t.h.state))
	copy(cp, t.h.state)
	return &Transcript{h: &blake2bBuffer{state: cp}}
}
