package composition

import (
	"errors"
	"sync"

	"seraphis-core/cryptocore"
)

// ErrNonceReused is returned when a nonce pair already recorded under one
// filter is recorded again under a different filter for the same proof
// message and key (spec §4.7.1: "reuse of the same nonce across different
// filters is rejected").
var ErrNonceReused = errors.New("composition: nonce pair already used under a different filter")

// ErrNonceMismatch is returned when a (message, key, filter) slot already
// holds a different nonce pair than the one being recorded — a corrupted or
// conflicting record, since reuse of the *same* filter/message is only
// allowed when the nonce pair is identical (spec §4.7.1: "reuse across same
// filter/message is allowed and idempotent").
var ErrNonceMismatch = errors.New("composition: filter slot already holds a different nonce pair")

// Filter is a bitmask over a fixed signer index space: bit i set means
// signer i participates. Grounded on
// original_source/src/multisig/multisig_signer_set_filter.h's
// signer_set_filter bitmask representation.
type Filter uint64

// FilterFromIndices builds a Filter from a set of signer indices (each must
// be < 64).
func FilterFromIndices(indices ...int) Filter {
	var f Filter
	for _, i := range indices {
		f |= 1 << uint(i)
	}
	return f
}

// Contains reports whether signer index i participates in f.
func (f Filter) Contains(i int) bool {
	return f&(1<<uint(i)) != 0
}

// PopCount returns the number of signers f names.
func (f Filter) PopCount() int {
	n := 0
	for x := uint64(f); x != 0; x &= x - 1 {
		n++
	}
	return n
}

// EnumerateFilters lists every subset of availableSigners of exactly size
// threshold that contains localSigner — "every subset of t signers that
// contains the local signer is a potential 'filter'" (spec §4.7.1). The
// expected count is C(len(availableSigners)-1, threshold-1) (spec §4.7.2),
// since the local signer's slot is fixed and the rest are drawn from the
// remaining available signers.
func EnumerateFilters(localSigner int, availableSigners []int, threshold int) []Filter {
	var out []Filter
	rest := make([]int, 0, len(availableSigners))
	hasLocal := false
	for _, s := range availableSigners {
		if s == localSigner {
			hasLocal = true
			continue
		}
		rest = append(rest, s)
	}
	if !hasLocal || threshold < 1 {
		return nil
	}
	need := threshold - 1
	if need > len(rest) {
		return nil
	}

	var combine func(start int, chosen []int)
	combine = func(start int, chosen []int) {
		if len(chosen) == need {
			idx := append([]int{localSigner}, chosen...)
			out = append(out, FilterFromIndices(idx...))
			return
		}
		for i := start; i < len(rest); i++ {
			combine(i+1, append(chosen, rest[i]))
		}
	}
	combine(0, nil)
	return out
}

type noncePair struct {
	Alpha1 cryptocore.Scalar
	Alpha2 cryptocore.Scalar
}

// NonceRecordKey identifies one signer's nonce slot for a given proof
// message, proof key and signer-set filter (spec §4.7.2: "map
// (proof_message, proof_key, filter) → (α₁, α₂)").
type NonceRecordKey struct {
	ProofMessage string
	ProofKey     [32]byte
	Filter       Filter
}

type nonceUseKey struct {
	ProofMessage string
	ProofKey     [32]byte
	Alpha1       [32]byte
	Alpha2       [32]byte
}

func pointKey(p cryptocore.Point) [32]byte {
	var b [32]byte
	copy(b[:], p.Bytes())
	return b
}

func scalarKey(s cryptocore.Scalar) [32]byte {
	var b [32]byte
	copy(b[:], s.Bytes())
	return b
}

// NonceRecord is the per-signer map of outstanding KI-nonce pairs, keyed by
// which proof and which signer-set filter they belong to (spec §4.7.2).
type NonceRecord struct {
	mu      sync.Mutex
	entries map[NonceRecordKey]noncePair
	byNonce map[nonceUseKey]Filter
}

// NewNonceRecord returns an empty nonce record.
func NewNonceRecord() *NonceRecord {
	return &NonceRecord{
		entries: make(map[NonceRecordKey]noncePair),
		byNonce: make(map[nonceUseKey]Filter),
	}
}

// Record stores a nonce pair for (message, k, filter). It is idempotent for
// a repeated call with the same filter and an identical nonce pair, and
// rejects reuse of the same nonce pair under a different filter.
func (nr *NonceRecord) Record(message []byte, k cryptocore.Point, filter Filter, alpha1, alpha2 cryptocore.Scalar) error {
	nr.mu.Lock()
	defer nr.mu.Unlock()

	rk := NonceRecordKey{ProofMessage: string(message), ProofKey: pointKey(k), Filter: filter}
	uk := nonceUseKey{
		ProofMessage: string(message),
		ProofKey:     pointKey(k),
		Alpha1:       scalarKey(alpha1),
		Alpha2:       scalarKey(alpha2),
	}

	if existing, ok := nr.entries[rk]; ok {
		if !existing.Alpha1.Equal(alpha1) || !existing.Alpha2.Equal(alpha2) {
			return ErrNonceMismatch
		}
		return nil
	}
	if usedFilter, ok := nr.byNonce[uk]; ok && usedFilter != filter {
		return ErrNonceReused
	}

	nr.entries[rk] = noncePair{Alpha1: alpha1, Alpha2: alpha2}
	nr.byNonce[uk] = filter
	return nil
}

// Lookup returns the nonce pair recorded for (message, k, filter), if any.
func (nr *NonceRecord) Lookup(message []byte, k cryptocore.Point, filter Filter) (alpha1, alpha2 cryptocore.Scalar, ok bool) {
	nr.mu.Lock()
	defer nr.mu.Unlock()
	rk := NonceRecordKey{ProofMessage: string(message), ProofKey: pointKey(k), Filter: filter}
	p, ok := nr.entries[rk]
	return p.Alpha1, p.Alpha2, ok
}

// Forget removes the nonce slot for (message, k, filter), e.g. once a
// partial signature for that filter has been produced.
func (nr *NonceRecord) Forget(message []byte, k cryptocore.Point, filter Filter) {
	nr.mu.Lock()
	defer nr.mu.Unlock()
	delete(nr.entries, NonceRecordKey{ProofMessage: string(message), ProofKey: pointKey(k), Filter: filter})
}

// AggregateFilters calls attempt once for every filter in filters, in order;
// collecting the nonce tuples of the participating signers is up to attempt.
// It does not itself check a filter against the local signer or the signers
// available. A filter whose
// attempt returns an error is rolled back (its result is simply omitted) and
// counted in the returned abort count; other filters continue (spec
// §4.7.2: "On any exception during a filter attempt, that filter is rolled
// back and counted as aborted; other filters continue").
func AggregateFilters(filters []Filter, attempt func(f Filter) (*PartialSig, error)) (sigs []*PartialSig, aborted int) {
	for _, f := range filters {
		sig, err := attempt(f)
		if err != nil {
			aborted++
			continue
		}
		sigs = append(sigs, sig)
	}
	return sigs, aborted
}
