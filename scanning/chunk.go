package scanning

import (
	"errors"

	"seraphis-core/cryptocore"
	"seraphis-core/jamtis"
)

// ErrMissingTxEntry is returned when a chunk's contextual key image list
// references a tx id that has no entry in basic_records_per_tx (spec §4.8.2
// invariant).
var ErrMissingTxEntry = errors.New("scanning: contextual key image references a tx absent from basic_records_per_tx")

// ErrInvalidChunkRange is returned when a ledger chunk's height range is
// malformed.
var ErrInvalidChunkRange = errors.New("scanning: chunk end_height precedes start_height")

// TxID identifies a transaction within a chunk.
type TxID [32]byte

// ContextualKeyImage pairs a key image with the tx it was observed in (spec
// §4.8.2).
type ContextualKeyImage struct {
	TxID     TxID
	KeyImage cryptocore.Point
}

// LedgerChunk is a contiguous range of on-chain blocks together with every
// basic record and key image scanning turned up in them (spec §4.8.2).
type LedgerChunk struct {
	StartHeight         int64
	EndHeight           int64
	PrefixBlockID       BlockID
	BlockIDs            []BlockID
	BasicRecordsPerTx   map[TxID][]jamtis.BasicRecord
	ContextualKeyImages []ContextualKeyImage
}

// NonLedgerChunk is the unconfirmed-pool counterpart of LedgerChunk: the
// same per-tx shape, without a block range (spec §4.8.2).
type NonLedgerChunk struct {
	BasicRecordsPerTx   map[TxID][]jamtis.BasicRecord
	ContextualKeyImages []ContextualKeyImage
}

func validateKeyImageInvariant(byTx map[TxID][]jamtis.BasicRecord, keyImages []ContextualKeyImage) error {
	for _, ki := range keyImages {
		if _, ok := byTx[ki.TxID]; !ok {
			return ErrMissingTxEntry
		}
	}
	return nil
}

// ValidateLedgerChunk checks chunk-level semantic invariants (spec §4.8.2):
// a sane height range, and every contextual key image's tx present as a
// (possibly empty) entry in basic_records_per_tx.
func ValidateLedgerChunk(c *LedgerChunk) error {
	if c.EndHeight < c.StartHeight {
		return ErrInvalidChunkRange
	}
	return validateKeyImageInvariant(c.BasicRecordsPerTx, c.ContextualKeyImages)
}

// ValidateNonLedgerChunk checks the same key-image/tx invariant for an
// unconfirmed-pool chunk.
func ValidateNonLedgerChunk(c *NonLedgerChunk) error {
	return validateKeyImageInvariant(c.BasicRecordsPerTx, c.ContextualKeyImages)
}

// isTerminal reports whether a ledger chunk is the empty chunk a
// ScanContext yields once it reaches chain top (spec §4.8.3 step 4).
func (c *LedgerChunk) isTerminal() bool {
	return len(c.BlockIDs) == 0 && c.StartHeight == c.EndHeight
}
