package scanning

import "seraphis-core/cryptocore"

// LegacyEnoteRef is one entry of a legacy ring-signature reference set: a
// onetime address paired with its commitment (spec §6 LedgerView
// "get_reference_set").
type LegacyEnoteRef struct {
	Ko cryptocore.Point
	C  cryptocore.Point
}

// LedgerView is the minimal ledger surface the scanner and its callers
// consume; the module never assumes a concrete storage layout, RPC
// transport, or block-production model (spec §6).
type LedgerView interface {
	MaxLegacyEnoteIndex() uint64
	GetReferenceSet(indices []uint64) ([]LegacyEnoteRef, error)
	TryAddTransactionSp(tx []byte) bool
	LinkingTagExists(ki cryptocore.Point) bool
	ChainTop() (height int64, blockID BlockID)
}

// ScanContext produces ledger/non-ledger chunks sequentially. Once Begin is
// called, returned chunks must be strictly contiguous, and every object in
// one chunk must reflect the same ledger snapshot (spec §6).
type ScanContext interface {
	Begin(startHeight int64, maxChunkSize int) error
	GetOnchainChunk() (*LedgerChunk, error)
	TryGetUnconfirmedChunk() (*NonLedgerChunk, bool, error)
	Terminate()
}

// EnoteStoreUpdater is the refresh loop's view of the enote store being
// updated: where it last left off, and the hooks to consume new chunks and
// commit the outcome of a session (spec §6).
type EnoteStoreUpdater interface {
	RefreshHeight() int64
	DesiredFirstBlock() int64
	TryGetBlockID(height int64) (BlockID, bool)
	StartSession()
	ConsumeOnchainChunk(chunk *LedgerChunk) error
	ConsumeNonledgerChunk(chunk *NonLedgerChunk) error
	EndSession(alignmentHeight int64, alignmentBlockID BlockID, newBlockIDs []BlockID)
}
