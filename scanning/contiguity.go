// Package scanning implements the chunked, reorg-tolerant ledger refresh
// pipeline (spec §4.8): a chain contiguity check, ledger/non-ledger chunk
// types, and the refresh algorithm that drives a ScanContext against an
// EnoteStoreUpdater. It is grounded on the same chunked-refresh shape as
// original_source's enote_scanning.cpp / enote_scanning_context.h, adapted
// into this module's Go idiom.
package scanning

// BlockID identifies a block; comparisons are by value.
type BlockID [32]byte

// ChainContiguityMarker names a point in a chain the scanner has reached,
// optionally pinned to a specific block id (spec §4.8.1).
type ChainContiguityMarker struct {
	Height  int64
	BlockID *BlockID // nil means unspecified
}

// Contiguous reports whether markers a and b are consistent with each other
// describing the same chain (spec §4.8.1). The rule is symmetric by
// construction: it checks both "a is unspecified and b's height reaches
// it" and the mirror image, plus the equal-height case.
func Contiguous(a, b ChainContiguityMarker) bool {
	if a.BlockID == nil && b.Height <= a.Height {
		return true
	}
	if b.BlockID == nil && a.Height <= b.Height {
		return true
	}
	if a.Height == b.Height {
		if a.BlockID == nil || b.BlockID == nil {
			return true
		}
		return *a.BlockID == *b.BlockID
	}
	return false
}
