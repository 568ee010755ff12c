package scanning

import (
	"testing"

	"seraphis-core/cryptocore"
	"seraphis-core/jamtis"
)

func TestValidateLedgerChunkRejectsInvertedRange(t *testing.T) {
	c := &LedgerChunk{StartHeight: 10, EndHeight: 9}
	if err := ValidateLedgerChunk(c); err != ErrInvalidChunkRange {
		t.Fatalf("expected ErrInvalidChunkRange, got %v", err)
	}
}

func TestValidateLedgerChunkRejectsOrphanKeyImage(t *testing.T) {
	tx := TxID{1}
	other := TxID{2}
	c := &LedgerChunk{
		StartHeight:       1,
		EndHeight:         1,
		BasicRecordsPerTx: map[TxID][]jamtis.BasicRecord{tx: {}},
		ContextualKeyImages: []ContextualKeyImage{
			{TxID: other, KeyImage: cryptocore.Identity()},
		},
	}
	if err := ValidateLedgerChunk(c); err != ErrMissingTxEntry {
		t.Fatalf("expected ErrMissingTxEntry, got %v", err)
	}
}

func TestValidateLedgerChunkAcceptsKeyImageWithEmptyTxEntry(t *testing.T) {
	tx := TxID{1}
	c := &LedgerChunk{
		StartHeight:       1,
		EndHeight:         2,
		BasicRecordsPerTx: map[TxID][]jamtis.BasicRecord{tx: {}},
		ContextualKeyImages: []ContextualKeyImage{
			{TxID: tx, KeyImage: cryptocore.Identity()},
		},
	}
	if err := ValidateLedgerChunk(c); err != nil {
		t.Fatalf("expected valid chunk, got %v", err)
	}
}

func TestValidateNonLedgerChunkSameInvariant(t *testing.T) {
	c := &NonLedgerChunk{
		BasicRecordsPerTx: map[TxID][]jamtis.BasicRecord{},
		ContextualKeyImages: []ContextualKeyImage{
			{TxID: TxID{9}, KeyImage: cryptocore.Identity()},
		},
	}
	if err := ValidateNonLedgerChunk(c); err != ErrMissingTxEntry {
		t.Fatalf("expected ErrMissingTxEntry, got %v", err)
	}
}

func TestLedgerChunkIsTerminal(t *testing.T) {
	empty := &LedgerChunk{StartHeight: 5, EndHeight: 5}
	if !empty.isTerminal() {
		t.Fatal("zero-height, zero-block chunk should be terminal")
	}
	nonEmpty := &LedgerChunk{StartHeight: 5, EndHeight: 6, BlockIDs: []BlockID{{1}}}
	if nonEmpty.isTerminal() {
		t.Fatal("chunk carrying blocks should not be terminal")
	}
}
