package enotestore

import (
	"testing"

	"seraphis-core/cryptocore"
	"seraphis-core/jamtis"
	"seraphis-core/scanning"
)

func buildWallet(t *testing.T) *jamtis.KeyHierarchy {
	t.Helper()
	h, err := jamtis.NewMasterWallet(cryptocore.RandomScalar())
	if err != nil {
		t.Fatalf("NewMasterWallet: %v", err)
	}
	return h
}

// buildPlainEnote plays the sender's role for a plain payment to dest,
// mirroring jamtis's own scan-ladder test helpers.
func buildPlainEnote(t *testing.T, dest jamtis.Destination, inputCtx jamtis.InputContext, amount uint64) jamtis.StandardEnote {
	t.Helper()
	xr := cryptocore.RandomX25519Scalar()
	dh, err := jamtis.ComputeEphemeralDH(xr, dest)
	if err != nil {
		t.Fatalf("ComputeEphemeralDH: %v", err)
	}
	q := jamtis.ComputeQPlain(dh.XKd, dh.XKe, inputCtx)
	y, encoded := jamtis.EncodePlainAmount(amount, q, dh.XKe)
	c := jamtis.Commitment(amount, y)
	ko := jamtis.BuildOnetimeAddress(q, c, dest.K1)
	encTag := jamtis.EncryptAddressTag(q, ko, dest.CipherTag)
	viewTag := jamtis.ViewTag(dh.XKd, ko)
	return jamtis.StandardEnote{
		Ko: ko, C: c, EncodedAmount: encoded, ViewTag: viewTag,
		EncryptedTag: encTag, EphemeralPubkey: dh.XKe, InputContext: inputCtx,
	}
}

func basicRecordFor(t *testing.T, h *jamtis.KeyHierarchy, enote jamtis.StandardEnote) jamtis.BasicRecord {
	t.Helper()
	basic, ok, err := jamtis.TryGetBasicRecord(enote, h.XkFr, nil)
	if err != nil {
		t.Fatalf("TryGetBasicRecord: %v", err)
	}
	if !ok {
		t.Fatal("TryGetBasicRecord: expected a view-tag match")
	}
	return *basic
}

func ledgerChunkOf(t *testing.T, startHeight int64, txID scanning.TxID, records ...jamtis.BasicRecord) *scanning.LedgerChunk {
	t.Helper()
	return &scanning.LedgerChunk{
		StartHeight: startHeight,
		EndHeight:   startHeight,
		BlockIDs:    []scanning.BlockID{{byte(startHeight)}},
		BasicRecordsPerTx: map[scanning.TxID][]jamtis.BasicRecord{
			txID: records,
		},
	}
}

func TestConsumeOnchainChunkRecoversSpFullRecord(t *testing.T) {
	h := buildWallet(t)
	store := New(h, 0)

	dest, err := h.GenerateAddress(jamtis.AddressIndex{1}, jamtis.AddressTagHint{})
	if err != nil {
		t.Fatalf("GenerateAddress: %v", err)
	}
	const amount = uint64(1000)
	enote := buildPlainEnote(t, dest, jamtis.InputContext{1}, amount)
	basic := basicRecordFor(t, h, enote)

	chunk := ledgerChunkOf(t, 10, scanning.TxID{1}, basic)
	if err := store.ConsumeOnchainChunk(chunk); err != nil {
		t.Fatalf("ConsumeOnchainChunk: %v", err)
	}

	if len(store.spFull) != 1 {
		t.Fatalf("expected exactly one recovered seraphis record, got %d", len(store.spFull))
	}
	for _, rec := range store.spFull {
		if rec.Amount != amount {
			t.Fatalf("amount mismatch: got %d want %d", rec.Amount, amount)
		}
		if rec.Origin.Status != OriginOnchain || rec.Origin.BlockHeight != 10 {
			t.Fatalf("unexpected origin context: %+v", rec.Origin)
		}
		if rec.Spent.Status != Unspent {
			t.Fatalf("expected an unspent record, got %+v", rec.Spent)
		}
	}
}

func TestMarkSpentViaContextualKeyImage(t *testing.T) {
	h := buildWallet(t)
	store := New(h, 0)

	dest, err := h.GenerateAddress(jamtis.AddressIndex{2}, jamtis.AddressTagHint{})
	if err != nil {
		t.Fatalf("GenerateAddress: %v", err)
	}
	enote := buildPlainEnote(t, dest, jamtis.InputContext{2}, 500)
	basic := basicRecordFor(t, h, enote)

	chunk := ledgerChunkOf(t, 5, scanning.TxID{2}, basic)
	if err := store.ConsumeOnchainChunk(chunk); err != nil {
		t.Fatalf("ConsumeOnchainChunk: %v", err)
	}
	var ki cryptocore.Point
	for _, rec := range store.spFull {
		ki = rec.KeyImage
	}

	spendChunk := &scanning.LedgerChunk{
		StartHeight:       6,
		EndHeight:         6,
		BlockIDs:          []scanning.BlockID{{6}},
		BasicRecordsPerTx: map[scanning.TxID][]jamtis.BasicRecord{{3}: nil},
		ContextualKeyImages: []scanning.ContextualKeyImage{
			{TxID: scanning.TxID{3}, KeyImage: ki},
		},
	}
	if err := store.ConsumeOnchainChunk(spendChunk); err != nil {
		t.Fatalf("ConsumeOnchainChunk (spend): %v", err)
	}

	for _, rec := range store.spFull {
		if rec.Spent.Status != SpentOnchain || rec.Spent.BlockHeight != 6 {
			t.Fatalf("expected the record to be marked spent at height 6, got %+v", rec.Spent)
		}
	}
}

func TestReorgRepairDropsDivergedRecords(t *testing.T) {
	h := buildWallet(t)
	store := New(h, 0)

	dest, err := h.GenerateAddress(jamtis.AddressIndex{3}, jamtis.AddressTagHint{})
	if err != nil {
		t.Fatalf("GenerateAddress: %v", err)
	}
	enote := buildPlainEnote(t, dest, jamtis.InputContext{3}, 42)
	basic := basicRecordFor(t, h, enote)

	chunk := ledgerChunkOf(t, 20, scanning.TxID{4}, basic)
	if err := store.ConsumeOnchainChunk(chunk); err != nil {
		t.Fatalf("ConsumeOnchainChunk: %v", err)
	}
	if len(store.spFull) != 1 {
		t.Fatalf("expected one record before reorg, got %d", len(store.spFull))
	}
	store.chainTop = 20

	// A reorg that diverges at height 20 must drop the record whose origin
	// sits at or past that height.
	store.reorgRepair(20)

	if len(store.spFull) != 0 {
		t.Fatalf("expected reorg to drop the diverged record, got %d remaining", len(store.spFull))
	}
}

func TestBalanceExcludesLockedByDefaultSpendableAge(t *testing.T) {
	h := buildWallet(t)
	store := New(h, 0)

	dest, err := h.GenerateAddress(jamtis.AddressIndex{4}, jamtis.AddressTagHint{})
	if err != nil {
		t.Fatalf("GenerateAddress: %v", err)
	}
	enote := buildPlainEnote(t, dest, jamtis.InputContext{4}, 900)
	basic := basicRecordFor(t, h, enote)

	chunk := ledgerChunkOf(t, 100, scanning.TxID{5}, basic)
	if err := store.ConsumeOnchainChunk(chunk); err != nil {
		t.Fatalf("ConsumeOnchainChunk: %v", err)
	}

	req := BalanceRequest{
		OriginStatuses:      []OriginStatus{OriginOnchain},
		SpentStatuses:       []SpentStatus{Unspent},
		Exclusions:          ExcludeLedgerLocked,
		CurrentHeight:       100,
		DefaultSpendableAge: 10,
	}
	if got := store.Balance(req); got != 0 {
		t.Fatalf("expected locked balance to be excluded, got %d", got)
	}

	req.CurrentHeight = 111
	if got := store.Balance(req); got != 900 {
		t.Fatalf("expected balance 900 once spendable, got %d", got)
	}
}

func TestLegacyBalanceHighestAmountWinsAmongDuplicates(t *testing.T) {
	h := buildWallet(t)
	store := New(h, 0)

	onetime := cryptocore.GenG().ScalarMul(cryptocore.RandomScalar())
	idLow := ComputeLegacyIdentifier(onetime, 10)
	idHigh := ComputeLegacyIdentifier(onetime, 100)

	store.addLegacyIntermediate(idLow, LegacyIntermediateRecord{
		OnetimeAddress: onetime, Amount: 10,
		Origin: OriginContext{Status: OriginOnchain, BlockHeight: 1},
	})
	store.addLegacyIntermediate(idHigh, LegacyIntermediateRecord{
		OnetimeAddress: onetime, Amount: 100,
		Origin: OriginContext{Status: OriginOnchain, BlockHeight: 1},
	})
	ki := cryptocore.GenG().ScalarMul(cryptocore.RandomScalar())
	store.upgradeLegacyIntermediate(idLow, store.legacyIntermediate[idLow], ki)
	store.upgradeLegacyIntermediate(idHigh, store.legacyIntermediate[idHigh], ki)

	req := BalanceRequest{
		OriginStatuses: []OriginStatus{OriginOnchain},
		SpentStatuses:  []SpentStatus{Unspent},
		CurrentHeight:  100,
	}
	if got := store.Balance(req); got != 100 {
		t.Fatalf("expected the higher-amount duplicate to win, got %d", got)
	}
}

func TestImportLegacyKeyImageReconcilesSpendState(t *testing.T) {
	h := buildWallet(t)
	store := New(h, 0)

	onetime := cryptocore.GenG().ScalarMul(cryptocore.RandomScalar())
	id := ComputeLegacyIdentifier(onetime, 55)
	store.addLegacyIntermediate(id, LegacyIntermediateRecord{
		OnetimeAddress: onetime, Amount: 55,
		Origin: OriginContext{Status: OriginOnchain, BlockHeight: 3},
	})

	ki := cryptocore.GenG().ScalarMul(cryptocore.RandomScalar())
	validator := fakeValidator{spent: true, height: 9}
	store.ImportLegacyKeyImage(onetime, ki, validator)

	full, ok := store.legacyFull[id]
	if !ok {
		t.Fatal("expected the intermediate record to be promoted to full")
	}
	if full.Spent.Status != SpentOnchain || full.Spent.BlockHeight != 9 {
		t.Fatalf("expected the validator's verdict to be applied, got %+v", full.Spent)
	}
}

type fakeValidator struct {
	spent  bool
	height int64
}

func (v fakeValidator) ValidateLegacyKeyImage(cryptocore.Point) (bool, int64) {
	return v.spent, v.height
}

func TestSnapshotRoundTrip(t *testing.T) {
	h := buildWallet(t)
	store := New(h, 0)

	dest, err := h.GenerateAddress(jamtis.AddressIndex{7}, jamtis.AddressTagHint{})
	if err != nil {
		t.Fatalf("GenerateAddress: %v", err)
	}
	enote := buildPlainEnote(t, dest, jamtis.InputContext{7}, 321)
	basic := basicRecordFor(t, h, enote)
	chunk := ledgerChunkOf(t, 50, scanning.TxID{6}, basic)
	if err := store.ConsumeOnchainChunk(chunk); err != nil {
		t.Fatalf("ConsumeOnchainChunk: %v", err)
	}
	store.EndSession(50, scanning.BlockID{50}, nil)

	path := t.TempDir() + "/snapshot.json.gz"
	if err := store.SaveSnapshot(path); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	restored := New(h, 0)
	if err := restored.LoadSnapshot(path); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}

	if len(restored.spFull) != len(store.spFull) {
		t.Fatalf("sp_full count mismatch: got %d want %d", len(restored.spFull), len(store.spFull))
	}
	req := BalanceRequest{
		OriginStatuses: []OriginStatus{OriginOnchain},
		SpentStatuses:  []SpentStatus{Unspent},
		CurrentHeight:  50,
	}
	if got, want := restored.Balance(req), store.Balance(req); got != want {
		t.Fatalf("restored balance mismatch: got %d want %d", got, want)
	}
}
