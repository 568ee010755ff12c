// Package enotestore keeps the contextual enote records a wallet has
// recovered from the ledger: seraphis full records keyed by key image,
// legacy intermediate/full records keyed by a legacy identifier, and the
// cross-tracker of legacy key images observed inside seraphis transactions
// (spec §4.9). It implements scanning.EnoteStoreUpdater so scanning.Refresh
// can drive it directly, mirroring the logging and map-of-records style of
// the teacher's core/ledger.go. Store holds no mutex of its own: its maps are
// not guarded against concurrent use.
package enotestore

import (
	"sort"

	"github.com/sirupsen/logrus"

	"seraphis-core/cryptocore"
	"seraphis-core/jamtis"
	"seraphis-core/scanning"
)

var log = logrus.New()

// SetLogger overrides the package logger, mirroring core/wallet.go's
// SetWalletLogger pattern.
func SetLogger(l *logrus.Logger) { log = l }

// OriginStatus classifies where a contextual record's enote was observed
// (spec §3.7).
type OriginStatus int

const (
	OriginOffchain OriginStatus = iota
	OriginUnconfirmed
	OriginOnchain
)

// SpentStatus classifies a contextual record's spend state (spec §3.7).
type SpentStatus int

const (
	Unspent SpentStatus = iota
	SpentOffchain
	SpentUnconfirmed
	SpentOnchain
)

// OriginContext records where an enote was first observed.
type OriginContext struct {
	Status      OriginStatus
	BlockHeight int64
	TxID        scanning.TxID
}

// SpentContext records an enote's current spend state.
type SpentContext struct {
	Status      SpentStatus
	BlockHeight int64
	TxID        scanning.TxID
}

// SpFullRecord is the store's persisted view of a recovered seraphis full
// record: balance- and spend-tracking fields only. The enote-view secret
// scalars (Kg/Kx/Ku) and the original EnoteSource live in jamtis.FullRecord
// but are deliberately not kept here — jamtis.EnoteSource is a closed sum
// type whose methods are unexported, so nothing outside jamtis can
// reconstruct one from serialized bytes, and spec §5 wipes secret scalars
// once they are no longer needed rather than retaining them at rest.
type SpFullRecord struct {
	KeyImage       cryptocore.Point
	OnetimeAddress cryptocore.Point
	Amount         uint64
	J              jamtis.AddressIndex
	EnoteType      jamtis.EnoteType
	Origin         OriginContext
	Spent          SpentContext
}

type keyImageKey [32]byte

func toKeyImageKey(p cryptocore.Point) keyImageKey {
	var k keyImageKey
	copy(k[:], p.Bytes())
	return k
}

// Store holds every map spec §4.9 names plus the block-id history the
// scanning package's EnoteStoreUpdater contract needs.
type Store struct {
	wallet *jamtis.KeyHierarchy

	legacyIntermediate map[LegacyIdentifier]LegacyIntermediateRecord
	legacyFull         map[LegacyIdentifier]LegacyFullRecord
	legacyByOnetime    map[onetimeKey]map[LegacyIdentifier]struct{}

	spFull map[keyImageKey]SpFullRecord

	legacyKeyImagesInSpTxs map[keyImageKey]SpentContext

	refreshHeight int64
	knownBlocks   map[int64]scanning.BlockID
	chainTop      int64
}

// New creates an empty store scanning on behalf of wallet, starting at
// refreshHeight.
func New(wallet *jamtis.KeyHierarchy, refreshHeight int64) *Store {
	return &Store{
		wallet:                 wallet,
		legacyIntermediate:     make(map[LegacyIdentifier]LegacyIntermediateRecord),
		legacyFull:             make(map[LegacyIdentifier]LegacyFullRecord),
		legacyByOnetime:        make(map[onetimeKey]map[LegacyIdentifier]struct{}),
		spFull:                 make(map[keyImageKey]SpFullRecord),
		legacyKeyImagesInSpTxs: make(map[keyImageKey]SpentContext),
		refreshHeight:          refreshHeight,
		knownBlocks:            make(map[int64]scanning.BlockID),
		chainTop:               refreshHeight - 1,
	}
}

// --- scanning.EnoteStoreUpdater ---

func (s *Store) RefreshHeight() int64     { return s.refreshHeight }
func (s *Store) DesiredFirstBlock() int64 { return s.refreshHeight }

func (s *Store) TryGetBlockID(height int64) (scanning.BlockID, bool) {
	id, ok := s.knownBlocks[height]
	return id, ok
}

func (s *Store) StartSession() {}

func (s *Store) ConsumeOnchainChunk(chunk *scanning.LedgerChunk) error {
	for txID, basics := range chunk.BasicRecordsPerTx {
		origin := OriginContext{Status: OriginOnchain, BlockHeight: chunk.StartHeight, TxID: txID}
		for _, basic := range basics {
			s.ingestSpBasic(basic, origin)
		}
	}
	for _, cki := range chunk.ContextualKeyImages {
		s.markSpent(cki.KeyImage, SpentContext{Status: SpentOnchain, BlockHeight: chunk.StartHeight, TxID: cki.TxID})
	}
	return nil
}

func (s *Store) ConsumeNonledgerChunk(chunk *scanning.NonLedgerChunk) error {
	for txID, basics := range chunk.BasicRecordsPerTx {
		origin := OriginContext{Status: OriginUnconfirmed, TxID: txID}
		for _, basic := range basics {
			s.ingestSpBasic(basic, origin)
		}
	}
	for _, cki := range chunk.ContextualKeyImages {
		s.markSpent(cki.KeyImage, SpentContext{Status: SpentUnconfirmed, TxID: cki.TxID})
	}
	return nil
}

func (s *Store) EndSession(alignmentHeight int64, alignmentBlockID scanning.BlockID, newBlockIDs []scanning.BlockID) {
	if alignmentHeight+1 <= s.chainTop {
		s.reorgRepair(alignmentHeight + 1)
		for h := alignmentHeight + 1; h <= s.chainTop; h++ {
			delete(s.knownBlocks, h)
		}
	}
	if alignmentHeight >= s.refreshHeight {
		s.knownBlocks[alignmentHeight] = alignmentBlockID
	}
	for i, id := range newBlockIDs {
		h := alignmentHeight + 1 + int64(i)
		s.knownBlocks[h] = id
	}
	if n := len(newBlockIDs); n > 0 {
		s.chainTop = alignmentHeight + int64(n)
	} else if alignmentHeight > s.chainTop {
		s.chainTop = alignmentHeight
	}
}

// ingestSpBasic runs the rest of the scan ladder (the chunk only carries
// BasicRecords; IntermediateRecord/FullRecord derivation needs the wallet's
// keys, which scanning deliberately never touches). A wallet below
// TierMaster can recover amount and address index but not a key image; since
// spec §4.9's map set has no "sp intermediate" table, such records are
// logged and dropped rather than invented a home for (see DESIGN.md).
func (s *Store) ingestSpBasic(basic jamtis.BasicRecord, origin OriginContext) {
	ir, ok, err := jamtis.TryGetIntermediateRecord(basic, s.wallet)
	if err != nil || !ok {
		return
	}
	fr, ok, err := jamtis.TryGetFullRecord(*ir, s.wallet)
	if err != nil {
		log.WithFields(logrus.Fields{"tx_id": origin.TxID, "reason": err}).
			Warn("enotestore: dropping seraphis intermediate record, store wallet lacks the master tier")
		return
	}
	if !ok {
		return
	}
	key := toKeyImageKey(fr.KeyImage)
	existing, has := s.spFull[key]
	spent := SpentContext{Status: Unspent}
	if has {
		spent = existing.Spent
	}
	if sc, ok := s.legacyKeyImagesInSpTxs[key]; ok {
		spent = sc
	}
	s.spFull[key] = SpFullRecord{
		KeyImage:       fr.KeyImage,
		OnetimeAddress: addressOf(basic.Enote),
		Amount:         fr.Intermediate.Amount,
		J:              fr.Intermediate.J,
		EnoteType:      fr.EnoteType,
		Origin:         origin,
		Spent:          spent,
	}
}

func (s *Store) markSpent(ki cryptocore.Point, spent SpentContext) {
	key := toKeyImageKey(ki)
	if rec, ok := s.spFull[key]; ok {
		rec.Spent = spent
		s.spFull[key] = rec
		return
	}
	// The key image belongs to an enote this wallet hasn't (yet) scanned as
	// its own seraphis output — likely a legacy key image spent inside a
	// seraphis tx (spec §4.9's legacy_key_images_in_sp_txs tracker).
	s.legacyKeyImagesInSpTxs[key] = spent
}

// reorgRepair implements spec §4.8.4: drop every record whose origin is
// on-chain at or past the new chain's divergence point, and clear spent
// contexts that pointed into the discarded range.
func (s *Store) reorgRepair(firstNewBlock int64) {
	for key, rec := range s.spFull {
		if rec.Origin.Status == OriginOnchain && rec.Origin.BlockHeight >= firstNewBlock {
			delete(s.spFull, key)
			continue
		}
		if rec.Spent.Status == SpentOnchain && rec.Spent.BlockHeight >= firstNewBlock {
			rec.Spent = SpentContext{Status: Unspent}
			s.spFull[key] = rec
		}
	}
	for key, sc := range s.legacyKeyImagesInSpTxs {
		if sc.Status == SpentOnchain && sc.BlockHeight >= firstNewBlock {
			delete(s.legacyKeyImagesInSpTxs, key)
		}
	}
	for id, rec := range s.legacyFull {
		if rec.Origin.Status == OriginOnchain && rec.Origin.BlockHeight >= firstNewBlock {
			s.removeLegacyFull(id)
			continue
		}
		if rec.Spent.Status == SpentOnchain && rec.Spent.BlockHeight >= firstNewBlock {
			rec.Spent = SpentContext{Status: Unspent}
			s.legacyFull[id] = rec
		}
	}
	for id, rec := range s.legacyIntermediate {
		if rec.Origin.Status == OriginOnchain && rec.Origin.BlockHeight >= firstNewBlock {
			s.removeLegacyIntermediate(id)
		}
	}
	s.reimportAuthoritativeKeyImages()
}

// reimportAuthoritativeKeyImages propagates a still-known key image across
// every surviving identifier sharing its onetime address, via the duplicate
// tracker (spec §4.9 "propagate the shared key image").
func (s *Store) reimportAuthoritativeKeyImages() {
	for onetime, ids := range s.legacyByOnetime {
		var ki *cryptocore.Point
		for id := range ids {
			if rec, ok := s.legacyFull[id]; ok {
				k := rec.KeyImage
				ki = &k
				break
			}
		}
		if ki == nil {
			continue
		}
		for id := range ids {
			if interm, ok := s.legacyIntermediate[id]; ok {
				s.upgradeLegacyIntermediate(id, interm, *ki)
			}
		}
		_ = onetime
	}
}

// BalanceRequest parameterises Balance (spec §4.9).
type BalanceRequest struct {
	OriginStatuses      []OriginStatus
	SpentStatuses       []SpentStatus
	Exclusions          BalanceExclusion
	CurrentHeight       int64
	DefaultSpendableAge int64
}

func containsOrigin(set []OriginStatus, v OriginStatus) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsSpent(set []SpentStatus, v SpentStatus) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func (s *Store) spendable(origin OriginContext, currentHeight, defaultSpendableAge int64) bool {
	if origin.Status != OriginOnchain {
		return true
	}
	age := defaultSpendableAge
	if age < 1 {
		age = 1
	}
	return currentHeight >= origin.BlockHeight+age
}

// Balance sums spendable seraphis and legacy record amounts matching req,
// counting only the highest-amount legacy record per onetime address among
// the requested origin set (spec §4.9's "highest amount wins" policy, see
// DESIGN.md).
func (s *Store) Balance(req BalanceRequest) uint64 {
	var total uint64
	for _, rec := range s.spFull {
		if !containsOrigin(req.OriginStatuses, rec.Origin.Status) {
			continue
		}
		if !containsSpent(req.SpentStatuses, rec.Spent.Status) {
			continue
		}
		if req.Exclusions.Has(ExcludeLedgerLocked) && !s.spendable(rec.Origin, req.CurrentHeight, req.DefaultSpendableAge) {
			continue
		}
		if req.Exclusions.Has(ExcludeOriginLedgerLocked) && rec.Origin.Status != OriginOnchain {
			continue
		}
		total += rec.Amount
	}

	bestByOnetime := make(map[onetimeKey]uint64)
	for id, rec := range s.legacyFull {
		if !containsOrigin(req.OriginStatuses, rec.Origin.Status) {
			continue
		}
		if !containsSpent(req.SpentStatuses, rec.Spent.Status) {
			continue
		}
		if req.Exclusions.Has(ExcludeLedgerLocked) && !s.legacySpendable(rec, req.CurrentHeight, req.DefaultSpendableAge) {
			continue
		}
		if req.Exclusions.Has(ExcludeOriginLedgerLocked) && rec.Origin.Status != OriginOnchain {
			continue
		}
		ot := onetimeKeyOf(rec.OnetimeAddress)
		if rec.Amount > bestByOnetime[ot] {
			bestByOnetime[ot] = rec.Amount
		}
		_ = id
	}
	for _, amt := range bestByOnetime {
		total += amt
	}
	return total
}

func (s *Store) legacySpendable(rec LegacyFullRecord, currentHeight, defaultSpendableAge int64) bool {
	if !s.spendable(rec.Origin, currentHeight, defaultSpendableAge) {
		return false
	}
	return currentHeight >= rec.UnlockHeight
}

// SortedKnownHeights returns the heights this store has a block id for, in
// ascending order; used only by tests and diagnostics.
func (s *Store) SortedKnownHeights() []int64 {
	out := make([]int64, 0, len(s.knownBlocks))
	for h := range s.knownBlocks {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
