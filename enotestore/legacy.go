package enotestore

import (
	"seraphis-core/cryptocore"
)

// onetimeKey is the map key form of a legacy onetime address, used both by
// the duplicate tracker and by the "highest amount wins" balance policy.
type onetimeKey [32]byte

func onetimeKeyOf(p cryptocore.Point) onetimeKey {
	var k onetimeKey
	copy(k[:], p.Bytes())
	return k
}

// LegacyIdentifier names one legacy record independent of which duplicate
// copy of it a reorg-exposed re-scan produced: H("id", onetime_address,
// amount) (spec §4.9).
type LegacyIdentifier [32]byte

// ComputeLegacyIdentifier derives a LegacyIdentifier the way every other
// domain-separated hash in this module is derived, via cryptocore's
// Fiat-Shamir transcript rather than a bespoke hash call.
func ComputeLegacyIdentifier(onetimeAddress cryptocore.Point, amount uint64) LegacyIdentifier {
	tr := cryptocore.NewTranscript("jamtis_legacy_identifier")
	tr.AppendPoint("onetime_address", onetimeAddress)
	tr.AppendScalar("amount", cryptocore.ScalarFromUint64(amount))
	digest := tr.Digest()
	var id LegacyIdentifier
	copy(id[:], digest[:32])
	return id
}

// LegacyIntermediateRecord is the amount-and-origin-only legacy record (spec
// §4.9): a legacy enote recovered from a view-key-only scan, before its key
// image is known.
type LegacyIntermediateRecord struct {
	OnetimeAddress cryptocore.Point
	Amount         uint64
	Origin         OriginContext
}

// LegacyFullRecord adds the key image, unlock height, and spend context a
// legacy enote accumulates once its spend key becomes available (spec §4.9).
type LegacyFullRecord struct {
	OnetimeAddress cryptocore.Point
	Amount         uint64
	KeyImage       cryptocore.Point
	UnlockHeight   int64
	Origin         OriginContext
	Spent          SpentContext
}

// BalanceExclusion is a bitset of the balance-query exclusion flags spec
// §4.9 names plus the supplemented ORIGIN_LEDGER_LOCKED flag (SPEC_FULL.md
// §C.2).
type BalanceExclusion uint8

const (
	// ExcludeLedgerLocked drops records not yet spendable under the
	// default-spendable-age / unlock_time rule.
	ExcludeLedgerLocked BalanceExclusion = 1 << iota
	// ExcludeOriginLedgerLocked drops every record whose origin is not
	// on-chain, regardless of age — a coarser, origin-only filter that
	// ignores unlock_time entirely.
	ExcludeOriginLedgerLocked
)

// Has reports whether flag is set in e.
func (e BalanceExclusion) Has(flag BalanceExclusion) bool { return e&flag != 0 }

// addLegacyIntermediate inserts rec under id, updating the duplicate
// tracker.
func (s *Store) addLegacyIntermediate(id LegacyIdentifier, rec LegacyIntermediateRecord) {
	s.legacyIntermediate[id] = rec
	ot := onetimeKeyOf(rec.OnetimeAddress)
	if s.legacyByOnetime[ot] == nil {
		s.legacyByOnetime[ot] = make(map[LegacyIdentifier]struct{})
	}
	s.legacyByOnetime[ot][id] = struct{}{}
}

func (s *Store) removeLegacyIntermediate(id LegacyIdentifier) {
	rec, ok := s.legacyIntermediate[id]
	if !ok {
		return
	}
	delete(s.legacyIntermediate, id)
	ot := onetimeKeyOf(rec.OnetimeAddress)
	if set, ok := s.legacyByOnetime[ot]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(s.legacyByOnetime, ot)
		}
	}
}

func (s *Store) removeLegacyFull(id LegacyIdentifier) {
	rec, ok := s.legacyFull[id]
	if !ok {
		return
	}
	delete(s.legacyFull, id)
	ot := onetimeKeyOf(rec.OnetimeAddress)
	if set, ok := s.legacyByOnetime[ot]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(s.legacyByOnetime, ot)
		}
	}
}

// upgradeLegacyIntermediate promotes an intermediate record to full once its
// key image becomes known, via key-image re-import after a reorg (spec
// §4.8.4) or via ImportLegacyKeyImage below.
func (s *Store) upgradeLegacyIntermediate(id LegacyIdentifier, interm LegacyIntermediateRecord, ki cryptocore.Point) {
	s.removeLegacyIntermediate(id)
	spent := SpentContext{Status: Unspent}
	if sc, ok := s.legacyKeyImagesInSpTxs[toKeyImageKey(ki)]; ok {
		spent = sc
	}
	full := LegacyFullRecord{
		OnetimeAddress: interm.OnetimeAddress,
		Amount:         interm.Amount,
		KeyImage:       ki,
		Origin:         interm.Origin,
		Spent:          spent,
	}
	s.legacyFull[id] = full
	ot := onetimeKeyOf(full.OnetimeAddress)
	if s.legacyByOnetime[ot] == nil {
		s.legacyByOnetime[ot] = make(map[LegacyIdentifier]struct{})
	}
	s.legacyByOnetime[ot][id] = struct{}{}
}

// LegacyKeyImageValidator lets a caller tell the store a legacy key image
// has been confirmed spent on-chain (supplemented feature, SPEC_FULL.md
// §C.1) — this module has no CLSAG verifier of its own, so the caller (e.g.
// a ledger client) supplies the verdict.
type LegacyKeyImageValidator interface {
	ValidateLegacyKeyImage(ki cryptocore.Point) (spent bool, spendHeight int64)
}

// ImportLegacyKeyImage records a legacy enote's key image, promoting every
// intermediate record sharing its onetime address to a full record, and
// reconciling already-known spend state via validator (spec §4.9's
// "import legacy key images" operation).
func (s *Store) ImportLegacyKeyImage(onetimeAddress cryptocore.Point, ki cryptocore.Point, validator LegacyKeyImageValidator) {
	ot := onetimeKeyOf(onetimeAddress)
	ids, ok := s.legacyByOnetime[ot]
	if !ok {
		return
	}
	for id := range ids {
		interm, ok := s.legacyIntermediate[id]
		if !ok {
			continue
		}
		s.upgradeLegacyIntermediate(id, interm, ki)
	}
	if validator == nil {
		return
	}
	if spent, height := validator.ValidateLegacyKeyImage(ki); spent {
		for id := range s.legacyByOnetime[ot] {
			if full, ok := s.legacyFull[id]; ok {
				full.Spent = SpentContext{Status: SpentOnchain, BlockHeight: height}
				s.legacyFull[id] = full
			}
		}
	}
}
