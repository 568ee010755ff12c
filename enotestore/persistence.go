package enotestore

import (
	"compress/gzip"
	"encoding/hex"
	"encoding/json"
	"os"

	"github.com/sirupsen/logrus"

	"seraphis-core/cryptocore"
	"seraphis-core/jamtis"
	"seraphis-core/scanning"
)

// snapshotDTO is the JSON-serializable projection of Store, grounded on
// core/ledger.go's full-state snapshot. Store keeps a separate DTO because
// its maps are keyed by fixed-size byte arrays, which encoding/json cannot
// use directly as object keys.
//
// Secret scalars never appear here: a reload recovers amounts, key images,
// and origin/spend bookkeeping, but not the enote-view secret components
// (Kg/Kx/Ku), matching spec §5's rule that private scalars are wiped rather
// than retained once no longer needed — a restored FullRecord is
// balance/spend-usable but cannot itself re-derive a new key image.
type snapshotDTO struct {
	RefreshHeight          int64
	ChainTop               int64
	KnownBlocks            map[int64]string
	LegacyIntermediate     []legacyIntermediateDTO
	LegacyFull             []legacyFullDTO
	SpFull                 []spFullDTO
	LegacyKeyImagesInSpTxs []keyImageSpentDTO
}

type legacyIntermediateDTO struct {
	ID             string
	OnetimeAddress string
	Amount         uint64
	Origin         OriginContext
}

type legacyFullDTO struct {
	ID             string
	OnetimeAddress string
	Amount         uint64
	KeyImage       string
	UnlockHeight   int64
	Origin         OriginContext
	Spent          SpentContext
}

type spFullDTO struct {
	KeyImage       string
	OnetimeAddress string
	Amount         uint64
	J              jamtis.AddressIndex
	SelfSend       bool
	SelfSendType   jamtis.SelfSendType
	Origin         OriginContext
	Spent          SpentContext
}

type keyImageSpentDTO struct {
	KeyImage string
	Spent    SpentContext
}

func hexEncode(b []byte) string { return hex.EncodeToString(b) }

func hexDecodeBlockID(s string) (scanning.BlockID, error) {
	var id scanning.BlockID
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, err
	}
	copy(id[:], b)
	return id, nil
}

func hexDecodePoint(s string) (cryptocore.Point, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return cryptocore.Point{}, err
	}
	return cryptocore.PointFromBytes(b)
}

// SaveSnapshot writes the full store state to path as gzip-compressed JSON,
// following core/ledger.go's snapshot() shape.
func (s *Store) SaveSnapshot(path string) error {
	dto := snapshotDTO{
		RefreshHeight: s.refreshHeight,
		ChainTop:      s.chainTop,
		KnownBlocks:   make(map[int64]string, len(s.knownBlocks)),
	}
	for h, id := range s.knownBlocks {
		dto.KnownBlocks[h] = hexEncode(id[:])
	}
	for id, rec := range s.legacyIntermediate {
		dto.LegacyIntermediate = append(dto.LegacyIntermediate, legacyIntermediateDTO{
			ID:             hexEncode(id[:]),
			OnetimeAddress: hexEncode(rec.OnetimeAddress.Bytes()),
			Amount:         rec.Amount,
			Origin:         rec.Origin,
		})
	}
	for id, rec := range s.legacyFull {
		dto.LegacyFull = append(dto.LegacyFull, legacyFullDTO{
			ID:             hexEncode(id[:]),
			OnetimeAddress: hexEncode(rec.OnetimeAddress.Bytes()),
			Amount:         rec.Amount,
			KeyImage:       hexEncode(rec.KeyImage.Bytes()),
			UnlockHeight:   rec.UnlockHeight,
			Origin:         rec.Origin,
			Spent:          rec.Spent,
		})
	}
	for key, rec := range s.spFull {
		dto.SpFull = append(dto.SpFull, spFullDTO{
			KeyImage:       hexEncode(key[:]),
			OnetimeAddress: hexEncode(rec.OnetimeAddress.Bytes()),
			Amount:         rec.Amount,
			J:              rec.J,
			SelfSend:       rec.EnoteType.SelfSend,
			SelfSendType:   rec.EnoteType.SelfSendType,
			Origin:         rec.Origin,
			Spent:          rec.Spent,
		})
	}
	for key, sc := range s.legacyKeyImagesInSpTxs {
		dto.LegacyKeyImagesInSpTxs = append(dto.LegacyKeyImagesInSpTxs, keyImageSpentDTO{
			KeyImage: hexEncode(key[:]),
			Spent:    sc,
		})
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	defer gz.Close()

	if err := json.NewEncoder(gz).Encode(dto); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"path": path, "sp_full": len(dto.SpFull), "legacy_full": len(dto.LegacyFull)}).
		Info("enotestore: snapshot saved")
	return nil
}

// addressOf reads the one-time address off an EnoteSource via the concrete
// struct types, since the interface method itself is unexported outside
// jamtis. The store uses it when it ingests a seraphis basic record.
func addressOf(e jamtis.EnoteSource) cryptocore.Point {
	switch v := e.(type) {
	case jamtis.CoinbaseEnote:
		return v.Ko
	case jamtis.StandardEnote:
		return v.Ko
	default:
		return cryptocore.Point{}
	}
}

// LoadSnapshot reads a snapshot previously written by SaveSnapshot into an
// empty Store. Balance and spend tracking resume immediately since key
// images round-trip; only the enote-view secret scalars (Kg/Kx/Ku), which
// SpFullRecord never retains, are unavailable until the enote is re-scanned.
func (s *Store) LoadSnapshot(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gz.Close()

	var dto snapshotDTO
	if err := json.NewDecoder(gz).Decode(&dto); err != nil {
		return err
	}

	s.refreshHeight = dto.RefreshHeight
	s.chainTop = dto.ChainTop
	s.knownBlocks = make(map[int64]scanning.BlockID, len(dto.KnownBlocks))
	for h, hexID := range dto.KnownBlocks {
		id, err := hexDecodeBlockID(hexID)
		if err != nil {
			return err
		}
		s.knownBlocks[h] = id
	}

	for _, rec := range dto.LegacyIntermediate {
		var id LegacyIdentifier
		idBytes, err := hex.DecodeString(rec.ID)
		if err != nil {
			return err
		}
		copy(id[:], idBytes)
		addr, err := hexDecodePoint(rec.OnetimeAddress)
		if err != nil {
			return err
		}
		s.addLegacyIntermediate(id, LegacyIntermediateRecord{
			OnetimeAddress: addr,
			Amount:         rec.Amount,
			Origin:         rec.Origin,
		})
	}

	for _, rec := range dto.LegacyFull {
		var id LegacyIdentifier
		idBytes, err := hex.DecodeString(rec.ID)
		if err != nil {
			return err
		}
		copy(id[:], idBytes)
		addr, err := hexDecodePoint(rec.OnetimeAddress)
		if err != nil {
			return err
		}
		ki, err := hexDecodePoint(rec.KeyImage)
		if err != nil {
			return err
		}
		full := LegacyFullRecord{
			OnetimeAddress: addr,
			Amount:         rec.Amount,
			KeyImage:       ki,
			UnlockHeight:   rec.UnlockHeight,
			Origin:         rec.Origin,
			Spent:          rec.Spent,
		}
		s.legacyFull[id] = full
		ot := onetimeKeyOf(addr)
		if s.legacyByOnetime[ot] == nil {
			s.legacyByOnetime[ot] = make(map[LegacyIdentifier]struct{})
		}
		s.legacyByOnetime[ot][id] = struct{}{}
	}

	for _, sc := range dto.LegacyKeyImagesInSpTxs {
		kiBytes, err := hex.DecodeString(sc.KeyImage)
		if err != nil {
			return err
		}
		var key keyImageKey
		copy(key[:], kiBytes)
		s.legacyKeyImagesInSpTxs[key] = sc.Spent
	}

	for _, rec := range dto.SpFull {
		kiBytes, err := hex.DecodeString(rec.KeyImage)
		if err != nil {
			return err
		}
		var key keyImageKey
		copy(key[:], kiBytes)
		addr, err := hexDecodePoint(rec.OnetimeAddress)
		if err != nil {
			return err
		}
		ki, err := hexDecodePoint(rec.KeyImage)
		if err != nil {
			return err
		}
		s.spFull[key] = SpFullRecord{
			KeyImage:       ki,
			OnetimeAddress: addr,
			Amount:         rec.Amount,
			J:              rec.J,
			EnoteType:      jamtis.EnoteType{SelfSend: rec.SelfSend, SelfSendType: rec.SelfSendType},
			Origin:         rec.Origin,
			Spent:          rec.Spent,
		}
	}

	log.WithFields(logrus.Fields{"path": path}).Info("enotestore: snapshot loaded")
	return nil
}
