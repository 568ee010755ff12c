package scanning

import "errors"

// MaxFullscanAttempts is the hard sanity cap on full-scan restarts (spec
// §4.8.3: "Hard cap: ≤ 50 full-scan attempts").
const MaxFullscanAttempts = 50

// Config parameterises Refresh (spec §4.8.3).
type Config struct {
	ReorgAvoidanceDepth    int64
	MaxChunkSize           int
	MaxPartialscanAttempts int
}

// ErrFullscanAttemptsExceeded is returned when Refresh restarts more than
// MaxFullscanAttempts times without converging.
var ErrFullscanAttemptsExceeded = errors.New("scanning: exceeded maximum full-scan attempts")

// ErrPartialscanAttemptsExceeded is returned when a single full-scan attempt
// needs more partial-scan retries than cfg.MaxPartialscanAttempts allows.
var ErrPartialscanAttemptsExceeded = errors.New("scanning: exceeded configured partial-scan attempt budget")

type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeNeedFullScan
	outcomeNeedPartialScan
)

// RefreshResult carries the named success-path diagnostics that
// ChunkProcessSuccessCondition handling tracks internally: not just that
// Refresh converged, but how many full-scan restarts and partial-scan
// retries it took, so a caller can tell why a refresh consumed extra
// attempts instead of only whether it succeeded.
type RefreshResult struct {
	FullscanAttempts   int
	PartialscanAttempts int
}

// avoidanceDepth computes reorg_avoidance_depth · 10^(fullscans-1) (spec
// §4.8.3 step 1).
func avoidanceDepth(cfg Config, fullscans int) int64 {
	d := cfg.ReorgAvoidanceDepth
	for i := 1; i < fullscans; i++ {
		d *= 10
	}
	return d
}

// Refresh runs the chunked reorg-tolerant scan loop (spec §4.8.3) against
// ctx and updater until it converges or hits the full-scan cap.
// NeedPartialScan is retried within a single attempt (same avoidance
// depth); only NeedFullScan restarts attemptScan with deeper avoidance.
func Refresh(cfg Config, ctx ScanContext, updater EnoteStoreUpdater) (RefreshResult, error) {
	result := RefreshResult{}
	for fullscans := 1; ; fullscans++ {
		result.FullscanAttempts = fullscans
		if fullscans > MaxFullscanAttempts {
			return result, ErrFullscanAttemptsExceeded
		}
		done, partialAttempts, err := attemptScan(cfg, ctx, updater, fullscans)
		result.PartialscanAttempts += partialAttempts
		if err != nil {
			return result, err
		}
		if done {
			return result, nil
		}
	}
}

// attemptScan runs one full-scan attempt to completion, internally retrying
// NeedPartialScan breaks up to cfg.MaxPartialscanAttempts times. It returns
// done=true on success, done=false (no error) when the caller should restart
// with deeper reorg avoidance (NeedFullScan), and a non-nil error for any
// other failure, including exceeding the partial-scan budget. partialAttempts
// is the number of NeedPartialScan retries absorbed within this attempt.
func attemptScan(cfg Config, ctx ScanContext, updater EnoteStoreUpdater, fullscans int) (done bool, partialAttempts int, err error) {
	depth := avoidanceDepth(cfg, fullscans)
	start := updater.DesiredFirstBlock() - depth
	if start < updater.RefreshHeight() {
		start = updater.RefreshHeight()
	}

	for {
		result, scanned, startErr := runOneAttempt(cfg, ctx, updater, start)
		if startErr != nil {
			return false, partialAttempts, startErr
		}
		switch result {
		case outcomeSuccess:
			_ = scanned
			return true, partialAttempts, nil
		case outcomeNeedFullScan:
			return false, partialAttempts, nil
		case outcomeNeedPartialScan:
			partialAttempts++
			if partialAttempts > cfg.MaxPartialscanAttempts {
				return false, partialAttempts, ErrPartialscanAttemptsExceeded
			}
			continue
		}
	}
}

// runOneAttempt begins a scan session at start, pulls on-chain chunks to
// chain top, optionally consumes one unconfirmed chunk, does a second
// on-chain pass, then commits the session via EndSession (spec §4.8.3 steps
// 2-6).
func runOneAttempt(cfg Config, ctx ScanContext, updater EnoteStoreUpdater, start int64) (outcome, []BlockID, error) {
	if err := ctx.Begin(start, cfg.MaxChunkSize); err != nil {
		return outcomeNeedFullScan, nil, err
	}
	defer ctx.Terminate()
	updater.StartSession()

	marker := ChainContiguityMarker{Height: start}
	if id, ok := updater.TryGetBlockID(start); ok {
		marker.BlockID = &id
	}
	firstContiguityHeight := marker.Height

	var scanned []BlockID

	pullToTop := func() (outcome, error) {
		for {
			chunk, err := ctx.GetOnchainChunk()
			if err != nil {
				return outcomeNeedFullScan, err
			}
			if err := ValidateLedgerChunk(chunk); err != nil {
				return outcomeNeedFullScan, err
			}

			chunkStart := ChainContiguityMarker{Height: chunk.StartHeight, BlockID: &chunk.PrefixBlockID}
			if !Contiguous(marker, chunkStart) {
				if chunk.StartHeight <= firstContiguityHeight {
					return outcomeNeedFullScan, nil
				}
				return outcomeNeedPartialScan, nil
			}

			if err := updater.ConsumeOnchainChunk(chunk); err != nil {
				return outcomeNeedFullScan, err
			}
			scanned = append(scanned, chunk.BlockIDs...)

			lastID := chunk.PrefixBlockID
			if n := len(chunk.BlockIDs); n > 0 {
				lastID = chunk.BlockIDs[n-1]
			}
			marker = ChainContiguityMarker{Height: chunk.EndHeight, BlockID: &lastID}

			if chunk.isTerminal() {
				return outcomeSuccess, nil
			}
		}
	}

	if result, err := pullToTop(); result != outcomeSuccess || err != nil {
		return result, nil, err
	}

	if nlChunk, ok, err := ctx.TryGetUnconfirmedChunk(); err != nil {
		return outcomeNeedFullScan, nil, err
	} else if ok {
		if err := ValidateNonLedgerChunk(nlChunk); err != nil {
			return outcomeNeedFullScan, nil, err
		}
		if err := updater.ConsumeNonledgerChunk(nlChunk); err != nil {
			return outcomeNeedFullScan, nil, err
		}
	}

	if result, err := pullToTop(); result != outcomeSuccess || err != nil {
		return result, nil, err
	}

	alignmentHeight, alignmentBlockID, newBlockIDs := computeAlignment(updater, scanned, start)
	updater.EndSession(alignmentHeight, alignmentBlockID, newBlockIDs)
	return outcomeSuccess, scanned, nil
}

// computeAlignment walks forward through newly scanned block ids comparing
// against the updater's previously known ids, cropping the already-known
// prefix before installing the rest (spec §4.8.3 step 6).
func computeAlignment(updater EnoteStoreUpdater, scanned []BlockID, startHeight int64) (alignmentHeight int64, alignmentBlockID BlockID, newBlockIDs []BlockID) {
	alignmentHeight = startHeight - 1
	cropIdx := 0
	for i, id := range scanned {
		h := startHeight + int64(i)
		known, ok := updater.TryGetBlockID(h)
		if !ok || known != id {
			break
		}
		alignmentHeight = h
		alignmentBlockID = id
		cropIdx = i + 1
	}
	return alignmentHeight, alignmentBlockID, scanned[cropIdx:]
}
