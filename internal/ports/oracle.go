package ports

import (
	"context"

	"github.com/ahrav/votechain/internal/domain"
)

// OracleClient scores a room's evidence bundles against the owner's
// evaluation criteria by calling an external, non-deterministic scoring
// service.
//
// The returned OracleResponse is untrusted input: candidate identifiers
// may be wrong and scores are merely clamped, not validated. Only the
// reconciler promotes a response into a score set the rest of the
// pipeline will act on.
//
// Implementations must distinguish two failure shapes:
//   - transport/HTTP failure: return a non-nil error; the caller treats
//     it as fatal to the attempt;
//   - response present but unparseable: return a response with
//     Unparseable set and a nil error, so the caller can fall back to
//     deterministic scoring.
type OracleClient interface {
	// ScoreCandidates requests one score per evidence bundle via a
	// structured tool-call contract, falling back to extracting the
	// first balanced JSON object from free text.
	ScoreCandidates(ctx context.Context, criteria string, bundles []domain.EvidenceBundle) (domain.OracleResponse, error)

	// GetModel returns the oracle model identifier, for logging.
	GetModel() string
}
