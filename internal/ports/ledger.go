package ports

import (
	"context"

	"github.com/ahrav/votechain/internal/domain"
)

// LedgerCommitter submits a tamper-evident record of a settled winner
// to an external distributed ledger.
//
// Commit never returns an error: a ledger failure downgrades the trust
// badge of the settlement, it does not unwind the already-decided
// winner. Missing credentials yield a simulated result immediately;
// any ledger-side failure yields a failed result carrying the error
// text.
type LedgerCommitter interface {
	// Commit attempts the ledger write and reports its outcome.
	Commit(ctx context.Context, proof domain.WinnerProof) domain.LedgerResult

	// Network names the target ledger network, e.g. "hedera_testnet".
	Network() string
}
