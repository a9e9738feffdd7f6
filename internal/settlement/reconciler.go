package settlement

import (
	"log/slog"
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"

	"github.com/ahrav/votechain/internal/domain"
)

// foldCaser is a package-level Unicode case folder so candidate-name
// matching does not allocate a caser per comparison.
var foldCaser = cases.Fold()

// DefaultNameDistance is the maximum Levenshtein distance at which a
// folded oracle identifier is still considered a typo of a candidate
// name. Containment matching runs first; the distance tier only catches
// near-misses like a dropped rune.
const DefaultNameDistance = 2

// Reconciler is the trust boundary between the oracle's unvalidated
// output and the rest of the pipeline. It maps every raw score line
// back to an authoritative candidate identifier or discards it, and
// substitutes the deterministic vote fallback whenever the surviving
// set would be unusable.
type Reconciler struct {
	logger       *slog.Logger
	nameDistance int
}

// NewReconciler creates a Reconciler logging unresolved lines through
// the given logger. A nil logger falls back to slog.Default.
func NewReconciler(logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{logger: logger, nameDistance: DefaultNameDistance}
}

// Reconcile validates a raw oracle response against the authoritative
// candidate set carried by the evidence bundles.
//
// Per raw line: an exact identifier match is accepted as-is; otherwise
// a case-insensitive containment match against candidate names rewrites
// the identifier (the oracle sometimes echoes a name or truncates an
// id); otherwise a bounded Levenshtein match against folded names is
// tried; otherwise the line is dropped and logged as unresolved.
// Duplicate lines for one candidate collapse to the last occurrence.
//
// The whole set is replaced by the vote-count fallback when the oracle
// signaled unparseable, or when no line survived validation. Partial
// coverage of the candidate set is accepted: individual lines may be
// dropped as long as at least one real candidate remains scored.
func (r *Reconciler) Reconcile(resp domain.OracleResponse, bundles []domain.EvidenceBundle) ValidatedScores {
	if resp.Unparseable {
		r.logger.Warn("oracle response unparseable, using vote fallback", "model", resp.Model)
		return r.fallback(bundles, "fallback: vote-count based (oracle response unparseable)")
	}

	accepted := make(map[string]domain.CandidateScore, len(bundles))
	order := make([]string, 0, len(bundles))

	for _, raw := range resp.Scores {
		candidateID, ok := r.resolve(raw.CandidateID, bundles)
		if !ok {
			r.logger.Warn("dropping unresolved oracle score",
				"candidate_id", raw.CandidateID,
				"score", raw.Score,
			)
			continue
		}

		if candidateID != raw.CandidateID {
			r.logger.Info("repaired oracle candidate reference",
				"oracle_id", raw.CandidateID,
				"candidate_id", candidateID,
			)
		}

		if _, seen := accepted[candidateID]; !seen {
			order = append(order, candidateID)
		}
		// Last occurrence wins on duplicates.
		accepted[candidateID] = domain.CandidateScore{
			CandidateID: candidateID,
			Score:       domain.ClampScore(raw.Score),
			Reasoning:   raw.Reasoning,
		}
	}

	if len(accepted) == 0 {
		r.logger.Warn("no oracle score survived validation, using vote fallback",
			"raw_scores", len(resp.Scores),
		)
		return r.fallback(bundles, "fallback: vote-count based (no valid oracle scores)")
	}

	scores := make([]domain.CandidateScore, 0, len(accepted))
	for _, id := range order {
		scores = append(scores, accepted[id])
	}
	return ValidatedScores{origin: domain.OriginOracle, scores: scores}
}

// resolve maps an oracle-reported identifier to an authoritative
// candidate id, or reports failure.
func (r *Reconciler) resolve(oracleID string, bundles []domain.EvidenceBundle) (string, bool) {
	for _, b := range bundles {
		if b.CandidateID == oracleID {
			return b.CandidateID, true
		}
	}

	folded := foldCaser.String(strings.TrimSpace(oracleID))
	if folded == "" {
		return "", false
	}

	// Containment in either direction: the oracle may echo a full name,
	// wrap the name in prose, or truncate an identifier.
	for _, b := range bundles {
		name := foldCaser.String(b.Name)
		if name == "" {
			continue
		}
		if name == folded || strings.Contains(folded, name) || strings.Contains(name, folded) {
			return b.CandidateID, true
		}
		if strings.Contains(foldCaser.String(b.CandidateID), folded) {
			return b.CandidateID, true
		}
	}

	// Near-miss tier for small typos in an echoed name.
	for _, b := range bundles {
		name := foldCaser.String(b.Name)
		if name == "" {
			continue
		}
		if levenshtein.ComputeDistance(name, folded) <= r.nameDistance {
			return b.CandidateID, true
		}
	}

	return "", false
}

// fallback scores every candidate deterministically from vote counts.
func (r *Reconciler) fallback(bundles []domain.EvidenceBundle, reasoning string) ValidatedScores {
	scores := make([]domain.CandidateScore, 0, len(bundles))
	for _, b := range bundles {
		scores = append(scores, domain.CandidateScore{
			CandidateID: b.CandidateID,
			Score:       b.FallbackScore(),
			Reasoning:   reasoning,
		})
	}
	return ValidatedScores{origin: domain.OriginVoteFallback, scores: scores}
}
