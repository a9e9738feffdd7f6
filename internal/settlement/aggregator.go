package settlement

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/ahrav/votechain/internal/domain"
	"github.com/ahrav/votechain/internal/ports"
)

// Aggregator builds per-candidate evidence bundles from the data
// store. It is read-only and stateless: bundles are assembled fresh on
// every call so the evidence reflects the store's state at invocation
// time.
type Aggregator struct {
	store  ports.SettlementStore
	tracer trace.Tracer
}

// NewAggregator creates an Aggregator reading from the given store.
func NewAggregator(store ports.SettlementStore) *Aggregator {
	return &Aggregator{
		store:  store,
		tracer: otel.Tracer("settlement-aggregator"),
	}
}

// Aggregate fetches the room's candidates, vote counts, and evaluation
// texts and returns one evidence bundle per candidate, in candidate
// creation order. The three fetches are independent reads and are
// issued concurrently.
// Returns domain.ErrNotFound if the room has no candidates: settlement
// cannot proceed without at least one.
func (a *Aggregator) Aggregate(ctx context.Context, roomID string) ([]domain.EvidenceBundle, error) {
	ctx, span := a.tracer.Start(ctx, "Aggregator.Aggregate",
		trace.WithAttributes(attribute.String("room.id", roomID)),
	)
	defer span.End()

	var (
		candidates  []domain.Candidate
		votes       map[string]int
		evaluations map[string][]string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		candidates, err = a.store.ListCandidates(gctx, roomID)
		return err
	})
	g.Go(func() error {
		var err error
		votes, err = a.store.CountVotes(gctx, roomID)
		return err
	})
	g.Go(func() error {
		var err error
		evaluations, err = a.store.ListEvaluations(gctx, roomID)
		return err
	})

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("fetching evidence for room %s: %w", roomID, err)
	}

	if len(candidates) == 0 {
		err := fmt.Errorf("room %s has no candidates: %w", roomID, domain.ErrNotFound)
		span.RecordError(err)
		return nil, err
	}

	bundles := make([]domain.EvidenceBundle, 0, len(candidates))
	for _, c := range candidates {
		bundles = append(bundles, domain.EvidenceBundle{
			CandidateID: c.ID,
			Name:        c.Name,
			Description: c.Description,
			VoteCount:   votes[c.ID],
			Evaluations: evaluations[c.ID],
		})
	}

	span.SetAttributes(attribute.Int("evidence.candidates", len(bundles)))
	return bundles, nil
}
