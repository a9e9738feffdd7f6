package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/votechain/internal/domain"
	"github.com/ahrav/votechain/internal/ports"
)

// Orchestrator drives a room through the full settlement pipeline:
// evidence aggregation, oracle scoring, identity reconciliation, winner
// resolution, persistence, ledger commitment, and the final status
// transition. One call settles one room at most once; concurrent calls
// race on the winner record's uniqueness guard and all but one lose.
type Orchestrator struct {
	store      ports.SettlementStore
	oracle     ports.OracleClient
	ledger     ports.LedgerCommitter
	aggregator *Aggregator
	reconciler *Reconciler
	logger     *slog.Logger
	metrics    ports.MetricsCollector
	tracer     trace.Tracer
}

// NewOrchestrator wires the settlement pipeline. logger and metrics may
// be nil; a nil logger falls back to slog.Default and a nil metrics
// collector disables instrumentation.
func NewOrchestrator(
	store ports.SettlementStore,
	oracle ports.OracleClient,
	ledger ports.LedgerCommitter,
	logger *slog.Logger,
	metrics ports.MetricsCollector,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		store:      store,
		oracle:     oracle,
		ledger:     ledger,
		aggregator: NewAggregator(store),
		reconciler: NewReconciler(logger),
		logger:     logger,
		metrics:    metrics,
		tracer:     otel.Tracer("settlement-orchestrator"),
	}
}

// Settle finalizes the room identified by roomID on behalf of userID.
//
// The caller must already have authenticated userID; Settle only checks
// authorization (the requester must own the room) and the room's
// lifecycle state. Stages up to and including the winner insert are
// fatal on failure and leave the room unfinalized apart from score rows
// tagged with this attempt's id, which are compensated when the attempt
// loses the winner race. Stages after the winner insert never fail the
// settlement: the winner record is the source of truth and ledger or
// status-update failures are logged and surfaced in the result instead.
func (o *Orchestrator) Settle(ctx context.Context, roomID, userID string) (domain.SettlementResult, error) {
	ctx, span := o.tracer.Start(ctx, "settlement.settle",
		trace.WithAttributes(attribute.String("room.id", roomID)),
	)
	defer span.End()

	start := time.Now()
	result, err := o.settle(ctx, roomID, userID)
	o.observe("settle", time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.SettlementResult{}, err
	}
	span.SetAttributes(
		attribute.String("winner.candidate_id", result.Winner.CandidateID),
		attribute.Int("winner.score", result.Winner.Score),
		attribute.String("ledger.status", string(result.Ledger.Status)),
	)
	return result, nil
}

func (o *Orchestrator) settle(ctx context.Context, roomID, userID string) (domain.SettlementResult, error) {
	room, err := o.store.GetRoom(ctx, roomID)
	if err != nil {
		return domain.SettlementResult{}, domain.NewStageError("load_room", roomID, err)
	}
	if room.OwnerID != userID {
		return domain.SettlementResult{}, domain.NewStageError("authorize", roomID,
			fmt.Errorf("user %s does not own room: %w", userID, domain.ErrForbidden))
	}
	if room.Status == domain.StatusFinalized {
		return domain.SettlementResult{}, domain.NewStageError("authorize", roomID, domain.ErrAlreadyFinalized)
	}

	bundles, err := o.aggregator.Aggregate(ctx, roomID)
	if err != nil {
		return domain.SettlementResult{}, domain.NewStageError("aggregate", roomID, err)
	}

	resp, err := o.score(ctx, room, bundles)
	if err != nil {
		return domain.SettlementResult{}, domain.NewStageError("score", roomID,
			fmt.Errorf("%w: %v", domain.ErrOracleUnavailable, err))
	}

	validated := o.reconciler.Reconcile(resp, bundles)

	winner, err := ResolveWinner(validated, bundles)
	if err != nil {
		return domain.SettlementResult{}, domain.NewStageError("resolve", roomID, err)
	}

	attemptID := uuid.NewString()
	if err := o.persistScores(ctx, roomID, attemptID, validated); err != nil {
		return domain.SettlementResult{}, domain.NewStageError("persist_scores", roomID, err)
	}

	winnerRecord := domain.Winner{
		ID:          uuid.NewString(),
		RoomID:      roomID,
		CandidateID: winner.CandidateID,
		FinalScore:  winner.Score,
		CreatedAt:   time.Now().UTC(),
	}
	if err := o.store.InsertWinner(ctx, winnerRecord); err != nil {
		if errors.Is(err, domain.ErrAlreadyFinalized) {
			// Another attempt won the race; our score rows are noise.
			if derr := o.store.DeleteScoresByAttempt(ctx, attemptID); derr != nil {
				o.logger.Error("failed to compensate losing attempt's scores",
					"room_id", roomID, "attempt_id", attemptID, "error", derr)
			}
		}
		return domain.SettlementResult{}, domain.NewStageError("insert_winner", roomID, err)
	}

	o.logger.Info("winner settled",
		"room_id", roomID,
		"candidate_id", winner.CandidateID,
		"score", winner.Score,
		"origin", validated.Origin(),
	)

	// Everything past this point is best-effort: the winner record is
	// committed and must not be rolled back.
	ledgerResult := o.commitLedger(ctx, winnerRecord)
	o.finalizeRoom(ctx, roomID)

	return domain.SettlementResult{Winner: winner, Ledger: ledgerResult}, nil
}

func (o *Orchestrator) score(
	ctx context.Context, room domain.Room, bundles []domain.EvidenceBundle,
) (domain.OracleResponse, error) {
	ctx, span := o.tracer.Start(ctx, "settlement.score")
	defer span.End()

	start := time.Now()
	resp, err := o.oracle.ScoreCandidates(ctx, room.EvaluationCriteria, bundles)
	o.observe("oracle", time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.OracleResponse{}, err
	}
	span.SetAttributes(
		attribute.Int("oracle.scores", len(resp.Scores)),
		attribute.Bool("oracle.unparseable", resp.Unparseable),
	)
	return resp, nil
}

func (o *Orchestrator) persistScores(
	ctx context.Context, roomID, attemptID string, validated ValidatedScores,
) error {
	now := time.Now().UTC()
	records := make([]domain.ScoreRecord, 0, validated.Len())
	for _, cs := range validated.Scores() {
		records = append(records, domain.ScoreRecord{
			ID:          uuid.NewString(),
			RoomID:      roomID,
			CandidateID: cs.CandidateID,
			AttemptID:   attemptID,
			Origin:      validated.Origin(),
			Score:       cs.Score,
			Reasoning:   cs.Reasoning,
			CreatedAt:   now,
		})
	}
	return o.store.InsertScores(ctx, records)
}

// commitLedger anchors the winner on the distributed ledger and records
// the outcome. Ledger failures degrade the result, never the settlement.
func (o *Orchestrator) commitLedger(ctx context.Context, winner domain.Winner) domain.LedgerResult {
	ctx, span := o.tracer.Start(ctx, "settlement.ledger_commit")
	defer span.End()

	proof := domain.WinnerProof{
		RoomID:      winner.RoomID,
		WinnerID:    winner.ID,
		CandidateID: winner.CandidateID,
		FinalScore:  winner.FinalScore,
		Timestamp:   winner.CreatedAt,
	}

	start := time.Now()
	result := o.ledger.Commit(ctx, proof)
	o.observe("ledger", time.Since(start), nil)

	span.SetAttributes(
		attribute.String("ledger.status", string(result.Status)),
		attribute.String("ledger.transaction_id", result.TransactionID),
	)
	if result.Status == domain.LedgerFailed {
		o.logger.Error("ledger commit failed",
			"room_id", winner.RoomID, "winner_id", winner.ID, "error", result.Err)
	}

	record := domain.LedgerRecord{
		ID:             uuid.NewString(),
		WinnerID:       winner.ID,
		TransactionID:  result.TransactionID,
		Network:        result.Network,
		Status:         result.Status,
		Err:            result.Err,
		BlockTimestamp: time.Now().UTC(),
	}
	if err := o.store.InsertLedgerRecord(ctx, record); err != nil {
		o.logger.Error("failed to persist ledger record",
			"room_id", winner.RoomID, "winner_id", winner.ID, "error", err)
	}
	return result
}

// finalizeRoom flips the room status; losing the conditional update is
// harmless because the winner insert already guards the settlement.
func (o *Orchestrator) finalizeRoom(ctx context.Context, roomID string) {
	if err := o.store.FinalizeRoom(ctx, roomID); err != nil {
		o.logger.Error("failed to mark room finalized", "room_id", roomID, "error", err)
	}
}

func (o *Orchestrator) observe(stage string, elapsed time.Duration, err error) {
	if o.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	labels := map[string]string{"stage": stage, "status": status}
	o.metrics.RecordLatency("settlement_stage_duration_seconds", elapsed, labels)
	o.metrics.RecordCounter("settlement_stage_total", 1, labels)
}
