package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ahrav/votechain/internal/domain"
	"github.com/ahrav/votechain/internal/ports"
	"github.com/ahrav/votechain/internal/settlement"
)

// SettlementHandler serves the room finalization endpoint.
type SettlementHandler struct {
	orchestrator *settlement.Orchestrator
	verifier     ports.TokenVerifier
}

// NewSettlementHandler wires the handler to its orchestrator and token
// verifier.
func NewSettlementHandler(orchestrator *settlement.Orchestrator, verifier ports.TokenVerifier) *SettlementHandler {
	return &SettlementHandler{orchestrator: orchestrator, verifier: verifier}
}

// finalizeResponse is the success payload of POST /rooms/{id}/finalize.
type finalizeResponse struct {
	Success bool          `json:"success"`
	RoomID  string        `json:"room_id"`
	Winner  winnerPayload `json:"winner"`
	Ledger  ledgerPayload `json:"ledger"`
}

type winnerPayload struct {
	CandidateID string `json:"candidate_id"`
	Score       int    `json:"score"`
	Reasoning   string `json:"reasoning,omitempty"`
}

type ledgerPayload struct {
	TransactionID string `json:"transaction_id"`
	Network       string `json:"network"`
	Status        string `json:"status"`
	TopicID       string `json:"topic_id,omitempty"`
	Error         string `json:"error,omitempty"`
}

// FinalizeRoom handles POST /rooms/{id}/finalize.
func (h *SettlementHandler) FinalizeRoom(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("id")

	token := BearerToken(r)
	if token == "" {
		ErrorResponse(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	userID, err := h.verifier.Verify(r.Context(), token)
	if err != nil {
		ErrorResponse(w, http.StatusUnauthorized, "invalid token")
		return
	}

	result, err := h.orchestrator.Settle(r.Context(), roomID, userID)
	if err != nil {
		h.writeSettlementError(w, roomID, err)
		return
	}

	JSONResponse(w, http.StatusOK, finalizeResponse{
		Success: true,
		RoomID:  roomID,
		Winner: winnerPayload{
			CandidateID: result.Winner.CandidateID,
			Score:       result.Winner.Score,
			Reasoning:   result.Winner.Reasoning,
		},
		Ledger: ledgerPayload{
			TransactionID: result.Ledger.TransactionID,
			Network:       result.Ledger.Network,
			Status:        string(result.Ledger.Status),
			TopicID:       result.Ledger.TopicID,
			Error:         result.Ledger.Err,
		},
	})
}

// writeSettlementError maps pipeline errors onto HTTP status codes.
func (h *SettlementHandler) writeSettlementError(w http.ResponseWriter, roomID string, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		ErrorResponse(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, domain.ErrForbidden):
		ErrorResponse(w, http.StatusForbidden, "only the room owner can finalize")
	case errors.Is(err, domain.ErrNotFound):
		ErrorResponse(w, http.StatusNotFound, "room or candidates not found")
	case errors.Is(err, domain.ErrAlreadyFinalized):
		ErrorResponse(w, http.StatusConflict, "room already finalized")
	case errors.Is(err, domain.ErrOracleUnavailable):
		ErrorResponse(w, http.StatusBadGateway, "scoring oracle unavailable")
	case errors.Is(err, domain.ErrNoScores):
		ErrorResponse(w, http.StatusUnprocessableEntity, "no scores to determine winner")
	default:
		slog.Error("settlement failed", "room_id", roomID, "error", err)
		ErrorResponse(w, http.StatusInternalServerError, "settlement failed")
	}
}
