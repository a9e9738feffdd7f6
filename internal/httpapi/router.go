package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ahrav/votechain/internal/ports"
	"github.com/ahrav/votechain/internal/settlement"
)

// NewRouter builds the service mux: the finalize endpoint plus health
// and Prometheus scrape endpoints.
func NewRouter(orchestrator *settlement.Orchestrator, verifier ports.TokenVerifier) *http.ServeMux {
	mux := http.NewServeMux()

	handler := NewSettlementHandler(orchestrator, verifier)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /rooms/{id}/finalize", WithLogging(handler.FinalizeRoom))

	return mux
}
