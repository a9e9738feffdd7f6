package oracle

import (
	"context"
	"time"

	"github.com/ahrav/votechain/internal/ports"
)

// metricsScorer records request latency and outcome counters.
type metricsScorer struct {
	next      CoreScorer
	collector ports.MetricsCollector
}

// MetricsMiddleware creates middleware that reports oracle request
// latency and outcomes through a MetricsCollector.
func MetricsMiddleware(collector ports.MetricsCollector) Middleware {
	return func(next CoreScorer) CoreScorer {
		return &metricsScorer{next: next, collector: collector}
	}
}

func (m *metricsScorer) DoRequest(ctx context.Context, req Request) (Response, error) {
	start := time.Now()
	resp, err := m.next.DoRequest(ctx, req)

	status := "success"
	if err != nil {
		status = "error"
	}
	labels := map[string]string{
		"model":  m.next.GetModel(),
		"status": status,
	}
	m.collector.RecordLatency("oracle_request_duration_seconds", time.Since(start), labels)
	m.collector.RecordCounter("oracle_requests_total", 1, labels)

	return resp, err
}

func (m *metricsScorer) GetModel() string { return m.next.GetModel() }
