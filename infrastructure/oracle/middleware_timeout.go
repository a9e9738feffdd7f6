package oracle

import (
	"context"
	"time"
)

// timeoutScorer bounds individual provider requests.
type timeoutScorer struct {
	next    CoreScorer
	timeout time.Duration
}

// TimeoutMiddleware creates middleware that enforces a per-request
// timeout so a stalled provider cannot hold a settlement open.
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next CoreScorer) CoreScorer {
		return &timeoutScorer{next: next, timeout: timeout}
	}
}

func (t *timeoutScorer) DoRequest(ctx context.Context, req Request) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.DoRequest(ctx, req)
}

func (t *timeoutScorer) GetModel() string { return t.next.GetModel() }
