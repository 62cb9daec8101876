// internal/eligibility/batch.go
package eligibility

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// EvaluateBatch assesses candidates concurrently, at most limit at a time
// (unbounded when limit <= 0). Results keep the input order.
func (e *Evaluator) EvaluateBatch(ctx context.Context, candidates []Candidate, limit int) []Assessment {
	out := make([]Assessment, len(candidates))
	if len(candidates) == 0 {
		return out
	}

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i := range candidates {
		g.Go(func() error {
			out[i] = e.Assess(gctx, candidates[i])
			return nil
		})
	}
	_ = g.Wait() // Assess never fails

	return out
}
