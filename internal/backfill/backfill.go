// internal/backfill/backfill.go
// Package backfill recomputes stored eligibility statuses in pages.
package backfill

import (
	"context"
	"fmt"

	"insertion-workers/internal/candidates"
	"insertion-workers/internal/common/logger"
	"insertion-workers/internal/eligibility"
)

type Store interface {
	List(ctx context.Context, f candidates.ListFilter) ([]*candidates.Candidate, error)
	UpdateEligibility(ctx context.Context, id string, status eligibility.Status) error
}

// PolicyCache drops cached programme policies. *reference.CachedProvider
// implements it.
type PolicyCache interface {
	InvalidatePolicy(ctx context.Context, programmeID string) error
}

type Options struct {
	CallID        string
	DryRun        bool
	Concurrency   int
	PageSize      int
	FlushPolicies []string
}

// Summary counts what a run did. Changed includes rows a dry run left untouched.
type Summary struct {
	Scanned  int                        `json:"scanned"`
	Changed  int                        `json:"changed"`
	Updated  int                        `json:"updated"`
	Failed   int                        `json:"failed"`
	ByStatus map[eligibility.Status]int `json:"byStatus"`
	DryRun   bool                       `json:"dryRun"`
	Flushed  []string                   `json:"flushedPolicies,omitempty"`
}

type Runner struct {
	store     Store
	cache     PolicyCache
	evaluator *eligibility.Evaluator
	opts      Options
	logger    logger.Logger
}

func New(store Store, evaluator *eligibility.Evaluator, opts Options, log logger.Logger) *Runner {
	if opts.PageSize <= 0 {
		opts.PageSize = 200
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	return &Runner{
		store:     store,
		evaluator: evaluator,
		opts:      opts,
		logger:    log.WithFields(map[string]interface{}{"component": "eligibility-backfill"}),
	}
}

// WithPolicyCache lets Run drop Options.FlushPolicies before re-evaluating.
func (b *Runner) WithPolicyCache(c PolicyCache) *Runner {
	b.cache = c
	return b
}

func (b *Runner) flushPolicies(ctx context.Context, summary *Summary) error {
	if len(b.opts.FlushPolicies) == 0 {
		return nil
	}
	if b.cache == nil {
		b.logger.Info("no policy cache configured, nothing to flush", nil)
		return nil
	}
	for _, id := range b.opts.FlushPolicies {
		if err := b.cache.InvalidatePolicy(ctx, id); err != nil {
			return fmt.Errorf("flush policy %s: %w", id, err)
		}
		summary.Flushed = append(summary.Flushed, id)
	}
	return nil
}

// Run flushes the requested cached policies, then pages through stored
// candidates by id, re-evaluates each page and writes back the statuses that
// changed. A failed write is counted and skipped; a failed flush or page read
// aborts the run.
func (b *Runner) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{ByStatus: map[eligibility.Status]int{}, DryRun: b.opts.DryRun}
	if err := b.flushPolicies(ctx, summary); err != nil {
		return summary, err
	}
	after := ""

	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		page, err := b.store.List(ctx, candidates.ListFilter{
			CallID:  b.opts.CallID,
			AfterID: after,
			Limit:   b.opts.PageSize,
		})
		if err != nil {
			return summary, fmt.Errorf("list candidates after %q: %w", after, err)
		}
		if len(page) == 0 {
			return summary, nil
		}

		inputs := make([]eligibility.Candidate, len(page))
		for i, c := range page {
			inputs[i] = c.EligibilityInput()
		}
		statuses := b.evaluator.EvaluateBatch(ctx, inputs, b.opts.Concurrency)

		for i, c := range page {
			next := statuses[i].Status
			summary.Scanned++
			summary.ByStatus[next]++
			if next == c.EligibilityStatus {
				continue
			}
			summary.Changed++
			if b.opts.DryRun {
				continue
			}
			if err := b.store.UpdateEligibility(ctx, c.ID, next); err != nil {
				summary.Failed++
				b.logger.Warn("eligibility update failed", map[string]interface{}{
					"candidatId": c.ID,
					"error":      err,
				})
				continue
			}
			summary.Updated++
		}

		b.logger.Info("page processed", map[string]interface{}{
			"size":    len(page),
			"scanned": summary.Scanned,
			"changed": summary.Changed,
		})

		if len(page) < b.opts.PageSize {
			return summary, nil
		}
		after = page[len(page)-1].ID
	}
}
